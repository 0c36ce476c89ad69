// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testDesc(netFee int64, i int) *TxDesc {
	return &TxDesc{Tx: newTestTx(netFee, testAddress(i))}
}

// TestPriorityIndex exercises the priority index primitives.
func TestPriorityIndex(t *testing.T) {
	t.Parallel()

	pi := newPriorityIndex()
	_, ok := pi.lowest()
	require.False(t, ok)
	require.Empty(t, pi.top(-1))

	low := testDesc(51, 1)
	mid := testDesc(51*2, 2)
	high := testDesc(51*3, 3)
	for _, desc := range []*TxDesc{mid, low, high} {
		require.True(t, pi.add(desc))
	}
	require.False(t, pi.add(mid), "duplicate add must be refused")
	require.Equal(t, 3, pi.len())

	require.Equal(t, []*TxDesc{high, mid, low}, pi.top(-1))
	require.Equal(t, []*TxDesc{high, mid}, pi.top(2))
	require.Empty(t, pi.top(0))

	lowest, ok := pi.lowest()
	require.True(t, ok)
	require.Same(t, low, lowest)

	// Replacing keeps the position and swaps the stored descriptor.
	moved := mid.withState(StateUnverified)
	pi.replace(moved)
	got, ok := pi.get(mid.Tx.Hash())
	require.True(t, ok)
	require.Same(t, moved, got)
	require.Same(t, moved, pi.top(-1)[1])

	removed, ok := pi.remove(high.Tx.Hash())
	require.True(t, ok)
	require.Same(t, high, removed)
	_, ok = pi.remove(high.Tx.Hash())
	require.False(t, ok)
	require.False(t, pi.has(high.Tx.Hash()))
	require.Equal(t, 2, pi.sorted.Len())

	pi.clear()
	require.Zero(t, pi.len())
	require.Zero(t, pi.sorted.Len())
}

// TestHigherPriorityTieBreak ensures equal fee-per-byte entries are ordered
// by ascending hash.
func TestHigherPriorityTieBreak(t *testing.T) {
	t.Parallel()

	// 51 and 60 both round down to a fee-per-byte of one.
	a := testDesc(51, 1)
	b := testDesc(60, 2)
	require.Equal(t, a.Tx.FeePerByte(), b.Tx.FeePerByte())

	first, second := a, b
	if b.Tx.Hash().Compare(a.Tx.Hash()) < 0 {
		first, second = b, a
	}
	require.True(t, higherPriority(first, second))
	require.False(t, higherPriority(second, first))
	require.False(t, higherPriority(first, first))

	pi := newPriorityIndex()
	pi.add(second)
	pi.add(first)
	require.Equal(t, []*TxDesc{first, second}, pi.top(-1))
}
