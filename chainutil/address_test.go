// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
	"github.com/stretchr/testify/require"
)

// TestAddressPubKey ensures addresses derived from keys are stable and
// distinct, and that the string form round trips.
func TestAddressPubKey(t *testing.T) {
	t.Parallel()

	priv1, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	priv2, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	addr1 := chainutil.NewAddressPubKey(priv1.PubKey())
	addr2 := chainutil.NewAddressPubKey(priv2.PubKey())
	require.NotEqual(t, addr1, addr2)

	script := chainutil.VerificationScriptPubKey(priv1.PubKey())
	require.Len(t, script, 40)
	require.Equal(t, addr1, chainutil.NewAddressScriptHash(script))

	fromBytes, err := chainutil.NewAddressPubKeyBytes(
		priv1.PubKey().SerializeCompressed())
	require.NoError(t, err)
	require.Equal(t, addr1, fromBytes)

	_, err = chainutil.NewAddressPubKeyBytes([]byte{0x02, 0x01})
	require.Error(t, err)

	decoded, err := chainutil.DecodeAddress(addr1.String())
	require.NoError(t, err)
	require.Equal(t, addr1, decoded)

	text, err := addr2.MarshalText()
	require.NoError(t, err)
	var parsed chainutil.Address
	require.NoError(t, parsed.UnmarshalText(text))
	require.Equal(t, addr2, parsed)

	_, err = chainutil.DecodeAddress("0x0102")
	require.ErrorIs(t, err, chainutil.ErrAddressLength)
}

// TestAddressString checks the byte-reversed display form.
func TestAddressString(t *testing.T) {
	t.Parallel()

	a := chainutil.Address{0x01}
	require.Equal(t, "0x"+"00000000000000000000000000000000000000"+"01", a.String())
}
