// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"bytes"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/wire"
)

// Block defines a block that provides easier and more efficient manipulation
// of raw blocks.  Like Tx, the derived values are computed once at
// construction.
type Block struct {
	msgBlock     *wire.MsgBlock // Underlying MsgBlock
	blockHash    chainhash.Hash // Cached block hash
	transactions []*Tx          // Wrapped transactions
}

// NewBlock returns a new instance of a block given an underlying
// wire.MsgBlock.  See Block.
func NewBlock(msgBlock *wire.MsgBlock) *Block {
	b := &Block{
		msgBlock:     msgBlock,
		blockHash:    msgBlock.BlockHash(),
		transactions: make([]*Tx, 0, len(msgBlock.Transactions)),
	}
	for _, tx := range msgBlock.Transactions {
		b.transactions = append(b.transactions, NewTx(tx))
	}
	return b
}

// NewBlockFromTxs assembles a block from a header and already wrapped
// transactions.
func NewBlockFromTxs(header *wire.BlockHeader, txs []*Tx) *Block {
	msgBlock := wire.NewMsgBlock(header)
	for _, tx := range txs {
		msgBlock.AddTransaction(tx.MsgTx())
	}
	return &Block{
		msgBlock:     msgBlock,
		blockHash:    msgBlock.BlockHash(),
		transactions: append([]*Tx(nil), txs...),
	}
}

// NewBlockFromBytes returns a new instance of a block given the serialized
// bytes.  See Block.
func NewBlockFromBytes(serializedBlock []byte) (*Block, error) {
	var msgBlock wire.MsgBlock
	if err := msgBlock.Deserialize(bytes.NewReader(serializedBlock)); err != nil {
		return nil, err
	}
	return NewBlock(&msgBlock), nil
}

// MsgBlock returns the underlying wire.MsgBlock for the Block.
func (b *Block) MsgBlock() *wire.MsgBlock {
	return b.msgBlock
}

// Hash returns the block identifier hash for the Block.
func (b *Block) Hash() *chainhash.Hash {
	return &b.blockHash
}

// Height returns the index of the block in the chain.
func (b *Block) Height() uint32 {
	return b.msgBlock.Header.Index
}

// Transactions returns a slice of wrapped transactions for all transactions
// in the Block.  The returned slice must not be modified.
func (b *Block) Transactions() []*Tx {
	return b.transactions
}
