// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"time"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
)

// MaxBlockHeaderPayload is the number of bytes a block header occupies.
// Version 4 bytes + PrevBlock 32 bytes + MerkleRoot 32 bytes + Timestamp
// 8 bytes + Nonce 8 bytes + Index 4 bytes + PrimaryIndex 1 byte +
// NextConsensus 20 bytes.
const MaxBlockHeaderPayload = 25 + (chainhash.HashSize * 2) + AccountSize

// BlockHeader defines information about a block.
type BlockHeader struct {
	// Version of the block.
	Version uint32

	// Hash of the previous block in the block chain.
	PrevBlock chainhash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot chainhash.Hash

	// Time the block was created in milliseconds since the epoch.
	Timestamp uint64

	// Nonce picked by the primary.
	Nonce uint64

	// Index is the height of the block.
	Index uint32

	// PrimaryIndex is the validator index of the consensus primary.
	PrimaryIndex uint8

	// NextConsensus is the script hash of the next validators.
	NextConsensus [AccountSize]byte
}

// BlockHash computes the block identifier hash for the given block header.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	return chainhash.HashRaw(h.Serialize)
}

// Time returns the header timestamp as a time.Time.
func (h *BlockHeader) Time() time.Time {
	return time.UnixMilli(int64(h.Timestamp))
}

// Serialize encodes the block header to w.
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := writeUint32(w, h.Version); err != nil {
		return err
	}
	if _, err := w.Write(h.PrevBlock[:]); err != nil {
		return err
	}
	if _, err := w.Write(h.MerkleRoot[:]); err != nil {
		return err
	}
	if err := writeUint64(w, h.Timestamp); err != nil {
		return err
	}
	if err := writeUint64(w, h.Nonce); err != nil {
		return err
	}
	if err := writeUint32(w, h.Index); err != nil {
		return err
	}
	if err := writeUint8(w, h.PrimaryIndex); err != nil {
		return err
	}
	_, err := w.Write(h.NextConsensus[:])
	return err
}

// Deserialize decodes a block header from r into the receiver.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	var err error
	if h.Version, err = readUint32(r); err != nil {
		return err
	}
	if err = readHash(r, &h.PrevBlock); err != nil {
		return err
	}
	if err = readHash(r, &h.MerkleRoot); err != nil {
		return err
	}
	if h.Timestamp, err = readUint64(r); err != nil {
		return err
	}
	if h.Nonce, err = readUint64(r); err != nil {
		return err
	}
	if h.Index, err = readUint32(r); err != nil {
		return err
	}
	if h.PrimaryIndex, err = readUint8(r); err != nil {
		return err
	}
	_, err = io.ReadFull(r, h.NextConsensus[:])
	return err
}
