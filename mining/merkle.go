// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"github.com/r3e-network/neo-rs-sub003/chainhash"
)

// hashMerkleBranches returns the double SHA256 of the concatenated nodes.
func hashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var buf [chainhash.HashSize * 2]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])
	return chainhash.DoubleHashH(buf[:])
}

// CalcMerkleRoot returns the merkle root of the passed leaf hashes.  An odd
// node at any level is paired with itself.  The root of no leaves is the
// zero hash.
func CalcMerkleRoot(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return chainhash.Hash{}
	}

	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		if len(level)&1 == 1 {
			level = append(level, level[len(level)-1])
		}
		for i := 0; i < len(level); i += 2 {
			level[i>>1] = hashMerkleBranches(&level[i], &level[i+1])
		}
		level = level[:len(level)>>1]
	}
	return level[0]
}
