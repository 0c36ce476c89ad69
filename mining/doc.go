// Copyright (c) 2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mining assembles block templates from the verified transactions of
a transaction source such as the mempool.

Templates take transactions in the source's priority order and stop at the
first transaction that would exceed the block's transaction count, size or
system fee limit, so a template is always a prefix of the priority order.
*/
package mining
