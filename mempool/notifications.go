// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"

	"github.com/r3e-network/neo-rs-sub003/chainhash"
	"github.com/r3e-network/neo-rs-sub003/chainutil"
)

// NotificationType represents the type of a notification message.
type NotificationType int

// Constants for the type of a notification message.
const (
	// NTTxAdded indicates a transaction was admitted to the verified set.
	NTTxAdded NotificationType = iota

	// NTTxRemoved indicates a transaction was evicted.  The Reason field
	// of the notification says why.
	NTTxRemoved
)

// notificationTypeStrings is a map of notification types back to their constant
// names for pretty printing.
var notificationTypeStrings = map[NotificationType]string{
	NTTxAdded:   "NTTxAdded",
	NTTxRemoved: "NTTxRemoved",
}

// String returns the NotificationType in human-readable form.
func (n NotificationType) String() string {
	if s, ok := notificationTypeStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Notification Type (%d)", int(n))
}

// RemovalReason identifies why a transaction was evicted.
type RemovalReason int

const (
	// RemovalConflict indicates the entry was superseded through a
	// Conflicts attribute.
	RemovalConflict RemovalReason = iota

	// RemovalCapacityExceeded indicates the entry was the lowest priority
	// transaction when the pool exceeded its capacity.
	RemovalCapacityExceeded

	// RemovalFailedReverification indicates the entry was no longer valid
	// against a newer ledger snapshot.
	RemovalFailedReverification
)

var removalReasonStrings = map[RemovalReason]string{
	RemovalConflict:             "Conflict",
	RemovalCapacityExceeded:     "CapacityExceeded",
	RemovalFailedReverification: "FailedReverification",
}

// String returns the RemovalReason in human-readable form.
func (r RemovalReason) String() string {
	if s, ok := removalReasonStrings[r]; ok {
		return s
	}
	return fmt.Sprintf("Unknown RemovalReason (%d)", int(r))
}

// Notification defines a notification that is sent to the configured
// Notifier.  Reason is only meaningful for NTTxRemoved.
type Notification struct {
	Type   NotificationType
	Tx     *chainutil.Tx
	Reason RemovalReason
}

// Hash returns the hash of the transaction the notification is about.
func (n *Notification) Hash() *chainhash.Hash {
	return n.Tx.Hash()
}

// String returns a short description of the notification for logging.
func (n *Notification) String() string {
	if n.Type == NTTxRemoved {
		return fmt.Sprintf("%v %v (%v)", n.Type, n.Tx.Hash(), n.Reason)
	}
	return fmt.Sprintf("%v %v", n.Type, n.Tx.Hash())
}

// poolOutput accumulates the side effects of a write operation.  They are
// produced while the pool lock is held and delivered once it is released.
type poolOutput struct {
	notifications []Notification
	relays        []*chainutil.Tx
}

func (o *poolOutput) added(tx *chainutil.Tx) {
	o.notifications = append(o.notifications, Notification{
		Type: NTTxAdded,
		Tx:   tx,
	})
}

func (o *poolOutput) removed(reason RemovalReason, descs ...*TxDesc) {
	for _, desc := range descs {
		o.notifications = append(o.notifications, Notification{
			Type:   NTTxRemoved,
			Tx:     desc.Tx,
			Reason: reason,
		})
	}
}

// deliver hands the accumulated notifications and relay requests to the
// configured collaborators.
//
// This function MUST NOT be called with the mempool lock held.
func (mp *TxPool) deliver(out *poolOutput) {
	if mp.cfg.Notifier != nil {
		for i := range out.notifications {
			mp.cfg.Notifier.Notify(&out.notifications[i])
		}
	}
	if mp.cfg.Relayer != nil {
		for _, tx := range out.relays {
			mp.cfg.Relayer.RelayTransaction(tx)
		}
	}
}
