// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package eventsink publishes mempool events to a NATS server.
package eventsink

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/r3e-network/neo-rs-sub003/internal/version"
	"github.com/r3e-network/neo-rs-sub003/mempool"
)

const (
	// DefaultSubject is the subject prefix events are published under.
	// Added events go to <prefix>.added and removals to <prefix>.removed.
	DefaultSubject = "mempool"

	// connectTimeout bounds the initial connection attempt.
	connectTimeout = 5 * time.Second
)

// Event is the JSON document published for every pool notification.
type Event struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Hash       string `json:"hash"`
	Sender     string `json:"sender"`
	Size       int    `json:"size"`
	FeePerByte int64  `json:"feePerByte"`
	NetworkFee int64  `json:"networkFee"`
	SystemFee  int64  `json:"systemFee"`
	Reason     string `json:"reason,omitempty"`
}

// newEvent converts a pool notification to its published form.
func newEvent(n *mempool.Notification) *Event {
	ev := &Event{
		ID:         uuid.NewString(),
		Type:       "added",
		Hash:       n.Hash().String(),
		Sender:     n.Tx.Sender().String(),
		Size:       n.Tx.Size(),
		FeePerByte: n.Tx.FeePerByte(),
		NetworkFee: n.Tx.NetworkFee(),
		SystemFee:  n.Tx.SystemFee(),
	}
	if n.Type == mempool.NTTxRemoved {
		ev.Type = "removed"
		ev.Reason = n.Reason.String()
	}
	return ev
}

// NATSNotifier is a mempool.Notifier publishing every event as JSON.  Each
// message carries the event id in the Nats-Msg-Id header so a JetStream
// stream can deduplicate redeliveries.
type NATSNotifier struct {
	nc      *nats.Conn
	subject string
}

// Ensure the NATSNotifier type implements the mempool Notifier interface.
var _ mempool.Notifier = (*NATSNotifier)(nil)

// NewNATSNotifier connects to the server at url.  An empty subject selects
// DefaultSubject.
func NewNATSNotifier(url, subject string, opts ...nats.Option) (*NATSNotifier, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	opts = append([]nats.Option{
		nats.Name(version.UserAgent("mempoold")),
		nats.Timeout(connectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("Disconnected from event server: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("Reconnected to event server %s",
				nc.ConnectedUrl())
		}),
	}, opts...)

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to event server %s: %w",
			url, err)
	}

	log.Infof("Publishing mempool events to %s under %s.*",
		nc.ConnectedUrl(), subject)
	return &NATSNotifier{nc: nc, subject: subject}, nil
}

// Subject returns the subject the event is published under.
func (s *NATSNotifier) Subject(n *mempool.Notification) string {
	if n.Type == mempool.NTTxRemoved {
		return s.subject + ".removed"
	}
	return s.subject + ".added"
}

// Notify publishes the notification.  Publishing failures are logged since
// the pool does not wait on its event consumers.
func (s *NATSNotifier) Notify(n *mempool.Notification) {
	ev := newEvent(n)
	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("Unable to encode event for %v: %v", n.Hash(), err)
		return
	}

	msg := nats.NewMsg(s.Subject(n))
	msg.Header.Set(nats.MsgIdHdr, ev.ID)
	msg.Data = data
	if err := s.nc.PublishMsg(msg); err != nil {
		log.Errorf("Unable to publish %v: %v", n, err)
		return
	}
	log.Tracef("Published %v as %s", n, ev.ID)
}

// Flush waits until the server has processed every published event.
func (s *NATSNotifier) Flush() error {
	return s.nc.Flush()
}

// Close drains pending events and closes the connection.
func (s *NATSNotifier) Close() error {
	return s.nc.Drain()
}
