// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/r3e-network/neo-rs-sub003/chainutil"
	"github.com/r3e-network/neo-rs-sub003/internal/eventsink"
	mlog "github.com/r3e-network/neo-rs-sub003/internal/log"
	"github.com/r3e-network/neo-rs-sub003/internal/version"
	"github.com/r3e-network/neo-rs-sub003/ledger"
	"github.com/r3e-network/neo-rs-sub003/mempool"
)

var (
	cfg *config
	log = mlog.MpldLog
)

// logRelayer is the relayer used when no network is attached.  It only
// reports the transactions that are due for another broadcast.
type logRelayer struct{}

// RelayTransaction logs the transaction.
func (logRelayer) RelayTransaction(tx *chainutil.Tx) {
	log.Debugf("Rebroadcasting transaction %v", tx.Hash())
}

// newPool creates the pool over the ledger and attaches the event
// publisher when one is configured.  The returned function releases the
// publisher.
func newPool(cfg *config, store *ledger.Store) (*mempool.TxPool, func(), error) {
	poolCfg := &mempool.Config{
		Policy:   cfg.policy(),
		Balances: store,
		Relayer:  logRelayer{},
	}

	cleanup := func() {}
	if cfg.NATSURL != "" {
		notifier, err := eventsink.NewNATSNotifier(cfg.NATSURL,
			cfg.NATSSubject)
		if err != nil {
			return nil, nil, err
		}
		poolCfg.Notifier = notifier
		cleanup = func() {
			if err := notifier.Close(); err != nil {
				log.Errorf("Unable to close event publisher: %v", err)
			}
		}
	}

	pool, err := mempool.New(poolCfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return pool, cleanup, nil
}

// idleReverify reverifies unverified entries between blocks until the
// interrupt channel is closed.  Each round is limited by the idle budget.
func idleReverify(pool *mempool.TxPool, store *ledger.Store,
	interrupt <-chan struct{}) {

	policy := pool.Policy()
	interval := policy.IdleReverifyBudget()
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-interrupt:
			return
		case <-ticker.C:
		}

		if pool.UnverifiedCount() == 0 {
			continue
		}
		snap, err := store.Snapshot()
		if err != nil {
			log.Errorf("Unable to take ledger snapshot: %v", err)
			continue
		}
		pool.ReverifyTopUnverified(policy.MaxTransactionsPerBlock, snap,
			policy.IdleReverifyBudget())
		snap.Release()
	}
}

// mempooldMain is the real main function for mempoold.  It is necessary to
// work around the fact that deferred functions do not run when os.Exit() is
// called.
func mempooldMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	tcfg, _, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	cfg = tcfg

	mlog.InitLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	defer func() {
		if mlog.LogRotator != nil {
			mlog.LogRotator.Close()
		}
	}()

	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem such as the replay finishing.
	interrupt := interruptListener()
	defer log.Info("Shutdown complete")

	// Show version at startup.
	log.Infof("Version %s (%s)", version.String(),
		version.UserAgent("mempoold"))

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		log.Errorf("Unable to create data directory: %v", err)
		return err
	}
	store, err := ledger.Open(cfg.DbType, filepath.Join(cfg.DataDir,
		"ledger_"+cfg.DbType))
	if err != nil {
		log.Errorf("%v", err)
		return err
	}
	defer func() {
		log.Infof("Gracefully shutting down the ledger...")
		if err := store.Close(); err != nil {
			log.Errorf("Unable to close ledger: %v", err)
		}
	}()

	pool, cleanup, err := newPool(cfg, store)
	if err != nil {
		log.Errorf("Unable to create mempool: %v", err)
		return err
	}
	defer cleanup()

	if cfg.Replay != "" {
		var in io.Reader = os.Stdin
		if cfg.Replay != "-" {
			f, err := os.Open(cfg.Replay)
			if err != nil {
				log.Errorf("Unable to open replay file: %v", err)
				return err
			}
			defer f.Close()
			in = f
		}

		rp := newReplayer(pool, store, cfg.syncMode, cfg.MaxTxPerBlock)
		if err := rp.Run(in, os.Stdout); err != nil {
			log.Errorf("Replay failed: %v", err)
			return err
		}
		log.Infof("Replay complete: %d verified and %d unverified "+
			"transactions pooled", pool.VerifiedCount(),
			pool.UnverifiedCount())
		return nil
	}

	go idleReverify(pool, store, interrupt)
	<-interrupt
	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := mempooldMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
