package pebbledb

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/r3e-network/neo-rs-sub003/database/engine"
)

func NewSnapshot(snapshot *pebble.Snapshot) engine.Snapshot {
	return &Snapshot{Snapshot: snapshot}
}

type Snapshot struct {
	*pebble.Snapshot
	released bool
}

func (s *Snapshot) Has(key []byte) (bool, error) {
	_, err := s.Get(key)
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (s *Snapshot) Get(key []byte) ([]byte, error) {
	if s.released {
		return nil, ErrSnapshotReleased
	}

	ori, closer, err := s.Snapshot.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	val := make([]byte, len(ori))
	copy(val, ori)
	return val, nil
}

func (s *Snapshot) Release() {
	if !s.released {
		s.released = true
		s.Close()
	}
}

func (s *Snapshot) NewIterator(slice *engine.Range) engine.Iterator {
	if s.released {
		return nil
	}
	if slice == nil {
		slice = &engine.Range{}
	}

	iter, _ := s.Snapshot.NewIter(&pebble.IterOptions{
		LowerBound: slice.Start,
		UpperBound: slice.Limit,
	})
	iter.SeekLT(slice.Start)
	return NewIterator(iter)
}
