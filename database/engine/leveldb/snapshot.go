package leveldb

import (
	"errors"

	"github.com/r3e-network/neo-rs-sub003/database/engine"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

func NewSnapshot(snapshot *leveldb.Snapshot) engine.Snapshot {
	return &Snapshot{Snapshot: snapshot}
}

type Snapshot struct {
	*leveldb.Snapshot
}

func (s *Snapshot) Has(key []byte) (bool, error) {
	return s.Snapshot.Has(key, nil)
}

func (s *Snapshot) Get(key []byte) ([]byte, error) {
	val, err := s.Snapshot.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, engine.ErrNotFound
	}
	return val, err
}

func (s *Snapshot) Release() {
	s.Snapshot.Release()
}

func (s *Snapshot) NewIterator(slice *engine.Range) engine.Iterator {
	if slice == nil {
		return s.Snapshot.NewIterator(nil, nil)
	}
	return s.Snapshot.NewIterator(&util.Range{
		Start: slice.Start,
		Limit: slice.Limit,
	}, nil)
}
