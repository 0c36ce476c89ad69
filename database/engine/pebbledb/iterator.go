package pebbledb

import (
	"github.com/cockroachdb/pebble"
	"github.com/r3e-network/neo-rs-sub003/database/engine"
)

func NewIterator(iter *pebble.Iterator) engine.Iterator {
	return &Iterator{Iterator: iter}
}

// Iterator adapts a pebble iterator to the engine interface.
type Iterator struct {
	*pebble.Iterator
	released bool
}

func (i *Iterator) Seek(key []byte) bool {
	return i.Iterator.SeekGE(key)
}

func (i *Iterator) Key() []byte {
	if !i.Iterator.Valid() { // return nil if the iterator is exhausted
		return nil
	}
	return i.Iterator.Key()
}

func (i *Iterator) Value() []byte {
	if !i.Iterator.Valid() {
		return nil
	}
	return i.Iterator.Value()
}

func (i *Iterator) Release() {
	if !i.released {
		i.released = true
		i.Iterator.Close()
	}
}

func (i *Iterator) Error() error {
	if i.released {
		return engine.ErrIterReleased
	}
	return i.Iterator.Error()
}
