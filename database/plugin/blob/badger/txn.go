// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"errors"

	"github.com/blinklabs-io/solcat/database/types"
	badger "github.com/dgraph-io/badger/v4"
)

var errTxnFinished = errors.New("transaction already finished")

// badgerTxn wraps a badger transaction and implements types.Txn
type badgerTxn struct {
	store     *BlobStoreBadger
	tx        *badger.Txn
	readWrite bool
	finished  bool
}

// txnFor returns the badger transaction behind txn, making sure it belongs to
// this store and is still open
func (d *BlobStoreBadger) txnFor(txn types.Txn) (*badgerTxn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	t, ok := txn.(*badgerTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if t.store != d {
		return nil, errors.New("transaction from different store")
	}
	if t.finished {
		return nil, errTxnFinished
	}
	return t, nil
}

func (t *badgerTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if !t.readWrite {
		t.tx.Discard()
		return nil
	}
	return t.tx.Commit()
}

func (t *badgerTxn) Rollback() error {
	if t.finished {
		return nil
	}
	t.tx.Discard()
	t.finished = true
	return nil
}

type badgerIterator struct {
	iter *badger.Iterator
}

func (it *badgerIterator) Rewind()                      { it.iter.Rewind() }
func (it *badgerIterator) Seek(prefix []byte)           { it.iter.Seek(prefix) }
func (it *badgerIterator) Valid() bool                  { return it.iter.Valid() }
func (it *badgerIterator) ValidForPrefix(p []byte) bool { return it.iter.ValidForPrefix(p) }
func (it *badgerIterator) Next()                        { it.iter.Next() }
func (it *badgerIterator) Close()                       { it.iter.Close() }
func (it *badgerIterator) Err() error                   { return nil }

func (it *badgerIterator) Item() types.BlobItem {
	return &badgerItem{item: it.iter.Item()}
}

// errorIterator is returned when an iterator cannot be created, so callers
// find out through Err()
type errorIterator struct {
	err error
}

func (it *errorIterator) Rewind()                    {}
func (it *errorIterator) Seek([]byte)                {}
func (it *errorIterator) Valid() bool                { return false }
func (it *errorIterator) ValidForPrefix([]byte) bool { return false }
func (it *errorIterator) Next()                      {}
func (it *errorIterator) Item() types.BlobItem       { return nil }
func (it *errorIterator) Close()                     {}
func (it *errorIterator) Err() error                 { return it.err }

type badgerItem struct {
	item *badger.Item
}

func (i *badgerItem) Key() []byte {
	return i.item.KeyCopy(nil)
}

func (i *badgerItem) ValueCopy(dst []byte) ([]byte, error) {
	return i.item.ValueCopy(dst)
}
