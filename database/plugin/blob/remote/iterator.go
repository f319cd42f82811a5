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

package remote

import (
	"bytes"
	"slices"
	"strings"

	"github.com/blinklabs-io/solcat/database/types"
)

// NewIterator lists the keys under opts.Prefix once, merged with the writes
// buffered in txn. Values are fetched lazily by Item().ValueCopy.
func (s *Store) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	t, err := s.validateTxn(txn)
	if err != nil {
		return &iterator{err: err}
	}
	ctx, cancel := s.opContext()
	defer cancel()
	listed, err := s.client.ListKeys(ctx, string(opts.Prefix))
	if err != nil {
		s.logger.Error("object list failed", "error", err)
		return &iterator{err: err}
	}
	keySet := make(map[string]struct{}, len(listed))
	for _, key := range listed {
		keySet[key] = struct{}{}
	}
	for key, val := range t.writes {
		if !strings.HasPrefix(key, string(opts.Prefix)) {
			continue
		}
		if val == nil {
			delete(keySet, key)
		} else {
			keySet[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	if opts.Reverse {
		slices.Reverse(keys)
	}
	return &iterator{store: s, txn: t, keys: keys, reverse: opts.Reverse}
}

type iterator struct {
	store   *Store
	txn     *Txn
	err     error
	keys    []string
	idx     int
	reverse bool
}

func (it *iterator) Rewind() {
	it.idx = 0
}

func (it *iterator) Seek(prefix []byte) {
	target := string(prefix)
	it.idx = len(it.keys)
	for i, key := range it.keys {
		if (it.reverse && key <= target) || (!it.reverse && key >= target) {
			it.idx = i
			return
		}
	}
}

func (it *iterator) Valid() bool {
	return it.err == nil && it.idx < len(it.keys)
}

func (it *iterator) ValidForPrefix(prefix []byte) bool {
	return it.Valid() && bytes.HasPrefix([]byte(it.keys[it.idx]), prefix)
}

func (it *iterator) Next() {
	if it.idx < len(it.keys) {
		it.idx++
	}
}

func (it *iterator) Item() types.BlobItem {
	if !it.Valid() {
		return nil
	}
	return &item{store: it.store, txn: it.txn, key: it.keys[it.idx]}
}

func (it *iterator) Err() error {
	return it.err
}

func (it *iterator) Close() {}

type item struct {
	store *Store
	txn   *Txn
	key   string
}

func (i *item) Key() []byte {
	return []byte(i.key)
}

func (i *item) ValueCopy(dst []byte) ([]byte, error) {
	data, err := i.store.Get(i.txn, []byte(i.key))
	if err != nil {
		return nil, err
	}
	return append(dst[:0], data...), nil
}
