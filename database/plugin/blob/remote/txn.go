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
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrTxnFinished is returned when a committed or rolled back transaction is
// used again
var ErrTxnFinished = errors.New("transaction already finished")

// Txn buffers the writes of one transaction. A nil value marks a delete.
type Txn struct {
	store     *Store
	writes    map[string][]byte
	readWrite bool
	finished  bool
}

func (t *Txn) pending(key string) ([]byte, bool) {
	val, ok := t.writes[key]
	return val, ok
}

func (t *Txn) stage(key string, val []byte) {
	if t.writes == nil {
		t.writes = make(map[string][]byte)
	}
	t.writes[key] = val
}

// Commit flushes the buffered writes in key order, with the commit timestamp
// last. Object stores have no multi-object atomicity: a failed flush leaves
// the keys before the failing one written and the previous commit timestamp
// in place.
func (t *Txn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if len(t.writes) == 0 {
		return nil
	}
	s := t.store
	keys := slices.SortedFunc(maps.Keys(t.writes), func(a, b string) int {
		switch {
		case a == commitTimestampBlobKey:
			return 1
		case b == commitTimestampBlobKey:
			return -1
		}
		return strings.Compare(a, b)
	})
	for _, key := range keys {
		if err := t.flush(key, t.writes[key]); err != nil {
			s.logger.Error(
				"commit flush failed",
				"key", key,
				"error", err,
			)
			return fmt.Errorf("flush %q: %w", key, err)
		}
	}
	s.logger.Debug(
		"committed transaction",
		"writes", len(t.writes),
	)
	t.writes = nil
	return nil
}

func (t *Txn) flush(key string, val []byte) error {
	s := t.store
	ctx, cancel := s.opContext()
	defer cancel()
	if val == nil {
		s.metrics.deletes.Inc()
		return s.client.DeleteObject(ctx, key)
	}
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(val)
		if err != nil {
			return err
		}
		val = sealed
	}
	s.metrics.puts.Inc()
	s.metrics.bytesWritten.Add(float64(len(val)))
	return s.client.PutObject(ctx, key, val)
}

// Rollback discards the buffered writes
func (t *Txn) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	t.writes = nil
	return nil
}
