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

package processor_test

import (
	"bytes"
	"fmt"

	"github.com/blinklabs-io/solcat/processor"
	"github.com/blinklabs-io/solcat/records"
)

// memHost is an in-memory Host that records every write
type memHost struct {
	now      int64
	records  map[records.Address][]byte
	balances map[records.Address]uint64
	writes   int
	failRead bool
}

func newMemHost(now int64) *memHost {
	return &memHost{
		now:      now,
		records:  make(map[records.Address][]byte),
		balances: make(map[records.Address]uint64),
	}
}

func (h *memHost) Now() int64 {
	return h.now
}

func (h *memHost) ReadRecord(key records.Address) ([]byte, error) {
	if h.failRead {
		return nil, fmt.Errorf("read failure")
	}
	return bytes.Clone(h.records[key]), nil
}

func (h *memHost) WriteRecord(key records.Address, data []byte) error {
	h.writes++
	h.records[key] = bytes.Clone(data)
	return nil
}

func (h *memHost) Transfer(from, to records.Address, amount uint64) error {
	if h.balances[from] < amount {
		return fmt.Errorf(
			"%w: %s holds %d",
			processor.ErrInsufficientFunds,
			from,
			h.balances[from],
		)
	}
	h.balances[from] -= amount
	h.balances[to] += amount
	return nil
}

func (h *memHost) put(key records.Address, rec records.Record) {
	data, err := rec.MarshalBinary()
	if err != nil {
		panic(err)
	}
	h.records[key] = data
}

// snapshot returns a copy of the stored records
func (h *memHost) snapshot() map[records.Address][]byte {
	ret := make(map[records.Address][]byte, len(h.records))
	for k, v := range h.records {
		ret[k] = bytes.Clone(v)
	}
	return ret
}
