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

package executor

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/solcat/database"
	"github.com/blinklabs-io/solcat/database/types"
	"github.com/blinklabs-io/solcat/processor"
	"github.com/blinklabs-io/solcat/records"
)

// txnHost serves the processor from an open database transaction. The clock
// is sampled once per instruction.
type txnHost struct {
	txn *database.Txn
	now int64
}

func (h *txnHost) Now() int64 {
	return h.now
}

func (h *txnHost) ReadRecord(key records.Address) ([]byte, error) {
	return h.txn.Record(key)
}

func (h *txnHost) WriteRecord(key records.Address, data []byte) error {
	return h.txn.SetRecord(key, data)
}

func (h *txnHost) Transfer(from, to records.Address, amount uint64) error {
	if err := h.txn.Transfer(from, to, amount); err != nil {
		if errors.Is(err, types.ErrInsufficientBalance) {
			return fmt.Errorf("%w: %w", processor.ErrInsufficientFunds, err)
		}
		return err
	}
	return nil
}
