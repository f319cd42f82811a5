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

package processor

import (
	"encoding"
	"errors"
	"fmt"

	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/records"
)

type pendingWrite struct {
	key    records.Address
	record records.Record
}

// invocation carries the state of one instruction. Writes are staged and
// only reach the host in commit, after every check has passed.
type invocation struct {
	host     Host
	now      int64
	accounts []instruction.AccountMeta
	writes   []pendingWrite
	transfer *pendingTransfer
	result   *Result
}

type pendingTransfer struct {
	from   records.Address
	to     records.Address
	amount uint64
}

func (inv *invocation) account(idx int) instruction.AccountMeta {
	return inv.accounts[idx]
}

// signer returns the account at idx, failing unless it signs
func (inv *invocation) signer(idx int) (instruction.AccountMeta, error) {
	acct := inv.accounts[idx]
	if !acct.IsSigner {
		return acct, ErrNotAuthorized
	}
	return acct, nil
}

func (inv *invocation) read(key records.Address) ([]byte, error) {
	data, err := inv.host.ReadRecord(key)
	if err != nil {
		return nil, wrapErr(ErrHostFailure, fmt.Errorf("read %s: %w", key, err))
	}
	return data, nil
}

func (inv *invocation) stage(key records.Address, rec records.Record) {
	for i := range inv.writes {
		if inv.writes[i].key == key {
			inv.writes[i].record = rec
			return
		}
	}
	inv.writes = append(inv.writes, pendingWrite{key: key, record: rec})
}

func (inv *invocation) stageTransfer(from, to records.Address, amount uint64) {
	inv.transfer = &pendingTransfer{from: from, to: to, amount: amount}
}

// commit encodes every staged record, then performs the transfer and the
// writes
func (inv *invocation) commit() error {
	encoded := make([][]byte, len(inv.writes))
	for i, w := range inv.writes {
		data, err := w.record.MarshalBinary()
		if err != nil {
			return wrapErr(ErrHostFailure, fmt.Errorf("encode %s: %w", w.key, err))
		}
		encoded[i] = data
	}
	if t := inv.transfer; t != nil {
		if err := inv.host.Transfer(t.from, t.to, t.amount); err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				return wrapErr(ErrInsufficientTokenBalance, err)
			}
			return wrapErr(ErrHostFailure, fmt.Errorf("transfer: %w", err))
		}
	}
	inv.result.Records = make(map[records.Address]records.Record, len(inv.writes))
	for i, w := range inv.writes {
		if err := inv.host.WriteRecord(w.key, encoded[i]); err != nil {
			return wrapErr(ErrHostFailure, fmt.Errorf("write %s: %w", w.key, err))
		}
		inv.result.Written = append(inv.result.Written, w.key)
		inv.result.Records[w.key] = w.record
	}
	return nil
}

// load decodes a record that must exist
func load[T any, PT interface {
	*T
	encoding.BinaryUnmarshaler
}](inv *invocation, key records.Address) (*T, error) {
	data, err := inv.read(key)
	if err != nil {
		return nil, err
	}
	ret, err := records.Decode[T, PT](data)
	return ret, recordErr(key, err)
}

// loadOrDefault decodes a record, or returns newFunc() when it is absent
func loadOrDefault[T any, PT interface {
	*T
	encoding.BinaryUnmarshaler
}](inv *invocation, key records.Address, newFunc func() *T) (*T, error) {
	data, err := inv.read(key)
	if err != nil {
		return nil, err
	}
	ret, err := records.DecodeOrDefault[T, PT](data, newFunc)
	return ret, recordErr(key, err)
}

// isEmpty reports whether no record exists at key
func (inv *invocation) isEmpty(key records.Address) (bool, error) {
	data, err := inv.read(key)
	if err != nil {
		return false, err
	}
	return len(data) == 0, nil
}

func recordErr(key records.Address, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, records.ErrNotInitialized):
		return wrapErr(ErrUninitializedRecord, fmt.Errorf("%s: %w", key, err))
	default:
		return wrapErr(ErrInvalidRecordData, fmt.Errorf("%s: %w", key, err))
	}
}
