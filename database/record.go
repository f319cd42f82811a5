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

package database

import (
	"errors"
	"fmt"
	"math"

	"github.com/blinklabs-io/solcat/database/types"
	"github.com/blinklabs-io/solcat/records"
)

func (t *Txn) blob() (types.Txn, error) {
	if t.blobTxn == nil {
		return nil, types.ErrNoStoreAvailable
	}
	return t.blobTxn, nil
}

func (t *Txn) get(key []byte) ([]byte, error) {
	txn, err := t.blob()
	if err != nil {
		return nil, err
	}
	data, err := t.db.Blob().Get(txn, key)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (t *Txn) set(key []byte, val []byte) error {
	txn, err := t.blob()
	if err != nil {
		return err
	}
	return t.db.Blob().Set(txn, key, val)
}

// Record returns the stored bytes of the record at key, or nil when the
// record has never been written
func (t *Txn) Record(key records.Address) ([]byte, error) {
	return t.get(types.RecordBlobKey(key.Bytes()))
}

// SetRecord replaces the stored bytes of the record at key
func (t *Txn) SetRecord(key records.Address, data []byte) error {
	return t.set(types.RecordBlobKey(key.Bytes()), data)
}

// ForEachRecord calls fn for every stored record in key order
func (t *Txn) ForEachRecord(
	fn func(key records.Address, data []byte) error,
) error {
	txn, err := t.blob()
	if err != nil {
		return err
	}
	prefix := []byte(types.RecordBlobKeyPrefix)
	iter := t.db.Blob().NewIterator(
		txn,
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		recordKey := types.RecordKeyFromBlobKey(item.Key())
		if len(recordKey) != records.AddressSize {
			continue
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(records.NewAddress(recordKey), data); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Balance returns the native balance of an account. Accounts that were never
// credited hold 0.
func (t *Txn) Balance(key records.Address) (uint64, error) {
	data, err := t.get(types.BalanceBlobKey(key.Bytes()))
	if err != nil {
		return 0, err
	}
	if data == nil {
		return 0, nil
	}
	ret, ok := types.DecodeBalance(data)
	if !ok {
		return 0, fmt.Errorf("invalid balance data for %s", key)
	}
	return ret, nil
}

func (t *Txn) SetBalance(key records.Address, amount uint64) error {
	return t.set(types.BalanceBlobKey(key.Bytes()), types.EncodeBalance(amount))
}

// Credit adds amount to the balance of an account
func (t *Txn) Credit(key records.Address, amount uint64) error {
	balance, err := t.Balance(key)
	if err != nil {
		return err
	}
	if balance > math.MaxUint64-amount {
		return fmt.Errorf("balance overflow for %s", key)
	}
	return t.SetBalance(key, balance+amount)
}

// Transfer moves native balance between accounts. It fails with
// types.ErrInsufficientBalance when the source cannot cover the amount.
func (t *Txn) Transfer(from, to records.Address, amount uint64) error {
	fromBalance, err := t.Balance(from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf(
			"%w: %s holds %d, need %d",
			types.ErrInsufficientBalance,
			from,
			fromBalance,
			amount,
		)
	}
	if from == to || amount == 0 {
		return nil
	}
	if err := t.SetBalance(from, fromBalance-amount); err != nil {
		return err
	}
	return t.Credit(to, amount)
}
