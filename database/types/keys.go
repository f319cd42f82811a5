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

package types

import (
	"encoding/binary"
	"slices"
)

const (
	RecordBlobKeyPrefix  = "r"
	BalanceBlobKeyPrefix = "l"
	BalanceSize          = 8
)

// RecordBlobKey returns the blob key holding the bytes of the record at key
func RecordBlobKey(key []byte) []byte {
	return slices.Concat([]byte(RecordBlobKeyPrefix), key)
}

// RecordKeyFromBlobKey strips the record prefix from a blob key
func RecordKeyFromBlobKey(blobKey []byte) []byte {
	return blobKey[len(RecordBlobKeyPrefix):]
}

// BalanceBlobKey returns the blob key holding the native balance of an account
func BalanceBlobKey(key []byte) []byte {
	return slices.Concat([]byte(BalanceBlobKeyPrefix), key)
}

func EncodeBalance(amount uint64) []byte {
	ret := make([]byte, BalanceSize)
	binary.LittleEndian.PutUint64(ret, amount)
	return ret
}

func DecodeBalance(data []byte) (uint64, bool) {
	if len(data) != BalanceSize {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data), true
}
