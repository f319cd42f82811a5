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

package types_test

import (
	"database/sql"
	"database/sql/driver"
	"math"
	"testing"

	"github.com/blinklabs-io/solcat/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesScanValue(t *testing.T) {
	testDefs := []struct {
		origValue     any
		expectedValue any
	}{
		{
			origValue: func(v types.Uint64) *types.Uint64 { return &v }(
				types.Uint64(123),
			),
			expectedValue: "123",
		},
		{
			origValue: func(v types.Uint64) *types.Uint64 { return &v }(
				types.Uint64(math.MaxUint64),
			),
			expectedValue: "18446744073709551615",
		},
	}
	for _, testDef := range testDefs {
		tmpValuer, ok := testDef.origValue.(driver.Valuer)
		require.True(t, ok, "test original value does not implement driver.Valuer")
		valueOut, err := tmpValuer.Value()
		require.NoError(t, err)
		assert.Equal(t, testDef.expectedValue, valueOut)
		tmpScanner, ok := testDef.origValue.(sql.Scanner)
		require.True(t, ok, "test original value does not implement sql.Scanner")
		require.NoError(t, tmpScanner.Scan(valueOut))
		assert.Equal(t, testDef.origValue, tmpScanner)
	}
}

func TestUint64ScanWrongType(t *testing.T) {
	var u types.Uint64
	require.Error(t, u.Scan(int64(5)))
	require.Error(t, u.Scan("not-a-number"))
}

func TestBlobKeys(t *testing.T) {
	key := []byte{1, 2, 3}
	recKey := types.RecordBlobKey(key)
	assert.Equal(t, []byte{'r', 1, 2, 3}, recKey)
	assert.Equal(t, key, types.RecordKeyFromBlobKey(recKey))
	assert.Equal(t, []byte{'l', 1, 2, 3}, types.BalanceBlobKey(key))
}

func TestBalanceEncoding(t *testing.T) {
	data := types.EncodeBalance(0x0102030405060708)
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, data)
	v, ok := types.DecodeBalance(data)
	require.True(t, ok)
	assert.Equal(t, uint64(0x0102030405060708), v)
	_, ok = types.DecodeBalance(data[:7])
	assert.False(t, ok)
}
