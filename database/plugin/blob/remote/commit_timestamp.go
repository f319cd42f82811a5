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
	"strconv"

	"github.com/blinklabs-io/solcat/database/types"
)

const commitTimestampBlobKey = "metadata_commit_timestamp"

// GetCommitTimestamp returns the timestamp of the last coordinated commit, or
// 0 for a fresh bucket
func (s *Store) GetCommitTimestamp() (int64, error) {
	data, err := s.read(commitTimestampBlobKey)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	ts, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid commit timestamp: %w", err)
	}
	return ts, nil
}

func (s *Store) SetCommitTimestamp(timestamp int64, txn types.Txn) error {
	return s.Set(txn, []byte(commitTimestampBlobKey), []byte(strconv.FormatInt(timestamp, 10)))
}
