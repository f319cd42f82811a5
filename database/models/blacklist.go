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

package models

// BlacklistEntry records a blacklisted address. HistoryKey is the history
// record that carries the flag.
type BlacklistEntry struct {
	ID         uint   `gorm:"primarykey"`
	HistoryKey []byte `gorm:"uniqueIndex"`
	Address    []byte `gorm:"index"`
	Reason     string
	Timestamp  int64
}

func (BlacklistEntry) TableName() string {
	return "blacklist_entry"
}
