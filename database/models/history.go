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

// HistoryEntry is one snapshot appended to a report history
type HistoryEntry struct {
	ID         uint   `gorm:"primarykey"`
	HistoryKey []byte `gorm:"index"`
	Address    []byte `gorm:"index"`
	Reporter   []byte
	Timestamp  int64
	RiskScore  uint8
}

func (HistoryEntry) TableName() string {
	return "history_entry"
}
