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

package event

import "github.com/blinklabs-io/solcat/records"

const (
	ReportEventType            = EventType("solcat.report")
	BlacklistEventType         = EventType("solcat.blacklist")
	BatchEventType             = EventType("solcat.batch")
	StakeEventType             = EventType("solcat.stake")
	InstructionFailedEventType = EventType("solcat.instruction_failed")
)

// ReportEvent is emitted when a report is filed, updated or staked on
type ReportEvent struct {
	InvocationID    string
	Opcode          string
	Report          records.Address
	Reporter        records.Address
	ReportedAddress records.Address
	RiskScore       uint8
	StakeAmount     uint64
}

type BlacklistEvent struct {
	InvocationID string
	HistoryKey   records.Address
	Address      records.Address
	Reason       string
}

// BatchEvent is emitted when a batch is submitted and when it is verified or
// rejected
type BatchEvent struct {
	InvocationID string
	Batch        records.Address
	Reporter     records.Address
	Size         int
	Status       records.VerificationStatus
}

// StakeEvent is emitted by the token staking instructions. Amount is the
// staked, released or claimed amount.
type StakeEvent struct {
	InvocationID string
	Opcode       string
	Owner        records.Address
	Amount       uint64
}

type InstructionFailedEvent struct {
	InvocationID string
	Opcode       string
	Error        string
	Code         uint32
}
