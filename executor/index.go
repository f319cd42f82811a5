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
	"github.com/blinklabs-io/solcat/database"
	"github.com/blinklabs-io/solcat/database/models"
	"github.com/blinklabs-io/solcat/database/types"
	"github.com/blinklabs-io/solcat/event"
	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/processor"
	"github.com/blinklabs-io/solcat/records"
)

// indexResult writes the metadata rows for the records an instruction wrote
// and returns the events to publish once the transaction commits
func indexResult(
	txn *database.Txn,
	invocationID string,
	result *processor.Result,
) ([]event.Event, error) {
	store := txn.DB().Metadata()
	var ret []event.Event
	for _, key := range result.Written {
		switch rec := result.Records[key].(type) {
		case *records.AddressReport:
			err := store.SetReport(
				&models.Report{
					ReportKey:       key.Bytes(),
					Reporter:        rec.Reporter.Bytes(),
					ReportedAddress: rec.ReportedAddress.Bytes(),
					StakeAmount:     types.Uint64(rec.StakeAmount),
					Timestamp:       rec.Timestamp,
					LastUpdateTime:  rec.LastUpdateTime,
					VoteWeight:      rec.VoteWeight,
					RiskScore:       rec.RiskScore,
				},
				txn.Metadata(),
			)
			if err != nil {
				return nil, err
			}
			ret = append(ret, event.NewEvent(
				event.ReportEventType,
				event.ReportEvent{
					InvocationID:    invocationID,
					Opcode:          result.Opcode.String(),
					Report:          key,
					Reporter:        rec.Reporter,
					ReportedAddress: rec.ReportedAddress,
					RiskScore:       rec.RiskScore,
					StakeAmount:     rec.StakeAmount,
				},
			))
		case *records.ReportHistory:
			evt, err := indexHistory(txn, invocationID, result.Opcode, key, rec)
			if err != nil {
				return nil, err
			}
			if evt != nil {
				ret = append(ret, *evt)
			}
		case *records.BatchReport:
			err := store.SetBatch(
				&models.Batch{
					BatchKey:  key.Bytes(),
					Reporter:  rec.Reporter.Bytes(),
					Timestamp: rec.Timestamp,
					Size:      len(rec.Addresses),
					Status:    uint8(rec.VerificationStatus),
				},
				txn.Metadata(),
			)
			if err != nil {
				return nil, err
			}
			ret = append(ret, event.NewEvent(
				event.BatchEventType,
				event.BatchEvent{
					InvocationID: invocationID,
					Batch:        key,
					Reporter:     rec.Reporter,
					Size:         len(rec.Addresses),
					Status:       rec.VerificationStatus,
				},
			))
		case *records.UserStake:
			ret = append(ret, event.NewEvent(
				event.StakeEventType,
				event.StakeEvent{
					InvocationID: invocationID,
					Opcode:       result.Opcode.String(),
					Owner:        rec.Owner,
					Amount:       result.Amount,
				},
			))
		}
	}
	return ret, nil
}

func indexHistory(
	txn *database.Txn,
	invocationID string,
	op instruction.Opcode,
	key records.Address,
	rec *records.ReportHistory,
) (*event.Event, error) {
	store := txn.DB().Metadata()
	switch op {
	case instruction.OpBlacklistAddress:
		err := store.SetBlacklistEntry(
			&models.BlacklistEntry{
				HistoryKey: key.Bytes(),
				Address:    rec.Address.Bytes(),
				Reason:     rec.BlacklistReason,
				Timestamp:  rec.BlacklistTimestamp,
			},
			txn.Metadata(),
		)
		if err != nil {
			return nil, err
		}
		evt := event.NewEvent(
			event.BlacklistEventType,
			event.BlacklistEvent{
				InvocationID: invocationID,
				HistoryKey:   key,
				Address:      rec.Address,
				Reason:       rec.BlacklistReason,
			},
		)
		return &evt, nil
	case instruction.OpUpdateHistory:
		if len(rec.Reports) == 0 {
			return nil, nil
		}
		last := rec.Reports[len(rec.Reports)-1]
		err := store.AddHistoryEntry(
			&models.HistoryEntry{
				HistoryKey: key.Bytes(),
				Address:    rec.Address.Bytes(),
				Reporter:   last.Reporter.Bytes(),
				Timestamp:  last.Timestamp,
				RiskScore:  last.RiskScore,
			},
			txn.Metadata(),
		)
		return nil, err
	}
	return nil, nil
}
