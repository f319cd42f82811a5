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
	"fmt"

	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/records"
	"github.com/blinklabs-io/solcat/staking"
	"github.com/blinklabs-io/solcat/sybil"
)

func (p *Processor) submitBatchReport(
	inv *invocation,
	payload instruction.Payload,
) error {
	args := payload.(*instruction.SubmitBatchReport)
	reporter, err := inv.signer(0)
	if err != nil {
		return err
	}
	batchAcct := inv.account(1)
	statsAcct := inv.account(2)
	if err := distinct(batchAcct, statsAcct); err != nil {
		return err
	}
	stats, err := loadOrDefault(inv, statsAcct.Key, records.NewReporterStats)
	if err != nil {
		return err
	}
	if err := gateErr(sybil.CheckReputation(stats)); err != nil {
		return err
	}
	if len(args.Entries) == 0 || len(args.Entries) > records.MaxBatchSize {
		return wrapErr(
			ErrInvalidBatchReport,
			fmt.Errorf("batch of %d addresses", len(args.Entries)),
		)
	}
	batch := &records.BatchReport{
		Reporter:           reporter.Key,
		Addresses:          make([]records.Address, 0, len(args.Entries)),
		RiskScores:         make([]uint8, 0, len(args.Entries)),
		Timestamp:          inv.now,
		VerificationStatus: records.VerificationPending,
	}
	for _, e := range args.Entries {
		if e.RiskScore > maxScore {
			return ErrInvalidRiskScore
		}
		batch.Addresses = append(batch.Addresses, e.Address)
		batch.RiskScores = append(batch.RiskScores, e.RiskScore)
	}
	empty, err := inv.isEmpty(batchAcct.Key)
	if err != nil {
		return err
	}
	if !empty {
		return ErrReportAlreadyExists
	}
	inv.stage(batchAcct.Key, batch)
	return nil
}

func (p *Processor) verifyBatchReport(
	inv *invocation,
	payload instruction.Payload,
) error {
	args := payload.(*instruction.VerifyBatchReport)
	verifier, err := inv.signer(0)
	if err != nil {
		return err
	}
	if args.Decision > 1 {
		return wrapErr(
			ErrMalformedPayload,
			fmt.Errorf("verification decision %d", args.Decision),
		)
	}
	batchAcct := inv.account(1)
	statsAcct := inv.account(2)
	if err := distinct(batchAcct, statsAcct); err != nil {
		return err
	}
	stats, err := loadOrDefault(inv, statsAcct.Key, records.NewReporterStats)
	if err != nil {
		return err
	}
	if stats.TotalStake < staking.MinVerificationStake {
		return ErrInsufficientStake
	}
	batch, err := load[records.BatchReport](inv, batchAcct.Key)
	if err != nil {
		return err
	}
	if batch.Reporter == verifier.Key {
		return ErrNotAuthorized
	}
	if batch.VerificationStatus != records.VerificationPending {
		return ErrBatchVerificationPending
	}
	if args.Decision == 1 {
		batch.VerificationStatus = records.VerificationVerified
	} else {
		batch.VerificationStatus = records.VerificationRejected
	}
	inv.stage(batchAcct.Key, batch)
	return nil
}
