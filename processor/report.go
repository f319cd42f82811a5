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
	"errors"
	"fmt"

	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/internal/satmath"
	"github.com/blinklabs-io/solcat/records"
	"github.com/blinklabs-io/solcat/scoring"
	"github.com/blinklabs-io/solcat/sybil"
)

const (
	// TimeLockDuration is the minimum time between edits of a report
	TimeLockDuration = 7 * 86400

	maxScore = 100
)

// gateErr maps anti-Sybil rejections to coded errors
func gateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sybil.ErrInsufficientReputation):
		return ErrInsufficientReputation
	case errors.Is(err, sybil.ErrCooldownActive):
		return ErrCooldownActive
	case errors.Is(err, sybil.ErrReportLimitExceeded):
		return ErrReportLimitExceeded
	default:
		return wrapErr(ErrHostFailure, err)
	}
}

// distinct fails when two of the given accounts name the same record
func distinct(accts ...instruction.AccountMeta) error {
	seen := make(map[records.Address]struct{}, len(accts))
	for _, a := range accts {
		if _, ok := seen[a.Key]; ok {
			return wrapErr(
				ErrInvalidAddress,
				fmt.Errorf("record %s passed more than once", a.Key),
			)
		}
		seen[a.Key] = struct{}{}
	}
	return nil
}

func (p *Processor) reportAddress(
	inv *invocation,
	payload instruction.Payload,
) error {
	args := payload.(*instruction.ReportAddress)
	reporter, err := inv.signer(0)
	if err != nil {
		return err
	}
	reported := inv.account(1)
	reportAcct := inv.account(2)
	statsAcct := inv.account(3)
	reporterStatsAcct := inv.account(4)
	if err := distinct(reportAcct, statsAcct, reporterStatsAcct); err != nil {
		return err
	}
	reporterStats, err := loadOrDefault(
		inv,
		reporterStatsAcct.Key,
		records.NewReporterStats,
	)
	if err != nil {
		return err
	}
	if err := gateErr(sybil.Check(reporterStats, inv.now)); err != nil {
		return err
	}
	if args.RiskScore > maxScore {
		return ErrInvalidRiskScore
	}
	if args.ConfidenceScore > maxScore {
		return wrapErr(
			ErrInvalidReportData,
			fmt.Errorf("confidence score %d", args.ConfidenceScore),
		)
	}
	empty, err := inv.isEmpty(reportAcct.Key)
	if err != nil {
		return err
	}
	if !empty {
		return ErrReportAlreadyExists
	}
	stats, err := loadOrDefault(inv, statsAcct.Key, records.NewAddressStats)
	if err != nil {
		return err
	}

	report := &records.AddressReport{
		Reporter:        reporter.Key,
		ReportedAddress: reported.Key,
		Timestamp:       inv.now,
		Description:     args.Description,
		LastUpdateTime:  inv.now,
		TimeLockEnd:     satmath.AddI64(inv.now, TimeLockDuration),
		RiskAssessment: records.RiskAssessment{
			BaseScore:       args.RiskScore,
			RiskTypes:       args.RiskTypes,
			ConfidenceScore: args.ConfidenceScore,
			EvidenceCount:   args.EvidenceCount,
			LastUpdate:      inv.now,
		},
		RiskMetrics: records.RiskMetrics{
			TransactionVolume:  args.TransactionVolume,
			UniqueInteractions: args.UniqueInteractions,
			AgeOfAccount:       args.AgeOfAccount,
			SuspiciousPatterns: args.SuspiciousPatterns,
		},
	}
	report.RiskScore = scoring.Score(&report.RiskAssessment, &report.RiskMetrics)
	// Weight reflects the reporter before this report is counted
	report.VoteWeight = scoring.VoteWeight(reporterStats)

	stats.TotalReports = satmath.AddU32(stats.TotalReports, 1)
	stats.RiskScores = append(stats.RiskScores, report.RiskScore)
	stats.LastUpdate = inv.now
	stats.WeightedRiskScore = satmath.AddU32(
		stats.WeightedRiskScore,
		scoring.Contribution(report.RiskScore, report.VoteWeight),
	)
	stats.TotalVoteWeight = satmath.AddU32(stats.TotalVoteWeight, report.VoteWeight)

	sybil.Record(reporterStats, inv.now)

	inv.stage(reportAcct.Key, report)
	inv.stage(statsAcct.Key, stats)
	inv.stage(reporterStatsAcct.Key, reporterStats)
	inv.result.RiskScore = report.RiskScore
	return nil
}

func (p *Processor) updateReport(
	inv *invocation,
	payload instruction.Payload,
) error {
	args := payload.(*instruction.UpdateReport)
	reporter, err := inv.signer(0)
	if err != nil {
		return err
	}
	reportAcct := inv.account(1)
	statsAcct := inv.account(2)
	if err := distinct(reportAcct, statsAcct); err != nil {
		return err
	}
	report, err := load[records.AddressReport](inv, reportAcct.Key)
	if err != nil {
		return err
	}
	if report.Reporter != reporter.Key {
		return ErrNotAuthorized
	}
	if inv.now < report.TimeLockEnd {
		return ErrTimeLockActive
	}
	if args.RiskScore > maxScore {
		return ErrInvalidRiskScore
	}
	stats, err := load[records.AddressStats](inv, statsAcct.Key)
	if err != nil {
		return err
	}

	stats.WeightedRiskScore = satmath.AddU32(
		satmath.SubU32(
			stats.WeightedRiskScore,
			scoring.Contribution(report.RiskScore, report.VoteWeight),
		),
		scoring.Contribution(args.RiskScore, report.VoteWeight),
	)
	stats.LastUpdate = inv.now

	report.RiskScore = args.RiskScore
	report.Description = args.Description
	report.LastUpdateTime = inv.now
	report.TimeLockEnd = satmath.AddI64(inv.now, TimeLockDuration)

	inv.stage(reportAcct.Key, report)
	inv.stage(statsAcct.Key, stats)
	inv.result.RiskScore = report.RiskScore
	return nil
}

func (p *Processor) stakeOnReport(
	inv *invocation,
	payload instruction.Payload,
) error {
	args := payload.(*instruction.StakeOnReport)
	staker, err := inv.signer(0)
	if err != nil {
		return err
	}
	reportAcct := inv.account(1)
	statsAcct := inv.account(2)
	reporterStatsAcct := inv.account(3)
	configAcct := inv.account(4)
	if err := distinct(reportAcct, statsAcct, reporterStatsAcct, configAcct); err != nil {
		return err
	}
	config, err := load[records.GlobalConfig](inv, configAcct.Key)
	if err != nil {
		return err
	}
	if args.Amount < config.MinStakeAmount {
		return ErrInsufficientStake
	}
	report, err := load[records.AddressReport](inv, reportAcct.Key)
	if err != nil {
		return err
	}
	stats, err := load[records.AddressStats](inv, statsAcct.Key)
	if err != nil {
		return err
	}
	reporterStats, err := load[records.ReporterStats](inv, reporterStatsAcct.Key)
	if err != nil {
		return err
	}

	reporterStats.TotalStake = satmath.AddU64(reporterStats.TotalStake, args.Amount)
	newWeight := scoring.VoteWeight(reporterStats)

	stats.WeightedRiskScore = satmath.AddU32(
		satmath.SubU32(
			stats.WeightedRiskScore,
			scoring.Contribution(report.RiskScore, report.VoteWeight),
		),
		scoring.Contribution(report.RiskScore, newWeight),
	)
	stats.TotalVoteWeight = satmath.AddU32(
		satmath.SubU32(stats.TotalVoteWeight, report.VoteWeight),
		newWeight,
	)
	stats.TotalStake = satmath.AddU64(stats.TotalStake, args.Amount)

	report.StakeAmount = satmath.AddU64(report.StakeAmount, args.Amount)
	report.VoteWeight = newWeight

	inv.stageTransfer(staker.Key, reportAcct.Key, args.Amount)
	inv.stage(reportAcct.Key, report)
	inv.stage(statsAcct.Key, stats)
	inv.stage(reporterStatsAcct.Key, reporterStats)
	inv.result.Amount = args.Amount
	return nil
}
