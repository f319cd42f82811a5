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
)

func (p *Processor) blacklistAddress(
	inv *invocation,
	payload instruction.Payload,
) error {
	args := payload.(*instruction.BlacklistAddress)
	if err := p.requireAuthority(inv.account(0)); err != nil {
		return err
	}
	historyAcct := inv.account(1)
	history, err := loadOrDefault(inv, historyAcct.Key, func() *records.ReportHistory {
		return records.NewReportHistory(historyAcct.Key)
	})
	if err != nil {
		return err
	}
	if history.IsBlacklisted {
		return ErrAddressAlreadyBlacklisted
	}
	history.IsBlacklisted = true
	history.BlacklistReason = args.Reason
	history.BlacklistTimestamp = inv.now
	inv.stage(historyAcct.Key, history)
	return nil
}

// updateHistory appends a snapshot of a report to the reported address's
// history. Anyone may call it.
func (p *Processor) updateHistory(
	inv *invocation,
	_ instruction.Payload,
) error {
	reportAcct := inv.account(0)
	historyAcct := inv.account(1)
	if err := distinct(reportAcct, historyAcct); err != nil {
		return err
	}
	report, err := load[records.AddressReport](inv, reportAcct.Key)
	if err != nil {
		return err
	}
	history, err := loadOrDefault(inv, historyAcct.Key, func() *records.ReportHistory {
		return records.NewReportHistory(report.ReportedAddress)
	})
	if err != nil {
		return err
	}
	if history.Address != report.ReportedAddress {
		return wrapErr(
			ErrHistoryUpdateFailed,
			fmt.Errorf(
				"history of %s cannot hold a report about %s",
				history.Address,
				report.ReportedAddress,
			),
		)
	}
	history.Reports = append(history.Reports, records.HistoricalReport{
		Timestamp:   inv.now,
		RiskScore:   report.RiskScore,
		Reporter:    report.Reporter,
		Description: report.Description,
	})
	inv.stage(historyAcct.Key, history)
	return nil
}
