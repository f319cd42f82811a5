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
	"github.com/blinklabs-io/solcat/internal/satmath"
	"github.com/blinklabs-io/solcat/records"
)

// updateReporterStats sets a reporter's reputation and credits one
// successful report
func (p *Processor) updateReporterStats(
	inv *invocation,
	payload instruction.Payload,
) error {
	args := payload.(*instruction.UpdateReporterStats)
	if err := p.requireAuthority(inv.account(0)); err != nil {
		return err
	}
	statsAcct := inv.account(1)
	stats, err := loadOrDefault(inv, statsAcct.Key, records.NewReporterStats)
	if err != nil {
		return err
	}
	if args.Reputation > maxScore {
		return wrapErr(
			ErrInvalidReportData,
			fmt.Errorf("reputation %d", args.Reputation),
		)
	}
	stats.ReputationScore = args.Reputation
	stats.SuccessfulReports = satmath.AddU32(stats.SuccessfulReports, 1)
	inv.stage(statsAcct.Key, stats)
	return nil
}
