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

package scoring

import (
	"math"

	"github.com/blinklabs-io/solcat/internal/satmath"
	"github.com/blinklabs-io/solcat/records"
)

const (
	// BaseWeight is the weight of a new, unstaked reporter with no track
	// record
	BaseWeight = 100
	// LamportsPerUnit converts the smallest native unit to whole units
	LamportsPerUnit = 1_000_000_000
)

// SuccessRate returns round(100 * successful / total), or 0 before the first
// report. It can exceed 100 when successful reports outnumber reports.
func SuccessRate(successful, total uint32) uint32 {
	if total == 0 {
		return 0
	}
	s, t := uint64(successful), uint64(total)
	return satmath.ClampU32((200*s + t) / (2 * t))
}

// VoteWeight returns the influence of a reporter on aggregate risk. All
// products clamp at math.MaxUint32.
func VoteWeight(stats *records.ReporterStats) uint32 {
	reputation := max(uint32(stats.ReputationScore), 1)
	stake := max(satmath.ClampU32(stats.TotalStake/LamportsPerUnit), 1)
	rate := max(SuccessRate(stats.SuccessfulReports, stats.TotalReports), 1)
	ret := uint32(BaseWeight)
	for _, m := range []uint32{reputation, stake, rate} {
		ret = satmath.MulU32(ret, m)
		if ret == math.MaxUint32 {
			break
		}
	}
	return ret
}

// Contribution is the amount a report adds to AddressStats.WeightedRiskScore
func Contribution(score uint8, weight uint32) uint32 {
	return satmath.MulU32(uint32(score), weight)
}
