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

package records

// ReporterStats holds the reputation, rate-limit and stake state of a reporter
type ReporterStats struct {
	TotalReports      uint32 `yaml:"totalReports"`
	SuccessfulReports uint32 `yaml:"successfulReports"`
	TotalStake        uint64 `yaml:"totalStake"`
	ReputationScore   uint8  `yaml:"reputationScore"`
	LastReportTime    int64  `yaml:"lastReportTime"`
	ReportsInWindow   uint32 `yaml:"reportsInWindow"`
	CooldownEndTime   int64  `yaml:"cooldownEndTime"`
	TokenBalance      uint64 `yaml:"tokenBalance"`
	RewardsClaimed    uint64 `yaml:"rewardsClaimed"`
}

// NewReporterStats returns the state of a reporter that has never been seen
func NewReporterStats() *ReporterStats {
	return &ReporterStats{}
}

func (s *ReporterStats) MarshalBinary() ([]byte, error) {
	e := newEncoder()
	e.WriteU32LE(s.TotalReports)
	e.WriteU32LE(s.SuccessfulReports)
	e.WriteU64LE(s.TotalStake)
	e.WriteB(s.ReputationScore)
	e.writeI64(s.LastReportTime)
	e.WriteU32LE(s.ReportsInWindow)
	e.writeI64(s.CooldownEndTime)
	e.WriteU64LE(s.TokenBalance)
	e.WriteU64LE(s.RewardsClaimed)
	return e.finish()
}

func (s *ReporterStats) UnmarshalBinary(data []byte) error {
	d := newDecoder(data)
	s.TotalReports = d.ReadU32LE()
	s.SuccessfulReports = d.ReadU32LE()
	s.TotalStake = d.ReadU64LE()
	s.ReputationScore = d.ReadB()
	s.LastReportTime = d.readI64()
	s.ReportsInWindow = d.ReadU32LE()
	s.CooldownEndTime = d.readI64()
	s.TokenBalance = d.ReadU64LE()
	s.RewardsClaimed = d.ReadU64LE()
	return d.finish("reporter stats")
}
