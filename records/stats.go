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

// AddressStats aggregates every report made about one address
type AddressStats struct {
	TotalReports      uint32  `yaml:"totalReports"`
	RiskScores        []uint8 `yaml:"riskScores,flow"`
	TotalStake        uint64  `yaml:"totalStake"`
	LastUpdate        int64   `yaml:"lastUpdate"`
	WeightedRiskScore uint32  `yaml:"weightedRiskScore"`
	TotalVoteWeight   uint32  `yaml:"totalVoteWeight"`
}

func NewAddressStats() *AddressStats {
	return &AddressStats{}
}

// AverageRisk returns the vote-weighted mean risk score, or 0 when no weight
// has been aggregated yet
func (s *AddressStats) AverageRisk() uint8 {
	if s.TotalVoteWeight == 0 {
		return 0
	}
	return uint8(min(s.WeightedRiskScore/s.TotalVoteWeight, 100)) // #nosec G115
}

func (s *AddressStats) MarshalBinary() ([]byte, error) {
	e := newEncoder()
	e.WriteU32LE(s.TotalReports)
	e.writeByteVec(s.RiskScores)
	e.WriteU64LE(s.TotalStake)
	e.writeI64(s.LastUpdate)
	e.WriteU32LE(s.WeightedRiskScore)
	e.WriteU32LE(s.TotalVoteWeight)
	return e.finish()
}

func (s *AddressStats) UnmarshalBinary(data []byte) error {
	d := newDecoder(data)
	s.TotalReports = d.ReadU32LE()
	s.RiskScores = d.readByteVec()
	s.TotalStake = d.ReadU64LE()
	s.LastUpdate = d.readI64()
	s.WeightedRiskScore = d.ReadU32LE()
	s.TotalVoteWeight = d.ReadU32LE()
	return d.finish("address stats")
}
