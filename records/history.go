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

// HistoricalReport is a snapshot of a report appended to a ReportHistory
type HistoricalReport struct {
	Timestamp   int64   `yaml:"timestamp"`
	RiskScore   uint8   `yaml:"riskScore"`
	Reporter    Address `yaml:"reporter"`
	Description string  `yaml:"description"`
}

// ReportHistory is the audit trail and blacklist flag of an address
type ReportHistory struct {
	Address            Address            `yaml:"address"`
	Reports            []HistoricalReport `yaml:"reports"`
	IsBlacklisted      bool               `yaml:"isBlacklisted"`
	BlacklistReason    string             `yaml:"blacklistReason"`
	BlacklistTimestamp int64              `yaml:"blacklistTimestamp"`
}

// NewReportHistory returns an empty, non-blacklisted history for addr
func NewReportHistory(addr Address) *ReportHistory {
	return &ReportHistory{Address: addr}
}

func (h *ReportHistory) MarshalBinary() ([]byte, error) {
	e := newEncoder()
	e.writeAddress(h.Address)
	e.writeLen(len(h.Reports))
	for _, r := range h.Reports {
		e.writeI64(r.Timestamp)
		e.WriteB(r.RiskScore)
		e.writeAddress(r.Reporter)
		e.writeString(r.Description)
	}
	e.WriteBool(h.IsBlacklisted)
	e.writeString(h.BlacklistReason)
	e.writeI64(h.BlacklistTimestamp)
	return e.finish()
}

// historicalReportMinSize is the encoded size of a HistoricalReport with an
// empty description
const historicalReportMinSize = 8 + 1 + AddressSize + 4

func (h *ReportHistory) UnmarshalBinary(data []byte) error {
	d := newDecoder(data)
	h.Address = d.readAddress()
	n := d.readLen(historicalReportMinSize)
	h.Reports = make([]HistoricalReport, n)
	for i := range h.Reports {
		h.Reports[i].Timestamp = d.readI64()
		h.Reports[i].RiskScore = d.ReadB()
		h.Reports[i].Reporter = d.readAddress()
		h.Reports[i].Description = d.readString()
	}
	h.IsBlacklisted = d.readBool()
	h.BlacklistReason = d.readString()
	h.BlacklistTimestamp = d.readI64()
	return d.finish("report history")
}
