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

// RiskAssessment is the evidence a reporter declares for a report
type RiskAssessment struct {
	BaseScore       uint8      `yaml:"baseScore"`
	RiskTypes       []RiskType `yaml:"riskTypes"`
	ConfidenceScore uint8      `yaml:"confidenceScore"`
	EvidenceCount   uint32     `yaml:"evidenceCount"`
	LastUpdate      int64      `yaml:"lastUpdate"`
}

// MaxSeverity returns the highest severity among the declared risk types,
// or 0 when none were declared
func (a *RiskAssessment) MaxSeverity() uint8 {
	var ret uint8
	for _, t := range a.RiskTypes {
		ret = max(ret, t.Severity())
	}
	return ret
}

func (a *RiskAssessment) encode(e *encoder) {
	e.WriteB(a.BaseScore)
	e.writeLen(len(a.RiskTypes))
	for _, t := range a.RiskTypes {
		e.WriteB(byte(t))
	}
	e.WriteB(a.ConfidenceScore)
	e.WriteU32LE(a.EvidenceCount)
	e.writeI64(a.LastUpdate)
}

func (a *RiskAssessment) decode(d *decoder) {
	a.BaseScore = d.ReadB()
	raw := d.readByteVec()
	a.RiskTypes = make([]RiskType, len(raw))
	for i, b := range raw {
		a.RiskTypes[i] = RiskTypeFromByte(b)
	}
	a.ConfidenceScore = d.ReadB()
	a.EvidenceCount = d.ReadU32LE()
	a.LastUpdate = d.readI64()
}

// RiskMetrics are the observed on-chain signals for the reported address
type RiskMetrics struct {
	TransactionVolume  uint64   `yaml:"transactionVolume"`
	UniqueInteractions uint32   `yaml:"uniqueInteractions"`
	AgeOfAccount       int64    `yaml:"ageOfAccount"`
	SuspiciousPatterns []string `yaml:"suspiciousPatterns"`
}

func (m *RiskMetrics) encode(e *encoder) {
	e.WriteU64LE(m.TransactionVolume)
	e.WriteU32LE(m.UniqueInteractions)
	e.writeI64(m.AgeOfAccount)
	e.writeLen(len(m.SuspiciousPatterns))
	for _, p := range m.SuspiciousPatterns {
		e.writeString(p)
	}
}

func (m *RiskMetrics) decode(d *decoder) {
	m.TransactionVolume = d.ReadU64LE()
	m.UniqueInteractions = d.ReadU32LE()
	m.AgeOfAccount = d.readI64()
	// Each pattern takes at least its 4-byte length prefix
	n := d.readLen(4)
	m.SuspiciousPatterns = make([]string, 0, n)
	for range n {
		m.SuspiciousPatterns = append(m.SuspiciousPatterns, d.readString())
	}
}

// AddressReport is one reporter's current claim about one address
type AddressReport struct {
	Reporter        Address        `yaml:"reporter"`
	ReportedAddress Address        `yaml:"reportedAddress"`
	RiskScore       uint8          `yaml:"riskScore"`
	StakeAmount     uint64         `yaml:"stakeAmount"`
	Timestamp       int64          `yaml:"timestamp"`
	Description     string         `yaml:"description"`
	VoteWeight      uint32         `yaml:"voteWeight"`
	LastUpdateTime  int64          `yaml:"lastUpdateTime"`
	TimeLockEnd     int64          `yaml:"timeLockEnd"`
	RiskAssessment  RiskAssessment `yaml:"riskAssessment"`
	RiskMetrics     RiskMetrics    `yaml:"riskMetrics"`
}

func (r *AddressReport) MarshalBinary() ([]byte, error) {
	e := newEncoder()
	e.writeAddress(r.Reporter)
	e.writeAddress(r.ReportedAddress)
	e.WriteB(r.RiskScore)
	e.WriteU64LE(r.StakeAmount)
	e.writeI64(r.Timestamp)
	e.writeString(r.Description)
	e.WriteU32LE(r.VoteWeight)
	e.writeI64(r.LastUpdateTime)
	e.writeI64(r.TimeLockEnd)
	r.RiskAssessment.encode(e)
	r.RiskMetrics.encode(e)
	return e.finish()
}

func (r *AddressReport) UnmarshalBinary(data []byte) error {
	d := newDecoder(data)
	r.Reporter = d.readAddress()
	r.ReportedAddress = d.readAddress()
	r.RiskScore = d.ReadB()
	r.StakeAmount = d.ReadU64LE()
	r.Timestamp = d.readI64()
	r.Description = d.readString()
	r.VoteWeight = d.ReadU32LE()
	r.LastUpdateTime = d.readI64()
	r.TimeLockEnd = d.readI64()
	r.RiskAssessment.decode(d)
	r.RiskMetrics.decode(d)
	return d.finish("address report")
}
