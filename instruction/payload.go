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

package instruction

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/io"

	"github.com/blinklabs-io/solcat/records"
)

// Payload is the opcode-specific part of an instruction
type Payload interface {
	Opcode() Opcode
	encode(w *writer)
	decode(r *reader)
}

type ReportAddress struct {
	RiskScore          uint8              `yaml:"riskScore"`
	Description        string             `yaml:"description"`
	RiskTypes          []records.RiskType `yaml:"riskTypes"`
	ConfidenceScore    uint8              `yaml:"confidenceScore"`
	EvidenceCount      uint32             `yaml:"evidenceCount"`
	TransactionVolume  uint64             `yaml:"transactionVolume"`
	UniqueInteractions uint32             `yaml:"uniqueInteractions"`
	AgeOfAccount       int64              `yaml:"ageOfAccount"`
	SuspiciousPatterns []string           `yaml:"suspiciousPatterns"`
}

func (*ReportAddress) Opcode() Opcode { return OpReportAddress }

func (p *ReportAddress) encode(w *writer) {
	w.WriteB(p.RiskScore)
	w.writeShortString("description", p.Description)
	w.writeCount("risk types", len(p.RiskTypes))
	for _, t := range p.RiskTypes {
		w.WriteB(byte(t))
	}
	w.WriteB(p.ConfidenceScore)
	w.WriteU32LE(p.EvidenceCount)
	w.WriteU64LE(p.TransactionVolume)
	w.WriteU32LE(p.UniqueInteractions)
	w.WriteU64LE(uint64(p.AgeOfAccount)) // #nosec G115
	w.writeCount("suspicious patterns", len(p.SuspiciousPatterns))
	for _, s := range p.SuspiciousPatterns {
		w.writeShortString("suspicious pattern", s)
	}
}

func (p *ReportAddress) decode(r *reader) {
	p.RiskScore = r.ReadB()
	p.Description = r.readShortString()
	n := int(r.ReadB())
	p.RiskTypes = make([]records.RiskType, 0, n)
	for range n {
		p.RiskTypes = append(p.RiskTypes, records.RiskTypeFromByte(r.ReadB()))
	}
	p.ConfidenceScore = r.ReadB()
	p.EvidenceCount = r.ReadU32LE()
	p.TransactionVolume = r.ReadU64LE()
	p.UniqueInteractions = r.ReadU32LE()
	p.AgeOfAccount = int64(r.ReadU64LE()) // #nosec G115
	n = int(r.ReadB())
	p.SuspiciousPatterns = make([]string, 0, n)
	for range n {
		p.SuspiciousPatterns = append(p.SuspiciousPatterns, r.readShortString())
	}
}

type UpdateReport struct {
	RiskScore   uint8  `yaml:"riskScore"`
	Description string `yaml:"description"`
}

func (*UpdateReport) Opcode() Opcode { return OpUpdateReport }

func (p *UpdateReport) encode(w *writer) {
	w.WriteB(p.RiskScore)
	w.writeShortString("description", p.Description)
}

func (p *UpdateReport) decode(r *reader) {
	p.RiskScore = r.ReadB()
	p.Description = r.readShortString()
}

type StakeOnReport struct {
	Amount uint64 `yaml:"amount"`
}

func (*StakeOnReport) Opcode() Opcode { return OpStakeOnReport }

func (p *StakeOnReport) encode(w *writer) { w.WriteU64LE(p.Amount) }

func (p *StakeOnReport) decode(r *reader) { p.Amount = r.ReadU64LE() }

type UpdateReporterStats struct {
	Reputation uint8 `yaml:"reputation"`
}

func (*UpdateReporterStats) Opcode() Opcode { return OpUpdateReporterStats }

func (p *UpdateReporterStats) encode(w *writer) { w.WriteB(p.Reputation) }

func (p *UpdateReporterStats) decode(r *reader) { p.Reputation = r.ReadB() }

type StakeTokens struct {
	Amount   uint64 `yaml:"amount"`
	Duration int64  `yaml:"duration"`
}

func (*StakeTokens) Opcode() Opcode { return OpStakeTokens }

func (p *StakeTokens) encode(w *writer) {
	w.WriteU64LE(p.Amount)
	w.WriteU64LE(uint64(p.Duration)) // #nosec G115
}

func (p *StakeTokens) decode(r *reader) {
	p.Amount = r.ReadU64LE()
	p.Duration = int64(r.ReadU64LE()) // #nosec G115
}

// empty is embedded by payloads that carry no data
type empty struct{}

func (empty) encode(*writer) {}

func (empty) decode(*reader) {}

type UnstakeTokens struct{ empty }

func (*UnstakeTokens) Opcode() Opcode { return OpUnstakeTokens }

type ClaimRewards struct{ empty }

func (*ClaimRewards) Opcode() Opcode { return OpClaimRewards }

type DistributeRewards struct{ empty }

func (*DistributeRewards) Opcode() Opcode { return OpDistributeRewards }

type UpdateHistory struct{ empty }

func (*UpdateHistory) Opcode() Opcode { return OpUpdateHistory }

// BatchEntry is one address of a batch report
type BatchEntry struct {
	Address   records.Address `yaml:"address"`
	RiskScore uint8           `yaml:"riskScore"`
}

type SubmitBatchReport struct {
	Entries []BatchEntry `yaml:"entries"`
}

func (*SubmitBatchReport) Opcode() Opcode { return OpSubmitBatchReport }

func (p *SubmitBatchReport) encode(w *writer) {
	w.writeCount("batch entries", len(p.Entries))
	for _, e := range p.Entries {
		w.WriteBytes(e.Address[:])
		w.WriteB(e.RiskScore)
	}
}

func (p *SubmitBatchReport) decode(r *reader) {
	n := int(r.ReadB())
	p.Entries = make([]BatchEntry, n)
	for i := range p.Entries {
		r.ReadBytes(p.Entries[i].Address[:])
		p.Entries[i].RiskScore = r.ReadB()
	}
}

type VerifyBatchReport struct {
	// Decision is 1 to verify and 0 to reject
	Decision uint8 `yaml:"decision"`
}

func (*VerifyBatchReport) Opcode() Opcode { return OpVerifyBatchReport }

func (p *VerifyBatchReport) encode(w *writer) { w.WriteB(p.Decision) }

func (p *VerifyBatchReport) decode(r *reader) { p.Decision = r.ReadB() }

type BlacklistAddress struct {
	Reason string `yaml:"reason"`
}

func (*BlacklistAddress) Opcode() Opcode { return OpBlacklistAddress }

func (p *BlacklistAddress) encode(w *writer) {
	w.writeShortString("reason", p.Reason)
}

func (p *BlacklistAddress) decode(r *reader) {
	p.Reason = r.readShortString()
}

// NewPayload returns an empty payload for the opcode
func NewPayload(op Opcode) (Payload, error) {
	switch op {
	case OpReportAddress:
		return &ReportAddress{}, nil
	case OpUpdateReport:
		return &UpdateReport{}, nil
	case OpStakeOnReport:
		return &StakeOnReport{}, nil
	case OpUpdateReporterStats:
		return &UpdateReporterStats{}, nil
	case OpStakeTokens:
		return &StakeTokens{}, nil
	case OpUnstakeTokens:
		return &UnstakeTokens{}, nil
	case OpClaimRewards:
		return &ClaimRewards{}, nil
	case OpDistributeRewards:
		return &DistributeRewards{}, nil
	case OpSubmitBatchReport:
		return &SubmitBatchReport{}, nil
	case OpVerifyBatchReport:
		return &VerifyBatchReport{}, nil
	case OpBlacklistAddress:
		return &BlacklistAddress{}, nil
	case OpUpdateHistory:
		return &UpdateHistory{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOpcode, uint8(op))
	}
}

// Decode decodes instruction data. Every field read is bounds checked and
// trailing bytes are rejected.
func Decode(data []byte) (Payload, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInstruction
	}
	p, err := NewPayload(Opcode(data[0]))
	if err != nil {
		return nil, err
	}
	r := newReader(data[1:])
	p.decode(r)
	if err := r.finish(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedPayload, p.Opcode(), err)
	}
	return p, nil
}

// Encode returns the instruction data for a payload
func Encode(p Payload) ([]byte, error) {
	w := &writer{BufBinWriter: io.NewBufBinWriter()}
	w.WriteB(byte(p.Opcode()))
	p.encode(w)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

type writer struct {
	*io.BufBinWriter
}

func (w *writer) writeCount(field string, n int) {
	if n > math.MaxUint8 {
		if w.Err == nil {
			w.Err = fmt.Errorf("%w: %s: %d > %d", ErrFieldTooLong, field, n, math.MaxUint8)
		}
		return
	}
	w.WriteB(byte(n))
}

func (w *writer) writeShortString(field string, s string) {
	w.writeCount(field, len(s))
	w.WriteBytes([]byte(s))
}

type reader struct {
	*io.BinReader
	buf *bytes.Reader
}

func newReader(data []byte) *reader {
	buf := bytes.NewReader(data)
	return &reader{
		BinReader: io.NewBinReaderFromIO(buf),
		buf:       buf,
	}
}

// readShortString reads a u8 length-prefixed string. Invalid UTF-8 is
// replaced rather than rejected.
func (r *reader) readShortString() string {
	n := int(r.ReadB())
	if r.Err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	r.ReadBytes(buf)
	return strings.ToValidUTF8(string(buf), "\uFFFD")
}

func (r *reader) finish() error {
	if r.Err != nil {
		return r.Err
	}
	if r.buf.Len() > 0 {
		return fmt.Errorf("%d trailing bytes", r.buf.Len())
	}
	return nil
}
