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

// Package processor executes instructions against the records supplied by a
// host. Every handler reads the clock once, decodes its payload, loads and
// validates everything, and only then performs the native transfer and the
// record writes.
package processor

import (
	"errors"
	"io"
	"log/slog"

	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/records"
)

// Host provides the capabilities the processor consumes. ReadRecord returns
// empty data for absent records.
type Host interface {
	Now() int64
	ReadRecord(key records.Address) ([]byte, error)
	WriteRecord(key records.Address, data []byte) error
	Transfer(from records.Address, to records.Address, amount uint64) error
}

// Result describes a successful instruction
type Result struct {
	Opcode instruction.Opcode
	// Written lists the keys of the records written, in write order
	Written []records.Address
	// Records maps written keys to the decoded values that were stored
	Records map[records.Address]records.Record
	// Amount is the claimed or unstaked amount for claim_rewards and
	// unstake_tokens, and the staked amount for stake_on_report and
	// stake_tokens
	Amount uint64
	// RiskScore is the final risk score of a new or updated report
	RiskScore uint8
}

type Processor struct {
	programID records.Address
	authority records.Address
	logger    *slog.Logger
}

type ProcessorOptionFunc func(*Processor)

// WithAuthority specifies the key allowed to run privileged instructions. It
// defaults to the program ID.
func WithAuthority(authority records.Address) ProcessorOptionFunc {
	return func(p *Processor) {
		p.authority = authority
	}
}

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ProcessorOptionFunc {
	return func(p *Processor) {
		p.logger = logger
	}
}

func New(programID records.Address, opts ...ProcessorOptionFunc) *Processor {
	p := &Processor{
		programID: programID,
		authority: programID,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return p
}

func (p *Processor) ProgramID() records.Address {
	return p.programID
}

func (p *Processor) Authority() records.Address {
	return p.authority
}

type handlerFunc func(*Processor, *invocation, instruction.Payload) error

var handlers = map[instruction.Opcode]handlerFunc{
	instruction.OpReportAddress:       (*Processor).reportAddress,
	instruction.OpUpdateReport:        (*Processor).updateReport,
	instruction.OpStakeOnReport:       (*Processor).stakeOnReport,
	instruction.OpUpdateReporterStats: (*Processor).updateReporterStats,
	instruction.OpStakeTokens:         (*Processor).stakeTokens,
	instruction.OpUnstakeTokens:       (*Processor).unstakeTokens,
	instruction.OpClaimRewards:        (*Processor).claimRewards,
	instruction.OpDistributeRewards:   (*Processor).distributeRewards,
	instruction.OpSubmitBatchReport:   (*Processor).submitBatchReport,
	instruction.OpVerifyBatchReport:   (*Processor).verifyBatchReport,
	instruction.OpBlacklistAddress:    (*Processor).blacklistAddress,
	instruction.OpUpdateHistory:       (*Processor).updateHistory,
}

// Process executes one instruction. On failure the returned error is always
// an *Error and nothing has been written through host.
func (p *Processor) Process(
	host Host,
	ins *instruction.Instruction,
) (*Result, error) {
	now := host.Now()
	payload, err := instruction.Decode(ins.Data)
	if err != nil {
		if errors.Is(err, instruction.ErrMalformedPayload) {
			return nil, wrapErr(ErrMalformedPayload, err)
		}
		return nil, wrapErr(ErrInvalidInstruction, err)
	}
	op := payload.Opcode()
	if len(ins.Accounts) < op.NumAccounts() {
		return nil, ErrNotEnoughAccountKeys
	}
	inv := &invocation{
		host:     host,
		now:      now,
		accounts: ins.Accounts,
		result:   &Result{Opcode: op},
	}
	if err := handlers[op](p, inv, payload); err != nil {
		p.logger.Debug(
			"instruction failed",
			"component", "processor",
			"opcode", op.String(),
			"error", err,
		)
		return nil, err
	}
	if err := inv.commit(); err != nil {
		return nil, err
	}
	p.logger.Debug(
		"instruction processed",
		"component", "processor",
		"opcode", op.String(),
		"records", len(inv.result.Written),
	)
	return inv.result, nil
}

// requireAuthority checks that the account signs and is the configured
// authority
func (p *Processor) requireAuthority(acct instruction.AccountMeta) error {
	if !acct.IsSigner || acct.Key != p.authority {
		return ErrNotAuthorized
	}
	return nil
}
