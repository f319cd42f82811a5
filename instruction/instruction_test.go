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

package instruction_test

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/records"
)

func TestPayloadRoundTrip(t *testing.T) {
	addr := records.NewAddress(bytes.Repeat([]byte{0xab}, records.AddressSize))
	testDefs := []instruction.Payload{
		&instruction.ReportAddress{
			RiskScore:          80,
			Description:        "phishing site",
			RiskTypes:          []records.RiskType{records.RiskTypePhishing},
			ConfidenceScore:    90,
			EvidenceCount:      3,
			TransactionVolume:  1 << 40,
			UniqueInteractions: 12,
			AgeOfAccount:       -5,
			SuspiciousPatterns: []string{"drainer", "airdrop"},
		},
		&instruction.UpdateReport{RiskScore: 10, Description: "resolved"},
		&instruction.StakeOnReport{Amount: 1_000_000_000},
		&instruction.UpdateReporterStats{Reputation: 55},
		&instruction.StakeTokens{Amount: 5, Duration: 604800},
		&instruction.UnstakeTokens{},
		&instruction.ClaimRewards{},
		&instruction.DistributeRewards{},
		&instruction.SubmitBatchReport{
			Entries: []instruction.BatchEntry{{Address: addr, RiskScore: 40}},
		},
		&instruction.VerifyBatchReport{Decision: 1},
		&instruction.BlacklistAddress{Reason: "confirmed"},
		&instruction.UpdateHistory{},
	}
	for _, p := range testDefs {
		t.Run(p.Opcode().String(), func(t *testing.T) {
			data, err := instruction.Encode(p)
			require.NoError(t, err)
			assert.Equal(t, byte(p.Opcode()), data[0])
			decoded, err := instruction.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, p, decoded)
		})
	}
}

func TestReportAddressWireLayout(t *testing.T) {
	data, err := instruction.Encode(&instruction.ReportAddress{
		RiskScore:       70,
		Description:     "ab",
		RiskTypes:       []records.RiskType{records.RiskTypeScam, records.RiskTypeMalware},
		ConfidenceScore: 100,
		EvidenceCount:   1,
	})
	require.NoError(t, err)
	expected := []byte{0, 70, 2, 'a', 'b', 2, 0, 2, 100}
	require.Equal(t, expected, data[:len(expected)])
	rest := data[len(expected):]
	// evidence u32, volume u64, interactions u32, age i64, pattern count u8
	require.Len(t, rest, 4+8+4+8+1)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(rest[0:4]))
}

func TestDecodeErrors(t *testing.T) {
	stake, err := instruction.Encode(&instruction.StakeTokens{Amount: 1, Duration: 2})
	require.NoError(t, err)

	testDefs := []struct {
		name        string
		data        []byte
		expectedErr error
	}{
		{name: "empty", data: nil, expectedErr: instruction.ErrEmptyInstruction},
		{name: "unknown opcode", data: []byte{12}, expectedErr: instruction.ErrUnknownOpcode},
		{name: "truncated", data: stake[:len(stake)-1], expectedErr: instruction.ErrMalformedPayload},
		{name: "trailing", data: append(append([]byte{}, stake...), 0), expectedErr: instruction.ErrMalformedPayload},
		{name: "missing payload", data: []byte{2}, expectedErr: instruction.ErrMalformedPayload},
		{name: "description past end", data: []byte{1, 50, 10, 'x'}, expectedErr: instruction.ErrMalformedPayload},
		{name: "batch entries past end", data: []byte{8, 2, 1, 2, 3}, expectedErr: instruction.ErrMalformedPayload},
		{
			// fixed fields, one pattern of length 5 with no bytes following
			name:        "pattern past end",
			data:        append([]byte{0, 1, 0, 0, 1}, append(make([]byte, 4+8+4+8), 1, 5)...),
			expectedErr: instruction.ErrMalformedPayload,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := instruction.Decode(testDef.data)
			require.ErrorIs(t, err, testDef.expectedErr)
		})
	}
}

func TestDecodeTruncatedVariableLengthPayloads(t *testing.T) {
	testDefs := []instruction.Payload{
		&instruction.ReportAddress{
			RiskScore:          65,
			Description:        "fake mint",
			RiskTypes:          []records.RiskType{records.RiskTypeScam, records.RiskTypeMarketManipulation},
			ConfidenceScore:    80,
			EvidenceCount:      4,
			TransactionVolume:  1 << 33,
			UniqueInteractions: 7,
			AgeOfAccount:       3600,
			SuspiciousPatterns: []string{"honeypot", "mint authority"},
		},
		&instruction.SubmitBatchReport{
			Entries: []instruction.BatchEntry{
				{Address: records.NewAddress(bytes.Repeat([]byte{0x11}, records.AddressSize)), RiskScore: 20},
				{Address: records.NewAddress(bytes.Repeat([]byte{0x22}, records.AddressSize)), RiskScore: 90},
			},
		},
	}
	for _, p := range testDefs {
		t.Run(p.Opcode().String(), func(t *testing.T) {
			data, err := instruction.Encode(p)
			require.NoError(t, err)
			// every strict prefix that keeps the opcode byte
			for i := 1; i < len(data); i++ {
				_, err := instruction.Decode(data[:i])
				require.ErrorIs(t, err, instruction.ErrMalformedPayload, "prefix length %d", i)
			}
		})
	}
}

func TestDecodeLossyStrings(t *testing.T) {
	p, err := instruction.Decode([]byte{10, 3, 'o', 0xff, 'k'})
	require.NoError(t, err)
	assert.Equal(t, "o\uFFFDk", p.(*instruction.BlacklistAddress).Reason)
}

func TestDecodeUnknownRiskType(t *testing.T) {
	data, err := instruction.Encode(&instruction.ReportAddress{RiskTypes: []records.RiskType{records.RiskTypeScam}})
	require.NoError(t, err)
	// opcode, score, desc len, type count, type
	data[4] = 99
	p, err := instruction.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []records.RiskType{records.RiskTypeUnknown}, p.(*instruction.ReportAddress).RiskTypes)
}

func TestEncodeFieldTooLong(t *testing.T) {
	_, err := instruction.Encode(&instruction.BlacklistAddress{Reason: strings.Repeat("x", 256)})
	require.ErrorIs(t, err, instruction.ErrFieldTooLong)
}

func TestOpcodes(t *testing.T) {
	for op := instruction.OpReportAddress; op <= instruction.OpUpdateHistory; op++ {
		parsed, err := instruction.ParseOpcode(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, parsed)
		assert.Positive(t, op.NumAccounts())
	}
	assert.Equal(t, 5, instruction.OpReportAddress.NumAccounts())
	assert.Equal(t, []string{"report", "history"}, instruction.OpUpdateHistory.AccountNames())
	_, err := instruction.ParseOpcode("mint")
	require.ErrorIs(t, err, instruction.ErrUnknownOpcode)

	ins := &instruction.Instruction{Data: []byte{200}}
	_, err = ins.Opcode()
	require.ErrorIs(t, err, instruction.ErrUnknownOpcode)
}
