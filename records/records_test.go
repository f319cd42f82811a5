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

package records_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/solcat/records"
)

func testAddress(b byte) records.Address {
	return records.NewAddress(bytes.Repeat([]byte{b}, records.AddressSize))
}

func TestAddressText(t *testing.T) {
	addr := testAddress(0x42)
	parsed, err := records.ParseAddress(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)
	assert.False(t, parsed.IsZero())
	assert.True(t, records.Address{}.IsZero())

	_, err = records.ParseAddress("abc")
	require.Error(t, err)
	_, err = records.ParseAddress("0OIl")
	require.Error(t, err)
}

func TestReporterStatsLayout(t *testing.T) {
	stats := &records.ReporterStats{
		TotalReports:      3,
		SuccessfulReports: 2,
		TotalStake:        5_000_000_000,
		ReputationScore:   42,
		LastReportTime:    1_700_000_000,
		ReportsInWindow:   1,
		CooldownEndTime:   1_700_003_600,
		TokenBalance:      7,
		RewardsClaimed:    9,
	}
	data, err := stats.MarshalBinary()
	require.NoError(t, err)
	// u32 u32 u64 u8 i64 u32 i64 u64 u64
	require.Len(t, data, 4+4+8+1+8+4+8+8+8)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint64(5_000_000_000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, byte(42), data[16])

	decoded, err := records.Decode[records.ReporterStats](data)
	require.NoError(t, err)
	assert.Equal(t, stats, decoded)
}

func TestAddressReportRoundTrip(t *testing.T) {
	report := &records.AddressReport{
		Reporter:        testAddress(1),
		ReportedAddress: testAddress(2),
		RiskScore:       77,
		StakeAmount:     10,
		Timestamp:       100,
		Description:     "drainer contract",
		VoteWeight:      1000,
		LastUpdateTime:  100,
		TimeLockEnd:     100 + 604800,
		RiskAssessment: records.RiskAssessment{
			BaseScore: 80,
			RiskTypes: []records.RiskType{
				records.RiskTypePhishing,
				records.RiskTypeRansomware,
			},
			ConfidenceScore: 90,
			EvidenceCount:   4,
			LastUpdate:      100,
		},
		RiskMetrics: records.RiskMetrics{
			TransactionVolume:  1_000_000,
			UniqueInteractions: 12,
			AgeOfAccount:       3600,
			SuspiciousPatterns: []string{"mixer", "fresh-funding"},
		},
	}
	data, err := report.MarshalBinary()
	require.NoError(t, err)
	decoded, err := records.Decode[records.AddressReport](data)
	require.NoError(t, err)
	assert.Equal(t, report, decoded)
	assert.Equal(t, uint8(100), decoded.RiskAssessment.MaxSeverity())
}

func TestBatchAndHistoryRoundTrip(t *testing.T) {
	batch := &records.BatchReport{
		Reporter:           testAddress(3),
		Addresses:          []records.Address{testAddress(4), testAddress(5)},
		RiskScores:         []uint8{10, 20},
		Timestamp:          55,
		VerificationStatus: records.VerificationVerified,
	}
	data, err := batch.MarshalBinary()
	require.NoError(t, err)
	decodedBatch, err := records.Decode[records.BatchReport](data)
	require.NoError(t, err)
	assert.Equal(t, batch, decodedBatch)

	history := records.NewReportHistory(testAddress(6))
	history.Reports = append(history.Reports, records.HistoricalReport{
		Timestamp:   1,
		RiskScore:   50,
		Reporter:    testAddress(7),
		Description: "first",
	})
	history.IsBlacklisted = true
	history.BlacklistReason = "confirmed scam"
	history.BlacklistTimestamp = 2
	data, err = history.MarshalBinary()
	require.NoError(t, err)
	decodedHistory, err := records.Decode[records.ReportHistory](data)
	require.NoError(t, err)
	assert.Equal(t, history, decodedHistory)
}

func TestUnknownEnumValues(t *testing.T) {
	batch := &records.BatchReport{
		Reporter:   testAddress(3),
		Addresses:  []records.Address{testAddress(4)},
		RiskScores: []uint8{10},
	}
	data, err := batch.MarshalBinary()
	require.NoError(t, err)
	data[len(data)-1] = 7
	decoded, err := records.Decode[records.BatchReport](data)
	require.NoError(t, err)
	assert.Equal(t, records.VerificationUnknown, decoded.VerificationStatus)
	assert.True(t, decoded.VerificationStatus.Terminal())

	assert.Equal(t, records.RiskTypeUnknown, records.RiskTypeFromByte(200))
	assert.Equal(t, records.RiskTypeMalware, records.RiskTypeFromByte(2))
	assert.Equal(t, uint8(50), records.RiskType(200).Severity())
	rt, err := records.ParseRiskType("money_laundering")
	require.NoError(t, err)
	assert.Equal(t, records.RiskTypeMoneyLaundering, rt)
}

func TestDecodeMalformed(t *testing.T) {
	pool := &records.StakePool{TotalStaked: 1, RewardPerToken: 2, LastUpdateTime: 3, RewardRate: 4}
	data, err := pool.MarshalBinary()
	require.NoError(t, err)

	testDefs := []struct {
		name string
		data []byte
	}{
		{name: "truncated", data: data[:len(data)-1]},
		{name: "trailing", data: append(append([]byte{}, data...), 0)},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := records.Decode[records.StakePool](testDef.data)
			require.ErrorIs(t, err, records.ErrMalformed)
		})
	}

	// vector length larger than the remaining input
	stats := &records.AddressStats{RiskScores: []uint8{1, 2, 3}}
	data, err = stats.MarshalBinary()
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(data[4:8], 1<<30)
	_, err = records.Decode[records.AddressStats](data)
	require.ErrorIs(t, err, records.ErrMalformed)

	// bool outside 0/1
	cfg := &records.GlobalConfig{StakingEnabled: true}
	data, err = cfg.MarshalBinary()
	require.NoError(t, err)
	data[len(data)-9] = 2
	_, err = records.Decode[records.GlobalConfig](data)
	require.ErrorIs(t, err, records.ErrMalformed)
}

func TestDecodeOrDefault(t *testing.T) {
	_, err := records.Decode[records.UserStake](nil)
	require.ErrorIs(t, err, records.ErrNotInitialized)

	owner := testAddress(9)
	stake, err := records.DecodeOrDefault(nil, func() *records.UserStake {
		return records.NewUserStake(owner)
	})
	require.NoError(t, err)
	assert.Equal(t, owner, stake.Owner)
	assert.Zero(t, stake.Amount)

	_, err = records.DecodeOrDefault([]byte{1, 2}, records.NewAddressStats)
	require.ErrorIs(t, err, records.ErrMalformed)
}

func TestAverageRisk(t *testing.T) {
	stats := records.NewAddressStats()
	assert.Equal(t, uint8(0), stats.AverageRisk())
	stats.WeightedRiskScore = 80*100 + 40*300
	stats.TotalVoteWeight = 400
	assert.Equal(t, uint8(50), stats.AverageRisk())
}
