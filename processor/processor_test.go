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

package processor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/processor"
	"github.com/blinklabs-io/solcat/records"
	"github.com/blinklabs-io/solcat/scoring"
	"github.com/blinklabs-io/solcat/staking"
)

const t0 = int64(1_700_000_000)

var (
	programID     = key(0x01)
	authority     = key(0x02)
	reporter      = key(0x10)
	reporterStats = key(0x11)
	target        = key(0x20)
	reportKey     = key(0x21)
	addrStatsKey  = key(0x22)
	historyKey    = key(0x23)
	configKey     = key(0x30)
	poolKey       = key(0x31)
	mintKey       = key(0x32)
	treasuryKey   = key(0x33)
	staker        = key(0x40)
	userStakeKey  = key(0x41)
	verifier      = key(0x50)
	verifierStats = key(0x51)
	batchKey      = key(0x52)
)

func key(b byte) records.Address {
	var a records.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func newProcessor() *processor.Processor {
	return processor.New(programID, processor.WithAuthority(authority))
}

func mustInstruction(t *testing.T, p instruction.Payload, accts ...instruction.AccountMeta) *instruction.Instruction {
	t.Helper()
	ins, err := instruction.New(p, accts...)
	require.NoError(t, err)
	return ins
}

func mustRead[T any, PT interface {
	*T
	records.Record
}](t *testing.T, h *memHost, key records.Address) *T {
	t.Helper()
	ret, err := records.Decode[T, PT](h.records[key])
	require.NoError(t, err)
	return ret
}

func setReputation(t *testing.T, p *processor.Processor, h *memHost, stats records.Address, rep uint8) {
	t.Helper()
	_, err := p.Process(h, mustInstruction(
		t,
		&instruction.UpdateReporterStats{Reputation: rep},
		instruction.Signer(authority),
		instruction.Account(stats),
	))
	require.NoError(t, err)
}

func reportPayload(score uint8) *instruction.ReportAddress {
	return &instruction.ReportAddress{
		RiskScore:       score,
		Description:     "suspected drainer",
		RiskTypes:       []records.RiskType{records.RiskTypeScam},
		ConfidenceScore: 100,
		EvidenceCount:   2,
		AgeOfAccount:    10 * 86400,
	}
}

func reportAccounts() []instruction.AccountMeta {
	return []instruction.AccountMeta{
		instruction.Signer(reporter),
		instruction.Account(target),
		instruction.Account(reportKey),
		instruction.Account(addrStatsKey),
		instruction.Account(reporterStats),
	}
}

func TestDispatchErrors(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)

	_, err := p.Process(h, &instruction.Instruction{})
	require.ErrorIs(t, err, processor.ErrInvalidInstruction)

	_, err = p.Process(h, &instruction.Instruction{Data: []byte{42}})
	require.ErrorIs(t, err, processor.ErrInvalidInstruction)

	_, err = p.Process(h, &instruction.Instruction{
		Data:     []byte{byte(instruction.OpStakeOnReport), 1, 2},
		Accounts: make([]instruction.AccountMeta, 5),
	})
	require.ErrorIs(t, err, processor.ErrMalformedPayload)

	_, err = p.Process(h, mustInstruction(t, &instruction.UpdateHistory{}, instruction.Account(reportKey)))
	require.ErrorIs(t, err, processor.ErrNotEnoughAccountKeys)

	code, ok := processor.ErrorCode(err)
	require.True(t, ok)
	assert.Equal(t, uint32(102), code)
	assert.Zero(t, h.writes)
}

func TestErrorCodesStable(t *testing.T) {
	all := processor.AllErrors()
	for i := range 23 {
		assert.Equal(t, uint32(i), all[i].Code)
	}
	assert.Equal(t, uint32(20), processor.ErrAddressAlreadyBlacklisted.Code)
	seen := map[uint32]bool{}
	for _, e := range all {
		assert.False(t, seen[e.Code], "duplicate code %d", e.Code)
		seen[e.Code] = true
	}
}

func TestPrivilegedAuthority(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)
	testDefs := []struct {
		name string
		acct instruction.AccountMeta
	}{
		{name: "not signer", acct: instruction.Account(authority)},
		{name: "program id", acct: instruction.Signer(programID)},
		{name: "other signer", acct: instruction.Signer(reporter)},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := p.Process(h, mustInstruction(
				t,
				&instruction.UpdateReporterStats{Reputation: 50},
				testDef.acct,
				instruction.Account(reporterStats),
			))
			require.ErrorIs(t, err, processor.ErrNotAuthorized)
		})
	}
	// without WithAuthority the program id is the authority
	_, err := processor.New(programID).Process(h, mustInstruction(
		t,
		&instruction.UpdateReporterStats{Reputation: 50},
		instruction.Signer(programID),
		instruction.Account(reporterStats),
	))
	require.NoError(t, err)

	_, err = p.Process(h, mustInstruction(
		t,
		&instruction.UpdateReporterStats{Reputation: 101},
		instruction.Signer(authority),
		instruction.Account(reporterStats),
	))
	require.ErrorIs(t, err, processor.ErrInvalidReportData)
}

func TestReportAddress(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)

	// unknown reporters have no reputation
	_, err := p.Process(h, mustInstruction(t, reportPayload(80), reportAccounts()...))
	require.ErrorIs(t, err, processor.ErrInsufficientReputation)

	setReputation(t, p, h, reporterStats, 9)
	_, err = p.Process(h, mustInstruction(t, reportPayload(80), reportAccounts()...))
	require.ErrorIs(t, err, processor.ErrInsufficientReputation)

	setReputation(t, p, h, reporterStats, 50)

	accts := reportAccounts()
	accts[0].IsSigner = false
	_, err = p.Process(h, mustInstruction(t, reportPayload(80), accts...))
	require.ErrorIs(t, err, processor.ErrNotAuthorized)

	_, err = p.Process(h, mustInstruction(t, reportPayload(101), reportAccounts()...))
	require.ErrorIs(t, err, processor.ErrInvalidRiskScore)

	bad := reportPayload(80)
	bad.ConfidenceScore = 101
	_, err = p.Process(h, mustInstruction(t, bad, reportAccounts()...))
	require.ErrorIs(t, err, processor.ErrInvalidReportData)

	accts = reportAccounts()
	accts[3].Key = reportKey
	_, err = p.Process(h, mustInstruction(t, reportPayload(80), accts...))
	require.ErrorIs(t, err, processor.ErrInvalidAddress)

	payload := reportPayload(80)
	res, err := p.Process(h, mustInstruction(t, payload, reportAccounts()...))
	require.NoError(t, err)
	assert.Equal(t, []records.Address{reportKey, addrStatsKey, reporterStats}, res.Written)

	expectedScore := scoring.Score(
		&records.RiskAssessment{BaseScore: 80, ConfidenceScore: 100},
		&records.RiskMetrics{AgeOfAccount: payload.AgeOfAccount},
	)
	assert.Equal(t, expectedScore, res.RiskScore)

	report := mustRead[records.AddressReport](t, h, reportKey)
	assert.Equal(t, reporter, report.Reporter)
	assert.Equal(t, target, report.ReportedAddress)
	assert.Equal(t, expectedScore, report.RiskScore)
	// 100 * reputation 50 * stake 1 * success rate 1
	assert.Equal(t, uint32(5000), report.VoteWeight)
	assert.Equal(t, t0+processor.TimeLockDuration, report.TimeLockEnd)
	assert.Equal(t, []records.RiskType{records.RiskTypeScam}, report.RiskAssessment.RiskTypes)

	stats := mustRead[records.AddressStats](t, h, addrStatsKey)
	assert.Equal(t, uint32(1), stats.TotalReports)
	assert.Equal(t, []uint8{expectedScore}, stats.RiskScores)
	assert.Equal(t, uint32(expectedScore)*5000, stats.WeightedRiskScore)
	assert.Equal(t, uint32(5000), stats.TotalVoteWeight)

	rs := mustRead[records.ReporterStats](t, h, reporterStats)
	assert.Equal(t, uint32(1), rs.TotalReports)
	assert.Equal(t, uint32(1), rs.ReportsInWindow)
	assert.Equal(t, t0+3600, rs.CooldownEndTime)

	// the report record is taken
	h.now = t0 + 3600
	_, err = p.Process(h, mustInstruction(t, reportPayload(80), reportAccounts()...))
	require.ErrorIs(t, err, processor.ErrReportAlreadyExists)

	// cooldown applies to any new report
	accts = reportAccounts()
	accts[2].Key = key(0x24)
	h.now = t0 + 10
	_, err = p.Process(h, mustInstruction(t, reportPayload(80), accts...))
	require.ErrorIs(t, err, processor.ErrCooldownActive)
}

func TestReportWindowLimit(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)
	setReputation(t, p, h, reporterStats, 50)
	for i := range 6 {
		accts := reportAccounts()
		accts[2].Key = key(byte(0x80 + i))
		h.now = t0 + int64(i)*3600
		_, err := p.Process(h, mustInstruction(t, reportPayload(50), accts...))
		if i < 5 {
			require.NoError(t, err, "report %d", i+1)
			continue
		}
		require.ErrorIs(t, err, processor.ErrReportLimitExceeded)
	}
}

func TestUpdateReportTimeLock(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)
	setReputation(t, p, h, reporterStats, 50)
	_, err := p.Process(h, mustInstruction(t, reportPayload(80), reportAccounts()...))
	require.NoError(t, err)
	report := mustRead[records.AddressReport](t, h, reportKey)
	before := mustRead[records.AddressStats](t, h, addrStatsKey)

	update := func(signer records.Address, score uint8) error {
		_, err := p.Process(h, mustInstruction(
			t,
			&instruction.UpdateReport{RiskScore: score, Description: "updated"},
			instruction.Signer(signer),
			instruction.Account(reportKey),
			instruction.Account(addrStatsKey),
		))
		return err
	}

	h.now = report.TimeLockEnd - 1
	require.ErrorIs(t, update(reporter, 90), processor.ErrTimeLockActive)

	h.now = report.TimeLockEnd
	require.ErrorIs(t, update(staker, 90), processor.ErrNotAuthorized)
	require.ErrorIs(t, update(reporter, 101), processor.ErrInvalidRiskScore)
	require.NoError(t, update(reporter, 90))

	after := mustRead[records.AddressStats](t, h, addrStatsKey)
	delta := int64(after.WeightedRiskScore) - int64(before.WeightedRiskScore)
	assert.Equal(t, (int64(90)-int64(report.RiskScore))*int64(report.VoteWeight), delta)
	assert.Equal(t, before.TotalVoteWeight, after.TotalVoteWeight)

	updated := mustRead[records.AddressReport](t, h, reportKey)
	assert.Equal(t, uint8(90), updated.RiskScore)
	assert.Equal(t, "updated", updated.Description)
	assert.Equal(t, h.now+processor.TimeLockDuration, updated.TimeLockEnd)

	// lock refreshed
	require.ErrorIs(t, update(reporter, 10), processor.ErrTimeLockActive)
}

func setupStaking(h *memHost, enabled bool) *records.GlobalConfig {
	cfg := &records.GlobalConfig{
		MinStakeAmount:  1_000,
		RewardRate:      4_000_000_000_000,
		TokenMint:       mintKey,
		Treasury:        treasuryKey,
		TotalSupply:     1_000_000,
		StakingEnabled:  enabled,
		MinLockDuration: staking.MinStakeDuration,
	}
	h.put(configKey, cfg)
	h.put(poolKey, &records.StakePool{TotalStaked: 1_000, LastUpdateTime: t0, RewardRate: 4})
	return cfg
}

func TestStakeOnReport(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)
	setupStaking(h, true)
	setReputation(t, p, h, reporterStats, 50)
	_, err := p.Process(h, mustInstruction(t, reportPayload(80), reportAccounts()...))
	require.NoError(t, err)
	report := mustRead[records.AddressReport](t, h, reportKey)

	stake := func(amount uint64) error {
		_, err := p.Process(h, mustInstruction(
			t,
			&instruction.StakeOnReport{Amount: amount},
			instruction.Signer(staker),
			instruction.Account(reportKey),
			instruction.Account(addrStatsKey),
			instruction.Account(reporterStats),
			instruction.Account(configKey),
		))
		return err
	}

	require.ErrorIs(t, stake(999), processor.ErrInsufficientStake)
	h.balances[staker] = 1_000
	require.ErrorIs(t, stake(3_000_000_000), processor.ErrInsufficientTokenBalance)
	assert.Equal(t, uint64(1_000), h.balances[staker])

	h.balances[staker] = 3_000_000_000
	require.NoError(t, stake(3_000_000_000))
	assert.Equal(t, uint64(3_000_000_000), h.balances[reportKey])
	assert.Zero(t, h.balances[staker])

	updated := mustRead[records.AddressReport](t, h, reportKey)
	// reputation 50, stake 3 units, success rate round(100*1/1)
	newWeight := uint32(100 * 50 * 3 * 100)
	assert.Equal(t, newWeight, updated.VoteWeight)
	assert.Equal(t, uint64(3_000_000_000), updated.StakeAmount)

	stats := mustRead[records.AddressStats](t, h, addrStatsKey)
	assert.Equal(t, uint32(report.RiskScore)*newWeight, stats.WeightedRiskScore)
	assert.Equal(t, newWeight, stats.TotalVoteWeight)
	assert.Equal(t, uint64(3_000_000_000), stats.TotalStake)

	rs := mustRead[records.ReporterStats](t, h, reporterStats)
	assert.Equal(t, uint64(3_000_000_000), rs.TotalStake)
}

func TestStakeOnReportWithoutMinimum(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)
	cfg := setupStaking(h, true)
	cfg.MinStakeAmount = 0
	h.put(configKey, cfg)
	setReputation(t, p, h, reporterStats, 50)
	_, err := p.Process(h, mustInstruction(t, reportPayload(80), reportAccounts()...))
	require.NoError(t, err)

	res, err := p.Process(h, mustInstruction(
		t,
		&instruction.StakeOnReport{Amount: 0},
		instruction.Signer(staker),
		instruction.Account(reportKey),
		instruction.Account(addrStatsKey),
		instruction.Account(reporterStats),
		instruction.Account(configKey),
	))
	require.NoError(t, err)
	assert.Zero(t, res.Amount)
	updated := mustRead[records.AddressReport](t, h, reportKey)
	assert.Zero(t, updated.StakeAmount)
	assert.Zero(t, h.balances[reportKey])
}

func stakeAccounts(signer bool) []instruction.AccountMeta {
	first := instruction.Account(staker)
	first.IsSigner = signer
	return []instruction.AccountMeta{
		first,
		instruction.Account(poolKey),
		instruction.Account(userStakeKey),
		instruction.Account(mintKey),
		instruction.Account(configKey),
	}
}

func TestStakeTokensValidation(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)

	_, err := p.Process(h, mustInstruction(t, &instruction.StakeTokens{Amount: 1, Duration: staking.MinStakeDuration}, stakeAccounts(true)...))
	require.ErrorIs(t, err, processor.ErrUninitializedRecord)

	setupStaking(h, false)
	_, err = p.Process(h, mustInstruction(t, &instruction.StakeTokens{Amount: 1, Duration: staking.MinStakeDuration}, stakeAccounts(true)...))
	require.ErrorIs(t, err, processor.ErrStakingDisabled)

	setupStaking(h, true)
	testDefs := []struct {
		name        string
		payload     *instruction.StakeTokens
		accounts    []instruction.AccountMeta
		expectedErr error
	}{
		{
			name:        "unsigned",
			payload:     &instruction.StakeTokens{Amount: 1, Duration: staking.MinStakeDuration},
			accounts:    stakeAccounts(false),
			expectedErr: processor.ErrNotAuthorized,
		},
		{
			name:        "zero amount",
			payload:     &instruction.StakeTokens{Amount: 0, Duration: staking.MinStakeDuration},
			accounts:    stakeAccounts(true),
			expectedErr: processor.ErrInvalidStakeAmount,
		},
		{
			name:        "short duration",
			payload:     &instruction.StakeTokens{Amount: 1, Duration: staking.MinStakeDuration - 1},
			accounts:    stakeAccounts(true),
			expectedErr: processor.ErrInvalidStakeAmount,
		},
		{
			name:        "long duration",
			payload:     &instruction.StakeTokens{Amount: 1, Duration: staking.MaxStakeDuration + 1},
			accounts:    stakeAccounts(true),
			expectedErr: processor.ErrInvalidStakeAmount,
		},
		{
			name:    "wrong mint",
			payload: &instruction.StakeTokens{Amount: 1, Duration: staking.MinStakeDuration},
			accounts: func() []instruction.AccountMeta {
				a := stakeAccounts(true)
				a[3].Key = treasuryKey
				return a
			}(),
			expectedErr: processor.ErrInvalidTokenMint,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := p.Process(h, mustInstruction(t, testDef.payload, testDef.accounts...))
			require.ErrorIs(t, err, testDef.expectedErr)
		})
	}
}

func TestStakeUnstakeClaim(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)
	setupStaking(h, true)
	poolBefore := mustRead[records.StakePool](t, h, poolKey)

	res, err := p.Process(h, mustInstruction(
		t,
		&instruction.StakeTokens{Amount: 1_000, Duration: staking.MinStakeDuration},
		stakeAccounts(true)...,
	))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), res.Amount)
	user := mustRead[records.UserStake](t, h, userStakeKey)
	assert.Equal(t, staker, user.Owner)
	assert.Equal(t, t0+staking.MinStakeDuration, user.LockEndTime)
	assert.Equal(t, uint64(2_000), mustRead[records.StakePool](t, h, poolKey).TotalStaked)

	// another signer cannot add to the position
	accts := stakeAccounts(true)
	accts[0] = instruction.Signer(verifier)
	_, err = p.Process(h, mustInstruction(t, &instruction.StakeTokens{Amount: 1, Duration: staking.MinStakeDuration}, accts...))
	require.ErrorIs(t, err, processor.ErrNotAuthorized)

	distribute := func(signer records.Address) error {
		_, err := p.Process(h, mustInstruction(
			t,
			&instruction.DistributeRewards{},
			instruction.Signer(signer),
			instruction.Account(poolKey),
			instruction.Account(configKey),
		))
		return err
	}
	h.now = t0 + 500
	require.ErrorIs(t, distribute(staker), processor.ErrNotAuthorized)
	require.NoError(t, distribute(authority))
	// 4e12 * 500 / 2000
	assert.Equal(t, uint64(1_000_000_000_000), mustRead[records.StakePool](t, h, poolKey).RewardPerToken)

	unstake := func() (*processor.Result, error) {
		return p.Process(h, mustInstruction(
			t,
			&instruction.UnstakeTokens{},
			instruction.Signer(staker),
			instruction.Account(poolKey),
			instruction.Account(userStakeKey),
		))
	}
	h.now = user.LockEndTime - 1
	_, err = unstake()
	require.ErrorIs(t, err, processor.ErrStakeLocked)

	h.now = user.LockEndTime
	res, err = unstake()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), res.Amount)
	pool := mustRead[records.StakePool](t, h, poolKey)
	assert.Equal(t, poolBefore.TotalStaked, pool.TotalStaked)
	user = mustRead[records.UserStake](t, h, userStakeKey)
	// 1000 * 1e12 / 1e9
	assert.Equal(t, uint64(1_000_000), user.RewardsEarned)
	assert.Equal(t, pool.RewardPerToken, user.RewardPerTokenPaid)
	assert.Zero(t, user.Amount)

	claim := func(treasury records.Address) (*processor.Result, error) {
		return p.Process(h, mustInstruction(
			t,
			&instruction.ClaimRewards{},
			instruction.Signer(staker),
			instruction.Account(poolKey),
			instruction.Account(userStakeKey),
			instruction.Account(treasury),
			instruction.Account(configKey),
		))
	}
	_, err = claim(mintKey)
	require.ErrorIs(t, err, processor.ErrTreasuryMismatch)
	res, err = claim(treasuryKey)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), res.Amount)
	assert.Zero(t, mustRead[records.UserStake](t, h, userStakeKey).RewardsEarned)
	_, err = claim(treasuryKey)
	require.ErrorIs(t, err, processor.ErrInvalidRewardCalculation)
}

func TestBatchWorkflow(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)
	setReputation(t, p, h, reporterStats, 50)

	entries := func(n int) []instruction.BatchEntry {
		ret := make([]instruction.BatchEntry, n)
		for i := range ret {
			ret[i] = instruction.BatchEntry{Address: key(byte(0xa0 + i)), RiskScore: 60}
		}
		return ret
	}
	submit := func(n int) error {
		_, err := p.Process(h, mustInstruction(
			t,
			&instruction.SubmitBatchReport{Entries: entries(n)},
			instruction.Signer(reporter),
			instruction.Account(batchKey),
			instruction.Account(reporterStats),
		))
		return err
	}
	require.ErrorIs(t, submit(0), processor.ErrInvalidBatchReport)
	require.ErrorIs(t, submit(11), processor.ErrInvalidBatchReport)
	require.NoError(t, submit(10))
	require.ErrorIs(t, submit(1), processor.ErrReportAlreadyExists)

	batch := mustRead[records.BatchReport](t, h, batchKey)
	assert.Len(t, batch.Addresses, 10)
	assert.Equal(t, records.VerificationPending, batch.VerificationStatus)

	verify := func(who records.Address, decision uint8) error {
		_, err := p.Process(h, mustInstruction(
			t,
			&instruction.VerifyBatchReport{Decision: decision},
			instruction.Signer(who),
			instruction.Account(batchKey),
			instruction.Account(verifierStats),
		))
		return err
	}
	require.ErrorIs(t, verify(verifier, 1), processor.ErrInsufficientStake)
	h.put(verifierStats, &records.ReporterStats{TotalStake: staking.MinVerificationStake})
	require.ErrorIs(t, verify(reporter, 1), processor.ErrNotAuthorized)
	require.ErrorIs(t, verify(verifier, 2), processor.ErrMalformedPayload)
	require.NoError(t, verify(verifier, 0))
	assert.Equal(t, records.VerificationRejected, mustRead[records.BatchReport](t, h, batchKey).VerificationStatus)

	// terminal
	require.ErrorIs(t, verify(verifier, 1), processor.ErrBatchVerificationPending)
	require.ErrorIs(t, verify(verifier, 0), processor.ErrBatchVerificationPending)
	assert.Equal(t, records.VerificationRejected, mustRead[records.BatchReport](t, h, batchKey).VerificationStatus)
}

func TestBlacklistAndHistory(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)

	// a blacklisted history is keyed by the address it describes
	blacklist := func(addr records.Address, reason string) error {
		_, err := p.Process(h, mustInstruction(
			t,
			&instruction.BlacklistAddress{Reason: reason},
			instruction.Signer(authority),
			instruction.Account(addr),
		))
		return err
	}
	require.NoError(t, blacklist(target, "confirmed scam"))
	history := mustRead[records.ReportHistory](t, h, target)
	assert.Equal(t, target, history.Address)
	assert.True(t, history.IsBlacklisted)
	assert.Equal(t, "confirmed scam", history.BlacklistReason)
	assert.Equal(t, t0, history.BlacklistTimestamp)

	h.now = t0 + 100
	require.ErrorIs(t, blacklist(target, "again"), processor.ErrAddressAlreadyBlacklisted)
	history = mustRead[records.ReportHistory](t, h, target)
	assert.True(t, history.IsBlacklisted)
	assert.Equal(t, "confirmed scam", history.BlacklistReason)

	// history keeps growing after blacklisting
	setReputation(t, p, h, reporterStats, 50)
	_, err := p.Process(h, mustInstruction(t, reportPayload(70), reportAccounts()...))
	require.NoError(t, err)
	report := mustRead[records.AddressReport](t, h, reportKey)
	updateHistory := func(historyAcct records.Address) error {
		_, err := p.Process(h, mustInstruction(
			t,
			&instruction.UpdateHistory{},
			instruction.Account(reportKey),
			instruction.Account(historyAcct),
		))
		return err
	}
	for range 2 {
		require.NoError(t, updateHistory(target))
	}
	history = mustRead[records.ReportHistory](t, h, target)
	require.Len(t, history.Reports, 2)
	assert.Equal(t, report.RiskScore, history.Reports[0].RiskScore)
	assert.Equal(t, reporter, history.Reports[1].Reporter)
	assert.True(t, history.IsBlacklisted)

	// a history belonging to another address is refused
	other := key(0x60)
	h.put(other, records.NewReportHistory(key(0x61)))
	require.ErrorIs(t, updateHistory(other), processor.ErrHistoryUpdateFailed)
}

func TestUpdateHistoryRefusesCrossAddressAppend(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)

	// historyKey's blacklist record describes historyKey itself
	_, err := p.Process(h, mustInstruction(
		t,
		&instruction.BlacklistAddress{Reason: "mixer"},
		instruction.Signer(authority),
		instruction.Account(historyKey),
	))
	require.NoError(t, err)
	setReputation(t, p, h, reporterStats, 50)
	_, err = p.Process(h, mustInstruction(t, reportPayload(70), reportAccounts()...))
	require.NoError(t, err)
	before := h.snapshot()
	writes := h.writes

	// the report is about target, not historyKey
	_, err = p.Process(h, mustInstruction(
		t,
		&instruction.UpdateHistory{},
		instruction.Account(reportKey),
		instruction.Account(historyKey),
	))
	require.ErrorIs(t, err, processor.ErrHistoryUpdateFailed)
	assert.Equal(t, writes, h.writes)
	assert.Equal(t, before, h.snapshot())
	history := mustRead[records.ReportHistory](t, h, historyKey)
	assert.Equal(t, historyKey, history.Address)
	assert.Empty(t, history.Reports)
}

func TestFailedInstructionWritesNothing(t *testing.T) {
	p := newProcessor()
	h := newMemHost(t0)
	setupStaking(h, true)
	setReputation(t, p, h, reporterStats, 50)
	_, err := p.Process(h, mustInstruction(t, reportPayload(80), reportAccounts()...))
	require.NoError(t, err)

	before := h.snapshot()
	writes := h.writes
	// every check passes except the transfer
	_, err = p.Process(h, mustInstruction(
		t,
		&instruction.StakeOnReport{Amount: 5_000},
		instruction.Signer(staker),
		instruction.Account(reportKey),
		instruction.Account(addrStatsKey),
		instruction.Account(reporterStats),
		instruction.Account(configKey),
	))
	require.ErrorIs(t, err, processor.ErrInsufficientTokenBalance)
	assert.Equal(t, writes, h.writes)
	assert.Equal(t, before, h.snapshot())

	// corrupt stored data is reported, not panicked on
	h.records[addrStatsKey] = []byte{1, 2, 3}
	h.now = t0 + processor.TimeLockDuration
	_, err = p.Process(h, mustInstruction(
		t,
		&instruction.UpdateReport{RiskScore: 1},
		instruction.Signer(reporter),
		instruction.Account(reportKey),
		instruction.Account(addrStatsKey),
	))
	require.ErrorIs(t, err, processor.ErrInvalidRecordData)

	h.failRead = true
	_, err = p.Process(h, mustInstruction(
		t,
		&instruction.UpdateHistory{},
		instruction.Account(reportKey),
		instruction.Account(historyKey),
	))
	require.ErrorIs(t, err, processor.ErrHostFailure)
	assert.Equal(t, writes, h.writes)
}
