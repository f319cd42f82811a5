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

// Package staking holds the reward-per-token accumulator used by the stake
// pool. Functions mutate the records they are given and never fail; callers
// validate preconditions first.
package staking

import (
	"math"
	"math/big"

	"github.com/blinklabs-io/solcat/internal/satmath"
	"github.com/blinklabs-io/solcat/records"
)

const (
	// RewardPrecision is the divisor applied to amount*RewardPerToken when
	// computing pending rewards
	RewardPrecision = 1_000_000_000

	MinStakeDuration = 7 * 86400
	MaxStakeDuration = 365 * 86400

	// MinVerificationStake is the aggregate report stake a batch verifier
	// must hold
	MinVerificationStake = 100_000_000
)

var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// Pending returns the rewards accrued by a position since its last
// settlement
func Pending(u *records.UserStake, p *records.StakePool) uint64 {
	if u.Amount == 0 {
		return 0
	}
	delta := satmath.SubU64(p.RewardPerToken, u.RewardPerTokenPaid)
	return satmath.MulDivU64(u.Amount, delta, RewardPrecision)
}

// Settle moves pending rewards into RewardsEarned and snapshots the pool's
// reward per token
func Settle(u *records.UserStake, p *records.StakePool) {
	u.RewardsEarned = satmath.AddU64(u.RewardsEarned, Pending(u, p))
	u.RewardPerTokenPaid = p.RewardPerToken
}

// Accrue adds rate*elapsed/TotalStaked to the pool accumulator. The product is
// taken at full width and only the sum saturates. It returns false, leaving
// the pool untouched, when nothing is staked or no time has passed.
func Accrue(p *records.StakePool, rate uint64, now int64) bool {
	elapsed := now - p.LastUpdateTime
	if elapsed <= 0 || p.TotalStaked == 0 {
		return false
	}
	inc := new(big.Int).SetUint64(rate)
	inc.Mul(inc, big.NewInt(elapsed))
	inc.Quo(inc, new(big.Int).SetUint64(p.TotalStaked))
	inc.Add(inc, new(big.Int).SetUint64(p.RewardPerToken))
	if inc.Cmp(maxUint64) > 0 {
		p.RewardPerToken = math.MaxUint64
	} else {
		p.RewardPerToken = inc.Uint64()
	}
	p.LastUpdateTime = now
	return true
}

// Stake settles the position and adds amount to it and to the pool
func Stake(u *records.UserStake, p *records.StakePool, amount uint64, lockEnd int64, now int64) {
	Settle(u, p)
	u.Amount = satmath.AddU64(u.Amount, amount)
	u.LockEndTime = lockEnd
	p.TotalStaked = satmath.AddU64(p.TotalStaked, amount)
	p.LastUpdateTime = now
}

// Unstake settles the position, removes it from the pool and returns the
// amount released
func Unstake(u *records.UserStake, p *records.StakePool, now int64) uint64 {
	Settle(u, p)
	amount := u.Amount
	p.TotalStaked = satmath.SubU64(p.TotalStaked, amount)
	p.LastUpdateTime = now
	u.Amount = 0
	u.LockEndTime = 0
	return amount
}

// Claim returns the payable rewards of a position and resets them. A zero
// result leaves the position untouched.
func Claim(u *records.UserStake, p *records.StakePool) uint64 {
	total := satmath.AddU64(u.RewardsEarned, Pending(u, p))
	if total == 0 {
		return 0
	}
	u.RewardsEarned = 0
	u.RewardPerTokenPaid = p.RewardPerToken
	return total
}
