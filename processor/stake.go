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

package processor

import (
	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/internal/satmath"
	"github.com/blinklabs-io/solcat/records"
	"github.com/blinklabs-io/solcat/staking"
)

func (p *Processor) stakeTokens(
	inv *invocation,
	payload instruction.Payload,
) error {
	args := payload.(*instruction.StakeTokens)
	staker, err := inv.signer(0)
	if err != nil {
		return err
	}
	poolAcct := inv.account(1)
	userAcct := inv.account(2)
	mintAcct := inv.account(3)
	configAcct := inv.account(4)
	if err := distinct(poolAcct, userAcct, configAcct); err != nil {
		return err
	}
	config, err := load[records.GlobalConfig](inv, configAcct.Key)
	if err != nil {
		return err
	}
	if !config.StakingEnabled {
		return ErrStakingDisabled
	}
	if config.TokenMint != mintAcct.Key {
		return ErrInvalidTokenMint
	}
	if args.Amount == 0 ||
		args.Duration < staking.MinStakeDuration ||
		args.Duration > staking.MaxStakeDuration ||
		args.Duration < config.MinLockDuration {
		return ErrInvalidStakeAmount
	}
	user, err := loadOrDefault(inv, userAcct.Key, func() *records.UserStake {
		return records.NewUserStake(staker.Key)
	})
	if err != nil {
		return err
	}
	if user.Owner != staker.Key {
		return ErrNotAuthorized
	}
	pool, err := load[records.StakePool](inv, poolAcct.Key)
	if err != nil {
		return err
	}

	staking.Stake(user, pool, args.Amount, satmath.AddI64(inv.now, args.Duration), inv.now)

	inv.stage(userAcct.Key, user)
	inv.stage(poolAcct.Key, pool)
	inv.result.Amount = args.Amount
	return nil
}

func (p *Processor) unstakeTokens(
	inv *invocation,
	_ instruction.Payload,
) error {
	staker, err := inv.signer(0)
	if err != nil {
		return err
	}
	poolAcct := inv.account(1)
	userAcct := inv.account(2)
	if err := distinct(poolAcct, userAcct); err != nil {
		return err
	}
	user, err := load[records.UserStake](inv, userAcct.Key)
	if err != nil {
		return err
	}
	if user.Owner != staker.Key {
		return ErrNotAuthorized
	}
	if inv.now < user.LockEndTime {
		return ErrStakeLocked
	}
	pool, err := load[records.StakePool](inv, poolAcct.Key)
	if err != nil {
		return err
	}

	inv.result.Amount = staking.Unstake(user, pool, inv.now)

	inv.stage(userAcct.Key, user)
	inv.stage(poolAcct.Key, pool)
	return nil
}

func (p *Processor) claimRewards(
	inv *invocation,
	_ instruction.Payload,
) error {
	claimer, err := inv.signer(0)
	if err != nil {
		return err
	}
	poolAcct := inv.account(1)
	userAcct := inv.account(2)
	treasuryAcct := inv.account(3)
	configAcct := inv.account(4)
	if err := distinct(poolAcct, userAcct, configAcct); err != nil {
		return err
	}
	config, err := load[records.GlobalConfig](inv, configAcct.Key)
	if err != nil {
		return err
	}
	if config.Treasury != treasuryAcct.Key {
		return ErrTreasuryMismatch
	}
	user, err := load[records.UserStake](inv, userAcct.Key)
	if err != nil {
		return err
	}
	if user.Owner != claimer.Key {
		return ErrNotAuthorized
	}
	pool, err := load[records.StakePool](inv, poolAcct.Key)
	if err != nil {
		return err
	}

	total := staking.Claim(user, pool)
	if total == 0 {
		return ErrInvalidRewardCalculation
	}

	inv.stage(userAcct.Key, user)
	inv.result.Amount = total
	return nil
}

func (p *Processor) distributeRewards(
	inv *invocation,
	_ instruction.Payload,
) error {
	if err := p.requireAuthority(inv.account(0)); err != nil {
		return err
	}
	poolAcct := inv.account(1)
	configAcct := inv.account(2)
	if err := distinct(poolAcct, configAcct); err != nil {
		return err
	}
	pool, err := load[records.StakePool](inv, poolAcct.Key)
	if err != nil {
		return err
	}
	config, err := load[records.GlobalConfig](inv, configAcct.Key)
	if err != nil {
		return err
	}
	if staking.Accrue(pool, config.RewardRate, inv.now) {
		inv.stage(poolAcct.Key, pool)
	}
	return nil
}
