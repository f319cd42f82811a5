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

// Package genesis writes the deployment records: the global staking config,
// the stake pool and any initial native balances.
package genesis

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/blinklabs-io/solcat/database"
	"github.com/blinklabs-io/solcat/records"
	"github.com/blinklabs-io/solcat/staking"
)

var (
	ErrAlreadyInitialized = errors.New("genesis records already exist")
	ErrInvalidGenesis     = errors.New("invalid genesis config")
)

// Config describes the deployment. Balances maps base58 addresses to their
// initial native balance.
type Config struct {
	ConfigAddress     records.Address   `yaml:"configAddress"     envconfig:"CONFIG_ADDRESS"`
	StakePoolAddress  records.Address   `yaml:"stakePoolAddress"  envconfig:"STAKE_POOL_ADDRESS"`
	TokenMint         records.Address   `yaml:"tokenMint"         envconfig:"TOKEN_MINT"`
	Treasury          records.Address   `yaml:"treasury"          envconfig:"TREASURY"`
	MinStakeAmount    uint64            `yaml:"minStakeAmount"    envconfig:"MIN_STAKE_AMOUNT"`
	RewardRate        uint64            `yaml:"rewardRate"        envconfig:"REWARD_RATE"`
	PoolRewardRate    uint64            `yaml:"poolRewardRate"    envconfig:"POOL_REWARD_RATE"`
	TotalSupply       uint64            `yaml:"totalSupply"       envconfig:"TOTAL_SUPPLY"`
	CirculatingSupply uint64            `yaml:"circulatingSupply" envconfig:"CIRCULATING_SUPPLY"`
	MinLockDuration   int64             `yaml:"minLockDuration"   envconfig:"MIN_LOCK_DURATION"`
	StakingEnabled    bool              `yaml:"stakingEnabled"    envconfig:"STAKING_ENABLED"`
	Balances          map[string]uint64 `yaml:"balances"          ignored:"true"`
}

// Validate checks the config without touching storage
func (c *Config) Validate() error {
	if c.ConfigAddress.IsZero() {
		return fmt.Errorf("%w: config address not set", ErrInvalidGenesis)
	}
	if c.StakePoolAddress.IsZero() {
		return fmt.Errorf("%w: stake pool address not set", ErrInvalidGenesis)
	}
	if c.ConfigAddress == c.StakePoolAddress {
		return fmt.Errorf(
			"%w: config and stake pool share address %s",
			ErrInvalidGenesis,
			c.ConfigAddress,
		)
	}
	if c.CirculatingSupply > c.TotalSupply {
		return fmt.Errorf(
			"%w: circulating supply %d exceeds total supply %d",
			ErrInvalidGenesis,
			c.CirculatingSupply,
			c.TotalSupply,
		)
	}
	if c.MinLockDuration < 0 || c.MinLockDuration > staking.MaxStakeDuration {
		return fmt.Errorf(
			"%w: min lock duration %d out of range",
			ErrInvalidGenesis,
			c.MinLockDuration,
		)
	}
	for addr := range c.Balances {
		if _, err := records.ParseAddress(addr); err != nil {
			return fmt.Errorf("%w: balance: %w", ErrInvalidGenesis, err)
		}
	}
	return nil
}

// GlobalConfig returns the config record described by c
func (c *Config) GlobalConfig() *records.GlobalConfig {
	return &records.GlobalConfig{
		MinStakeAmount:    c.MinStakeAmount,
		RewardRate:        c.RewardRate,
		TokenMint:         c.TokenMint,
		Treasury:          c.Treasury,
		TotalSupply:       c.TotalSupply,
		CirculatingSupply: c.CirculatingSupply,
		StakingEnabled:    c.StakingEnabled,
		MinLockDuration:   c.MinLockDuration,
	}
}

// StakePool returns the empty pool record, with its accrual clock started at
// now
func (c *Config) StakePool(now int64) *records.StakePool {
	return &records.StakePool{
		LastUpdateTime: now,
		RewardRate:     c.PoolRewardRate,
	}
}

// Apply writes the genesis records in txn. The config and pool records are
// written once: Apply fails with ErrAlreadyInitialized if either exists.
func Apply(txn *database.Txn, cfg *Config, now int64) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, addr := range []records.Address{cfg.ConfigAddress, cfg.StakePoolAddress} {
		data, err := txn.Record(addr)
		if err != nil {
			return fmt.Errorf("read %s: %w", addr, err)
		}
		if len(data) > 0 {
			return fmt.Errorf("%w: %s", ErrAlreadyInitialized, addr)
		}
	}
	if err := writeRecord(txn, cfg.ConfigAddress, cfg.GlobalConfig()); err != nil {
		return err
	}
	if err := writeRecord(txn, cfg.StakePoolAddress, cfg.StakePool(now)); err != nil {
		return err
	}
	// Sorted so repeated runs credit in the same order
	for _, addrStr := range slices.Sorted(maps.Keys(cfg.Balances)) {
		addr, err := records.ParseAddress(addrStr)
		if err != nil {
			return err
		}
		if err := txn.Credit(addr, cfg.Balances[addrStr]); err != nil {
			return fmt.Errorf("credit %s: %w", addr, err)
		}
	}
	return nil
}

func writeRecord(txn *database.Txn, key records.Address, rec records.Record) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := txn.SetRecord(key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
