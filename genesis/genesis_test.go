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

package genesis_test

import (
	"testing"

	"github.com/blinklabs-io/solcat/database"
	"github.com/blinklabs-io/solcat/genesis"
	"github.com/blinklabs-io/solcat/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) records.Address {
	var a records.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func testConfig() *genesis.Config {
	return &genesis.Config{
		ConfigAddress:     key(1),
		StakePoolAddress:  key(2),
		TokenMint:         key(3),
		Treasury:          key(4),
		MinStakeAmount:    1_000_000,
		RewardRate:        10,
		PoolRewardRate:    5,
		TotalSupply:       1_000_000_000,
		CirculatingSupply: 500_000_000,
		MinLockDuration:   7 * 86400,
		StakingEnabled:    true,
		Balances: map[string]uint64{
			key(5).String(): 42,
		},
	}
}

func TestApply(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close()
	cfg := testConfig()

	err = db.Transaction(true).Do(func(txn *database.Txn) error {
		return genesis.Apply(txn, cfg, 1_700_000_000)
	})
	require.NoError(t, err)

	txn := db.Transaction(false)
	defer txn.Release()
	data, err := txn.Record(cfg.ConfigAddress)
	require.NoError(t, err)
	gc, err := records.Decode[records.GlobalConfig](data)
	require.NoError(t, err)
	assert.Equal(t, cfg.GlobalConfig(), gc)

	data, err = txn.Record(cfg.StakePoolAddress)
	require.NoError(t, err)
	pool, err := records.Decode[records.StakePool](data)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000), pool.LastUpdateTime)
	assert.Equal(t, uint64(5), pool.RewardRate)
	assert.Zero(t, pool.TotalStaked)

	balance, err := txn.Balance(key(5))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), balance)
}

func TestApplyRefusesOverwrite(t *testing.T) {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	defer db.Close()
	cfg := testConfig()
	apply := func() error {
		return db.Transaction(true).Do(func(txn *database.Txn) error {
			return genesis.Apply(txn, cfg, 0)
		})
	}
	require.NoError(t, apply())
	require.ErrorIs(t, apply(), genesis.ErrAlreadyInitialized)

	// the failed attempt credits nothing
	txn := db.Transaction(false)
	defer txn.Release()
	balance, err := txn.Balance(key(5))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), balance)
}

func TestValidate(t *testing.T) {
	testDefs := []struct {
		name   string
		modify func(*genesis.Config)
	}{
		{name: "no config address", modify: func(c *genesis.Config) { c.ConfigAddress = records.Address{} }},
		{name: "no pool address", modify: func(c *genesis.Config) { c.StakePoolAddress = records.Address{} }},
		{name: "shared address", modify: func(c *genesis.Config) { c.StakePoolAddress = c.ConfigAddress }},
		{name: "supply", modify: func(c *genesis.Config) { c.CirculatingSupply = c.TotalSupply + 1 }},
		{name: "negative lock", modify: func(c *genesis.Config) { c.MinLockDuration = -1 }},
		{name: "bad balance address", modify: func(c *genesis.Config) { c.Balances["0OIl"] = 1 }},
	}
	require.NoError(t, testConfig().Validate())
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			cfg := testConfig()
			testDef.modify(cfg)
			require.ErrorIs(t, cfg.Validate(), genesis.ErrInvalidGenesis)
		})
	}
}
