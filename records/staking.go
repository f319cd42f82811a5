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

// GlobalConfig holds network-wide parameters. It is written once at genesis
// and only read by instruction handlers.
type GlobalConfig struct {
	MinStakeAmount    uint64  `yaml:"minStakeAmount"`
	RewardRate        uint64  `yaml:"rewardRate"`
	TokenMint         Address `yaml:"tokenMint"`
	Treasury          Address `yaml:"treasury"`
	TotalSupply       uint64  `yaml:"totalSupply"`
	CirculatingSupply uint64  `yaml:"circulatingSupply"`
	StakingEnabled    bool    `yaml:"stakingEnabled"`
	MinLockDuration   int64   `yaml:"minLockDuration"`
}

func (c *GlobalConfig) MarshalBinary() ([]byte, error) {
	e := newEncoder()
	e.WriteU64LE(c.MinStakeAmount)
	e.WriteU64LE(c.RewardRate)
	e.writeAddress(c.TokenMint)
	e.writeAddress(c.Treasury)
	e.WriteU64LE(c.TotalSupply)
	e.WriteU64LE(c.CirculatingSupply)
	e.WriteBool(c.StakingEnabled)
	e.writeI64(c.MinLockDuration)
	return e.finish()
}

func (c *GlobalConfig) UnmarshalBinary(data []byte) error {
	d := newDecoder(data)
	c.MinStakeAmount = d.ReadU64LE()
	c.RewardRate = d.ReadU64LE()
	c.TokenMint = d.readAddress()
	c.Treasury = d.readAddress()
	c.TotalSupply = d.ReadU64LE()
	c.CirculatingSupply = d.ReadU64LE()
	c.StakingEnabled = d.readBool()
	c.MinLockDuration = d.readI64()
	return d.finish("global config")
}

// StakePool is the shared reward-per-token accumulator. RewardPerToken is
// scaled by 1e9.
type StakePool struct {
	TotalStaked    uint64 `yaml:"totalStaked"`
	RewardPerToken uint64 `yaml:"rewardPerToken"`
	LastUpdateTime int64  `yaml:"lastUpdateTime"`
	RewardRate     uint64 `yaml:"rewardRate"`
}

func (p *StakePool) MarshalBinary() ([]byte, error) {
	e := newEncoder()
	e.WriteU64LE(p.TotalStaked)
	e.WriteU64LE(p.RewardPerToken)
	e.writeI64(p.LastUpdateTime)
	e.WriteU64LE(p.RewardRate)
	return e.finish()
}

func (p *StakePool) UnmarshalBinary(data []byte) error {
	d := newDecoder(data)
	p.TotalStaked = d.ReadU64LE()
	p.RewardPerToken = d.ReadU64LE()
	p.LastUpdateTime = d.readI64()
	p.RewardRate = d.ReadU64LE()
	return d.finish("stake pool")
}

// UserStake is one staker's position in the pool
type UserStake struct {
	Owner              Address `yaml:"owner"`
	Amount             uint64  `yaml:"amount"`
	RewardsEarned      uint64  `yaml:"rewardsEarned"`
	RewardPerTokenPaid uint64  `yaml:"rewardPerTokenPaid"`
	LockEndTime        int64   `yaml:"lockEndTime"`
}

// NewUserStake returns an empty position owned by owner
func NewUserStake(owner Address) *UserStake {
	return &UserStake{Owner: owner}
}

func (u *UserStake) MarshalBinary() ([]byte, error) {
	e := newEncoder()
	e.writeAddress(u.Owner)
	e.WriteU64LE(u.Amount)
	e.WriteU64LE(u.RewardsEarned)
	e.WriteU64LE(u.RewardPerTokenPaid)
	e.writeI64(u.LockEndTime)
	return e.finish()
}

func (u *UserStake) UnmarshalBinary(data []byte) error {
	d := newDecoder(data)
	u.Owner = d.readAddress()
	u.Amount = d.ReadU64LE()
	u.RewardsEarned = d.ReadU64LE()
	u.RewardPerTokenPaid = d.ReadU64LE()
	u.LockEndTime = d.readI64()
	return d.finish("user stake")
}
