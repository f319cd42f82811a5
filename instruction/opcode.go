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

import "fmt"

// Opcode is the leading byte of instruction data
type Opcode uint8

const (
	OpReportAddress Opcode = iota
	OpUpdateReport
	OpStakeOnReport
	OpUpdateReporterStats
	OpStakeTokens
	OpUnstakeTokens
	OpClaimRewards
	OpDistributeRewards
	OpSubmitBatchReport
	OpVerifyBatchReport
	OpBlacklistAddress
	OpUpdateHistory
)

type opcodeInfo struct {
	name     string
	accounts []string
}

// Account names are positional. The first account of every opcode except
// update_history must sign.
var opcodeTable = map[Opcode]opcodeInfo{
	OpReportAddress: {
		name: "report_address",
		accounts: []string{
			"reporter",
			"reported_address",
			"report",
			"address_stats",
			"reporter_stats",
		},
	},
	OpUpdateReport: {
		name:     "update_report",
		accounts: []string{"reporter", "report", "address_stats"},
	},
	OpStakeOnReport: {
		name: "stake_on_report",
		accounts: []string{
			"staker",
			"report",
			"address_stats",
			"reporter_stats",
			"config",
		},
	},
	OpUpdateReporterStats: {
		name:     "update_reporter_stats",
		accounts: []string{"authority", "reporter_stats"},
	},
	OpStakeTokens: {
		name: "stake_tokens",
		accounts: []string{
			"staker",
			"stake_pool",
			"user_stake",
			"token_mint",
			"config",
		},
	},
	OpUnstakeTokens: {
		name:     "unstake_tokens",
		accounts: []string{"staker", "stake_pool", "user_stake"},
	},
	OpClaimRewards: {
		name: "claim_rewards",
		accounts: []string{
			"claimer",
			"stake_pool",
			"user_stake",
			"treasury",
			"config",
		},
	},
	OpDistributeRewards: {
		name:     "distribute_rewards",
		accounts: []string{"authority", "stake_pool", "config"},
	},
	OpSubmitBatchReport: {
		name:     "submit_batch_report",
		accounts: []string{"reporter", "batch_report", "reporter_stats"},
	},
	OpVerifyBatchReport: {
		name:     "verify_batch_report",
		accounts: []string{"verifier", "batch_report", "verifier_stats"},
	},
	OpBlacklistAddress: {
		name:     "blacklist_address",
		accounts: []string{"authority", "history"},
	},
	OpUpdateHistory: {
		name:     "update_history",
		accounts: []string{"report", "history"},
	},
}

// ParseOpcode maps an opcode name as returned by String to an Opcode
func ParseOpcode(name string) (Opcode, error) {
	for op, info := range opcodeTable {
		if info.name == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOpcode, name)
}

func (o Opcode) Valid() bool {
	_, ok := opcodeTable[o]
	return ok
}

func (o Opcode) String() string {
	if info, ok := opcodeTable[o]; ok {
		return info.name
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

// AccountNames returns the positional account names for the opcode
func (o Opcode) AccountNames() []string {
	return opcodeTable[o].accounts
}

// NumAccounts returns the number of accounts the opcode requires
func (o Opcode) NumAccounts() int {
	return len(opcodeTable[o].accounts)
}
