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

package txfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/internal/txfile"
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

func TestParseReport(t *testing.T) {
	content := `
- op: report_address
  signers: [` + key(1).String() + `]
  accounts:
    reporter: ` + key(1).String() + `
    reported_address: ` + key(2).String() + `
    report: ` + key(3).String() + `
    address_stats: ` + key(4).String() + `
    reporter_stats: ` + key(5).String() + `
  args:
    riskScore: 80
    description: drainer
    riskTypes: [scam, malware]
    confidenceScore: 90
    evidenceCount: 2
    suspiciousPatterns: [mixer]
- op: update_history
  accounts:
    report: ` + key(3).String() + `
    history: ` + key(6).String() + `
`
	txs, err := txfile.Parse([]byte(content))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	ins, err := txs[0].Instruction()
	require.NoError(t, err)
	expected, err := instruction.New(
		&instruction.ReportAddress{
			RiskScore:          80,
			Description:        "drainer",
			RiskTypes:          []records.RiskType{records.RiskTypeScam, records.RiskTypeMalware},
			ConfidenceScore:    90,
			EvidenceCount:      2,
			SuspiciousPatterns: []string{"mixer"},
		},
		instruction.Signer(key(1)),
		instruction.Account(key(2)),
		instruction.Account(key(3)),
		instruction.Account(key(4)),
		instruction.Account(key(5)),
	)
	require.NoError(t, err)
	assert.Equal(t, expected, ins)

	ins, err = txs[1].Instruction()
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(instruction.OpUpdateHistory)}, ins.Data)
	assert.False(t, ins.Accounts[0].IsSigner)
	assert.Equal(t, key(6), ins.Accounts[1].Key)
}

func TestInstructionErrors(t *testing.T) {
	testDefs := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown op",
			content: "- op: mint_everything\n",
		},
		{
			name: "missing account",
			content: `
- op: update_history
  accounts:
    report: ` + key(3).String() + `
`,
		},
		{
			name: "extra account",
			content: `
- op: update_history
  accounts:
    report: ` + key(3).String() + `
    history: ` + key(4).String() + `
    treasury: ` + key(5).String() + `
`,
		},
		{
			name: "misspelled arg",
			content: `
- op: stake_on_report
  accounts: {}
  args:
    amonut: 5
`,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			txs, err := txfile.Parse([]byte(testDef.content))
			require.NoError(t, err)
			require.Len(t, txs, 1)
			_, err = txs[0].Instruction()
			require.ErrorIs(t, err, txfile.ErrInvalidTransaction)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := txfile.Parse([]byte("- op: update_history\n  signer: x\n"))
	require.Error(t, err)
	_, err = txfile.Parse([]byte("- op: update_history\n  accounts:\n    report: not-an-address\n"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txs.yaml")
	content := "- op: distribute_rewards\n  signers: [" + key(1).String() + "]\n  accounts:\n    authority: " +
		key(1).String() + "\n    stake_pool: " + key(2).String() + "\n    config: " + key(3).String() + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	txs, err := txfile.Load(path)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	ins, err := txs[0].Instruction()
	require.NoError(t, err)
	require.Len(t, ins.Accounts, 3)
	assert.True(t, ins.Accounts[0].IsSigner)

	_, err = txfile.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
