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

// Package txfile reads transaction files: YAML lists of instructions with
// named accounts and base58 keys.
package txfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/records"
	"gopkg.in/yaml.v3"
)

var ErrInvalidTransaction = errors.New("invalid transaction")

// Transaction is one entry of a transaction file. Accounts are keyed by the
// positional account names of the opcode, and any account listed in Signers
// is passed as a signer.
type Transaction struct {
	Op       string                     `yaml:"op"`
	Signers  []records.Address          `yaml:"signers,omitempty"`
	Accounts map[string]records.Address `yaml:"accounts"`
	Args     yaml.Node                  `yaml:"args,omitempty"`
}

// Load reads and parses a transaction file
func Load(path string) ([]Transaction, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading transaction file: %w", err)
	}
	return Parse(buf)
}

func Parse(data []byte) ([]Transaction, error) {
	var ret []Transaction
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ret); err != nil {
		return nil, fmt.Errorf("error parsing transaction file: %w", err)
	}
	return ret, nil
}

// Instruction builds the instruction described by the transaction
func (t *Transaction) Instruction() (*instruction.Instruction, error) {
	op, err := instruction.ParseOpcode(t.Op)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	payload, err := instruction.NewPayload(op)
	if err != nil {
		return nil, err
	}
	if t.Args.Kind != 0 {
		if err := decodeArgs(&t.Args, payload); err != nil {
			return nil, fmt.Errorf("%w: %s args: %w", ErrInvalidTransaction, op, err)
		}
	}
	names := op.AccountNames()
	for name := range t.Accounts {
		if !slices.Contains(names, name) {
			return nil, fmt.Errorf(
				"%w: %s takes no account %q",
				ErrInvalidTransaction,
				op,
				name,
			)
		}
	}
	accounts := make([]instruction.AccountMeta, 0, len(names))
	for _, name := range names {
		key, ok := t.Accounts[name]
		if !ok {
			return nil, fmt.Errorf(
				"%w: %s requires account %q",
				ErrInvalidTransaction,
				op,
				name,
			)
		}
		accounts = append(accounts, instruction.AccountMeta{
			Key:      key,
			IsSigner: slices.Contains(t.Signers, key),
		})
	}
	return instruction.New(payload, accounts...)
}

// decodeArgs decodes the args node strictly, so misspelled fields are
// reported
func decodeArgs(node *yaml.Node, dest any) error {
	buf, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(buf))
	dec.KnownFields(true)
	return dec.Decode(dest)
}
