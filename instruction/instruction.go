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

// Package instruction defines the instruction envelope and the opcode
// payload formats
package instruction

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/solcat/records"
)

var (
	ErrEmptyInstruction = errors.New("empty instruction data")
	ErrUnknownOpcode    = errors.New("unknown opcode")
	ErrMalformedPayload = errors.New("malformed instruction payload")
	ErrFieldTooLong     = errors.New("field too long")
)

// AccountMeta is one positional record handle passed to an instruction.
// IsSigner is set by the host after verifying the caller's signature.
type AccountMeta struct {
	Key      records.Address
	IsSigner bool
}

func Signer(key records.Address) AccountMeta {
	return AccountMeta{Key: key, IsSigner: true}
}

func Account(key records.Address) AccountMeta {
	return AccountMeta{Key: key}
}

// Instruction is a single invocation: opcode byte followed by the payload,
// plus its ordered accounts
type Instruction struct {
	Accounts []AccountMeta
	Data     []byte
}

// New builds an instruction from a payload
func New(p Payload, accounts ...AccountMeta) (*Instruction, error) {
	data, err := Encode(p)
	if err != nil {
		return nil, err
	}
	return &Instruction{
		Accounts: accounts,
		Data:     data,
	}, nil
}

// Opcode returns the opcode byte without decoding the payload
func (i *Instruction) Opcode() (Opcode, error) {
	if len(i.Data) == 0 {
		return 0, ErrEmptyInstruction
	}
	op := Opcode(i.Data[0])
	if !op.Valid() {
		return op, fmt.Errorf("%w: %d", ErrUnknownOpcode, i.Data[0])
	}
	return op, nil
}

// Payload decodes the instruction data
func (i *Instruction) Payload() (Payload, error) {
	return Decode(i.Data)
}
