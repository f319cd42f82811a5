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

import (
	"fmt"

	"github.com/mr-tron/base58"
)

// AddressSize is the length in bytes of an address / record key
const AddressSize = 32

// Address identifies both participants and the records the engine reads and
// writes. Its text form is base58.
type Address [AddressSize]byte

// ParseAddress decodes a base58 address
func ParseAddress(s string) (Address, error) {
	var ret Address
	raw, err := base58.Decode(s)
	if err != nil {
		return ret, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) != AddressSize {
		return ret, fmt.Errorf(
			"invalid address %q: decoded length %d, expected %d",
			s,
			len(raw),
			AddressSize,
		)
	}
	copy(ret[:], raw)
	return ret, nil
}

// MustParseAddress is like ParseAddress but panics on error. It is meant for
// constants and tests.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// NewAddress returns an address built from the given bytes. Short input is
// zero-padded and long input truncated.
func NewAddress(b []byte) Address {
	var ret Address
	copy(ret[:], b)
	return ret
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText implements encoding.TextMarshaler
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(text []byte) error {
	tmp, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}
