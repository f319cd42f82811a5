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
	"bytes"
	"encoding"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/io"
)

var (
	// ErrMalformed is returned when stored record bytes cannot be decoded
	ErrMalformed = errors.New("malformed record data")
	// ErrNotInitialized is returned by Decode when the record is empty
	ErrNotInitialized = errors.New("record not initialized")
)

// Record is implemented by every persisted entity
type Record interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// Decode decodes a record that must already exist
func Decode[T any, PT interface {
	*T
	encoding.BinaryUnmarshaler
}](data []byte) (*T, error) {
	if len(data) == 0 {
		return nil, ErrNotInitialized
	}
	ret := PT(new(T))
	if err := ret.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return (*T)(ret), nil
}

// DecodeOrDefault decodes a record, or returns the value built by newFunc
// when the backing record is absent. Malformed data is still an error.
func DecodeOrDefault[T any, PT interface {
	*T
	encoding.BinaryUnmarshaler
}](data []byte, newFunc func() *T) (*T, error) {
	if len(data) == 0 {
		return newFunc(), nil
	}
	return Decode[T, PT](data)
}

// encoder wraps the neo-go buffered writer. Strings and vectors carry a u32
// length prefix, matching the deployed record layout.
type encoder struct {
	*io.BufBinWriter
}

func newEncoder() *encoder {
	return &encoder{BufBinWriter: io.NewBufBinWriter()}
}

func (e *encoder) writeI64(v int64) {
	e.WriteU64LE(uint64(v)) // #nosec G115
}

func (e *encoder) writeAddress(a Address) {
	e.WriteBytes(a[:])
}

func (e *encoder) writeString(s string) {
	e.WriteU32LE(uint32(len(s))) // #nosec G115
	e.WriteBytes([]byte(s))
}

func (e *encoder) writeByteVec(b []byte) {
	e.WriteU32LE(uint32(len(b))) // #nosec G115
	e.WriteBytes(b)
}

func (e *encoder) writeLen(n int) {
	e.WriteU32LE(uint32(n)) // #nosec G115
}

func (e *encoder) finish() ([]byte, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Bytes(), nil
}

// decoder wraps the neo-go reader and keeps a handle on the underlying
// buffer so length prefixes can be checked against the remaining input
// before anything is allocated.
type decoder struct {
	*io.BinReader
	buf *bytes.Reader
}

func newDecoder(data []byte) *decoder {
	buf := bytes.NewReader(data)
	return &decoder{
		BinReader: io.NewBinReaderFromIO(buf),
		buf:       buf,
	}
}

func (d *decoder) fail(format string, args ...any) {
	if d.Err == nil {
		d.Err = fmt.Errorf(format, args...)
	}
}

func (d *decoder) readI64() int64 {
	return int64(d.ReadU64LE()) // #nosec G115
}

func (d *decoder) readBool() bool {
	b := d.ReadB()
	if b > 1 {
		d.fail("invalid bool value %d", b)
		return false
	}
	return b == 1
}

func (d *decoder) readAddress() Address {
	var ret Address
	d.ReadBytes(ret[:])
	return ret
}

// readLen reads a u32 length prefix for elements of at least elemSize bytes
func (d *decoder) readLen(elemSize int) int {
	n := d.ReadU32LE()
	if d.Err != nil {
		return 0
	}
	if int64(n)*int64(elemSize) > int64(d.buf.Len()) {
		d.fail("length %d exceeds remaining %d bytes", n, d.buf.Len())
		return 0
	}
	return int(n)
}

func (d *decoder) readString() string {
	n := d.readLen(1)
	if d.Err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	d.ReadBytes(buf)
	return string(buf)
}

func (d *decoder) readByteVec() []byte {
	n := d.readLen(1)
	if d.Err != nil {
		return nil
	}
	buf := make([]byte, n)
	d.ReadBytes(buf)
	return buf
}

// finish reports any latched error, and rejects trailing bytes
func (d *decoder) finish(kind string) error {
	if d.Err == nil && d.buf.Len() > 0 {
		d.Err = fmt.Errorf("%d trailing bytes", d.buf.Len())
	}
	if d.Err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformed, kind, d.Err)
	}
	return nil
}
