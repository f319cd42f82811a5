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

// MaxBatchSize is the maximum number of addresses in one BatchReport
const MaxBatchSize = 10

// BatchReport is a multi-address submission awaiting review. Addresses and
// RiskScores are parallel.
type BatchReport struct {
	Reporter           Address            `yaml:"reporter"`
	Addresses          []Address          `yaml:"addresses"`
	RiskScores         []uint8            `yaml:"riskScores,flow"`
	Timestamp          int64              `yaml:"timestamp"`
	VerificationStatus VerificationStatus `yaml:"verificationStatus"`
}

func (b *BatchReport) MarshalBinary() ([]byte, error) {
	e := newEncoder()
	e.writeAddress(b.Reporter)
	e.writeLen(len(b.Addresses))
	for _, a := range b.Addresses {
		e.writeAddress(a)
	}
	e.writeByteVec(b.RiskScores)
	e.writeI64(b.Timestamp)
	e.WriteB(byte(b.VerificationStatus))
	return e.finish()
}

func (b *BatchReport) UnmarshalBinary(data []byte) error {
	d := newDecoder(data)
	b.Reporter = d.readAddress()
	n := d.readLen(AddressSize)
	b.Addresses = make([]Address, n)
	for i := range b.Addresses {
		b.Addresses[i] = d.readAddress()
	}
	b.RiskScores = d.readByteVec()
	b.Timestamp = d.readI64()
	b.VerificationStatus = VerificationStatusFromByte(d.ReadB())
	return d.finish("batch report")
}
