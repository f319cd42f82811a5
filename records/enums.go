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

import "fmt"

// RiskType is the category of risk claimed by a report
type RiskType uint8

const (
	RiskTypeScam RiskType = iota
	RiskTypePhishing
	RiskTypeMalware
	RiskTypeRansomware
	RiskTypeMoneyLaundering
	RiskTypeMarketManipulation
	RiskTypeUnknown
)

var riskTypeNames = map[RiskType]string{
	RiskTypeScam:               "scam",
	RiskTypePhishing:           "phishing",
	RiskTypeMalware:            "malware",
	RiskTypeRansomware:         "ransomware",
	RiskTypeMoneyLaundering:    "money_laundering",
	RiskTypeMarketManipulation: "market_manipulation",
	RiskTypeUnknown:            "unknown",
}

var riskTypeSeverity = map[RiskType]uint8{
	RiskTypeRansomware:         100,
	RiskTypeMalware:            90,
	RiskTypeMoneyLaundering:    85,
	RiskTypeScam:               80,
	RiskTypePhishing:           75,
	RiskTypeMarketManipulation: 70,
	RiskTypeUnknown:            50,
}

// RiskTypeFromByte maps an encoded index to a RiskType. Indices outside the
// known set map to RiskTypeUnknown.
func RiskTypeFromByte(b byte) RiskType {
	t := RiskType(b)
	if _, ok := riskTypeNames[t]; !ok {
		return RiskTypeUnknown
	}
	return t
}

// ParseRiskType maps a name as returned by String back to a RiskType
func ParseRiskType(s string) (RiskType, error) {
	for t, name := range riskTypeNames {
		if name == s {
			return t, nil
		}
	}
	return RiskTypeUnknown, fmt.Errorf("unknown risk type %q", s)
}

func (t RiskType) String() string {
	if name, ok := riskTypeNames[t]; ok {
		return name
	}
	return riskTypeNames[RiskTypeUnknown]
}

func (t RiskType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *RiskType) UnmarshalText(text []byte) error {
	tmp, err := ParseRiskType(string(text))
	if err != nil {
		return err
	}
	*t = tmp
	return nil
}

// Severity returns the fixed 0-100 severity of the risk category
func (t RiskType) Severity() uint8 {
	if s, ok := riskTypeSeverity[t]; ok {
		return s
	}
	return riskTypeSeverity[RiskTypeUnknown]
}

// VerificationStatus is the state of a BatchReport
type VerificationStatus uint8

const (
	VerificationPending VerificationStatus = iota
	VerificationVerified
	VerificationRejected
	// VerificationUnknown is the sentinel for encoded values outside the
	// known set. It is never written by the engine.
	VerificationUnknown VerificationStatus = 0xff
)

// VerificationStatusFromByte maps an encoded value to a VerificationStatus
func VerificationStatusFromByte(b byte) VerificationStatus {
	switch VerificationStatus(b) {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return VerificationStatus(b)
	default:
		return VerificationUnknown
	}
}

// Terminal reports whether no further transition is possible
func (s VerificationStatus) Terminal() bool {
	return s != VerificationPending
}

func (s VerificationStatus) String() string {
	switch s {
	case VerificationPending:
		return "pending"
	case VerificationVerified:
		return "verified"
	case VerificationRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

func (s VerificationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *VerificationStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pending":
		*s = VerificationPending
	case "verified":
		*s = VerificationVerified
	case "rejected":
		*s = VerificationRejected
	default:
		return fmt.Errorf("unknown verification status %q", string(text))
	}
	return nil
}
