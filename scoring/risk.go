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

// Package scoring computes report risk scores and reporter vote weights
package scoring

import (
	"math"

	"github.com/blinklabs-io/solcat/records"
)

const (
	// HighVolumeThreshold is the transaction volume, in the smallest native
	// unit, above which the volume sub-score saturates
	HighVolumeThreshold = 1_000_000_000_000
	// InteractionThreshold is the unique interaction count at which the
	// interaction sub-score reaches 100
	InteractionThreshold = 1000
	// PatternThreshold is the suspicious pattern count at which the pattern
	// sub-score saturates
	PatternThreshold = 5

	day  = 86400
	year = 365 * day
)

// Sub-score weights. Scores are computed in single precision so they match
// the values already stored in deployed records.
const (
	weightVolume       float32 = 0.3
	weightInteractions float32 = 0.2
	weightAge          float32 = 0.1
	weightPatterns     float32 = 0.4

	weightBase    float32 = 0.6
	weightMetrics float32 = 0.4
)

func VolumeScore(volume uint64) float32 {
	if volume > HighVolumeThreshold {
		return 100
	}
	return float32(volume) / HighVolumeThreshold * 100
}

func InteractionScore(interactions uint32) float32 {
	if interactions > InteractionThreshold {
		return 100
	}
	return float32(interactions) / InteractionThreshold * 100
}

// AgeScore is a step function of account age in seconds. Newer accounts
// score riskier.
func AgeScore(age int64) float32 {
	switch {
	case age < day:
		return 100
	case age < 30*day:
		return 75
	case age < year:
		return 50
	default:
		return 25
	}
}

func PatternScore(patterns int) float32 {
	return min(float32(patterns)/PatternThreshold, 1) * 100
}

// MetricsScore combines the observed metric sub-scores
func MetricsScore(m *records.RiskMetrics) float32 {
	return VolumeScore(m.TransactionVolume)*weightVolume +
		InteractionScore(m.UniqueInteractions)*weightInteractions +
		AgeScore(m.AgeOfAccount)*weightAge +
		PatternScore(len(m.SuspiciousPatterns))*weightPatterns
}

// Score returns the final 0-100 risk score for a report
func Score(a *records.RiskAssessment, m *records.RiskMetrics) uint8 {
	confidence := float32(a.ConfidenceScore) / 100
	final := (float32(a.BaseScore)*weightBase + MetricsScore(m)*weightMetrics) * confidence
	return uint8(min(math.Round(float64(final)), 100))
}
