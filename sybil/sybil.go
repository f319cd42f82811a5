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

// Package sybil implements the reporter rate limits that gate new reports
package sybil

import (
	"errors"

	"github.com/blinklabs-io/solcat/internal/satmath"
	"github.com/blinklabs-io/solcat/records"
)

const (
	MinReputation       = 10
	CooldownPeriod      = 3600
	WindowDuration      = 86400
	MaxReportsPerWindow = 5
)

var (
	ErrInsufficientReputation = errors.New("reporter reputation below minimum")
	ErrCooldownActive         = errors.New("reporter cooldown active")
	ErrReportLimitExceeded    = errors.New("report limit for window exceeded")
)

// CheckReputation rejects reporters below the reputation floor
func CheckReputation(stats *records.ReporterStats) error {
	if stats.ReputationScore < MinReputation {
		return ErrInsufficientReputation
	}
	return nil
}

// Check reports whether a reporter may submit a new report at now. It does
// not modify stats.
func Check(stats *records.ReporterStats, now int64) error {
	if err := CheckReputation(stats); err != nil {
		return err
	}
	if now < stats.CooldownEndTime {
		return ErrCooldownActive
	}
	if windowOpen(stats, now) && stats.ReportsInWindow >= MaxReportsPerWindow {
		return ErrReportLimitExceeded
	}
	return nil
}

// Record applies an accepted report to stats
func Record(stats *records.ReporterStats, now int64) {
	if !windowOpen(stats, now) {
		stats.ReportsInWindow = 0
	}
	stats.TotalReports = satmath.AddU32(stats.TotalReports, 1)
	stats.ReportsInWindow = satmath.AddU32(stats.ReportsInWindow, 1)
	stats.LastReportTime = now
	stats.CooldownEndTime = satmath.AddI64(now, CooldownPeriod)
}

func windowOpen(stats *records.ReporterStats, now int64) bool {
	return now-stats.LastReportTime < WindowDuration
}
