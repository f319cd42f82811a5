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

package sqlite

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultBusyTimeout    = 5 * time.Second
	DefaultVacuumInterval = 24 * time.Hour
)

type MetadataStoreSqliteOptionFunc func(*MetadataStoreSqlite)

// WithLogger specifies the logger for index maintenance messages
func WithLogger(logger *slog.Logger) MetadataStoreSqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.logger = logger
	}
}

// WithPromRegistry specifies the registry for the index row gauges
func WithPromRegistry(
	registry prometheus.Registerer,
) MetadataStoreSqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.promRegistry = registry
	}
}

// WithDataDir specifies the directory holding metadata.sqlite. An empty
// directory keeps the index in memory.
func WithDataDir(dataDir string) MetadataStoreSqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.dataDir = dataDir
	}
}

// WithBusyTimeout bounds how long an instruction's index write waits on a
// concurrent reader such as `solcat reports`
func WithBusyTimeout(timeout time.Duration) MetadataStoreSqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.busyTimeout = timeout
	}
}

// WithVacuumInterval sets how often the on-disk index is vacuumed. Zero
// disables vacuuming.
func WithVacuumInterval(interval time.Duration) MetadataStoreSqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.vacuumInterval = interval
	}
}
