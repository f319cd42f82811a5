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

package plugin

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// shared holds the process-wide logger and metrics registry handed to plugins
// when they are instantiated from their options
var shared struct {
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	sync.RWMutex
}

// SetShared sets the logger and metrics registry used by plugins created
// afterwards
func SetShared(logger *slog.Logger, promRegistry prometheus.Registerer) {
	shared.Lock()
	defer shared.Unlock()
	shared.logger = logger
	shared.promRegistry = promRegistry
}

// SharedLogger returns the logger for new plugin instances, which may be nil
func SharedLogger() *slog.Logger {
	shared.RLock()
	defer shared.RUnlock()
	return shared.logger
}

// SharedPromRegistry returns the metrics registry for new plugin instances,
// which may be nil
func SharedPromRegistry() prometheus.Registerer {
	shared.RLock()
	defer shared.RUnlock()
	return shared.promRegistry
}
