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
	"sync"
	"time"

	"github.com/blinklabs-io/solcat/database/plugin"
)

const DefaultDataDir = ".solcat"

var (
	cmdlineOptions struct {
		dataDir        string
		busyTimeoutMs  uint64
		vacuumInterval uint64
	}
	cmdlineOptionsMutex sync.RWMutex
)

// initCmdlineOptions sets default values for cmdlineOptions
func initCmdlineOptions() {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions.dataDir = DefaultDataDir
	cmdlineOptions.busyTimeoutMs = uint64(DefaultBusyTimeout.Milliseconds())
	cmdlineOptions.vacuumInterval = uint64(DefaultVacuumInterval / time.Hour)
}

// Register plugin
func init() {
	initCmdlineOptions()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "sqlite",
			Description:        "SQLite relational index",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "Data directory for sqlite storage (empty for in-memory)",
					DefaultValue: DefaultDataDir,
					Dest:         &(cmdlineOptions.dataDir),
				},
				{
					Name:         "busy-timeout-ms",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Milliseconds an index write waits on a locked database",
					DefaultValue: uint64(DefaultBusyTimeout.Milliseconds()),
					Dest:         &(cmdlineOptions.busyTimeoutMs),
				},
				{
					Name:         "vacuum-interval-hours",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Hours between index vacuums (0 disables)",
					DefaultValue: uint64(DefaultVacuumInterval / time.Hour),
					Dest:         &(cmdlineOptions.vacuumInterval),
				},
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	dataDir := cmdlineOptions.dataDir
	busyTimeout := time.Duration(cmdlineOptions.busyTimeoutMs) * time.Millisecond
	vacuumInterval := time.Duration(cmdlineOptions.vacuumInterval) * time.Hour
	cmdlineOptionsMutex.RUnlock()
	p, err := NewWithOptions(
		WithDataDir(dataDir),
		WithBusyTimeout(busyTimeout),
		WithVacuumInterval(vacuumInterval),
		WithLogger(plugin.SharedLogger()),
		WithPromRegistry(plugin.SharedPromRegistry()),
	)
	if err != nil {
		// Return a plugin that defers the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
