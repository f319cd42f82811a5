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
	"sync"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

type PluginEntry struct {
	Type               PluginType
	Name               string
	Description        string
	NewFromOptionsFunc func() Plugin
	Options            []PluginOption
}

var (
	pluginEntries      []PluginEntry
	pluginEntriesMutex sync.RWMutex
)

// Register adds a plugin to the registry. It is meant to be called from the
// init() function of a plugin package.
func Register(pluginEntry PluginEntry) {
	pluginEntriesMutex.Lock()
	defer pluginEntriesMutex.Unlock()
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugin entries of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	ret := []PluginEntry{}
	for _, plugin := range pluginEntries {
		if plugin.Type == pluginType {
			ret = append(ret, plugin)
		}
	}
	return ret
}

// GetPlugin returns a new instance of the named plugin built from its
// current options, or nil when no such plugin is registered
func GetPlugin(pluginType PluginType, pluginName string) Plugin {
	entry, ok := findPlugin(pluginType, pluginName)
	if !ok || entry.NewFromOptionsFunc == nil {
		return nil
	}
	return entry.NewFromOptionsFunc()
}

func findPlugin(pluginType PluginType, pluginName string) (PluginEntry, bool) {
	pluginEntriesMutex.RLock()
	defer pluginEntriesMutex.RUnlock()
	for _, plugin := range pluginEntries {
		if plugin.Type == pluginType && plugin.Name == pluginName {
			return plugin, true
		}
	}
	return PluginEntry{}, false
}
