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

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/blinklabs-io/solcat/database/plugin"
	"github.com/blinklabs-io/solcat/genesis"
	"github.com/blinklabs-io/solcat/records"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "solcat.config"

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
	// EnvPrefix is the prefix for all environment overrides, including
	// plugin options
	EnvPrefix = "SOLCAT"
)

var ErrNoProgramID = errors.New("programId is required")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config   yaml.Node       `yaml:"config,omitempty"`
	Database *databaseConfig `yaml:"database,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DatabasePath   string          `yaml:"databasePath"   split_words:"true"`
	BlobPlugin     string          `yaml:"blobPlugin"     envconfig:"DATABASE_BLOB_PLUGIN"`
	MetadataPlugin string          `yaml:"metadataPlugin" envconfig:"DATABASE_METADATA_PLUGIN"`
	ProgramID      records.Address `yaml:"programId"      envconfig:"PROGRAM_ID"`
	// Authority is the key allowed to run privileged instructions. It
	// defaults to ProgramID.
	Authority     records.Address `yaml:"authority"`
	BindAddr      string          `yaml:"bindAddr"      split_words:"true"`
	MetricsPort   uint            `yaml:"metricsPort"   split_words:"true"`
	Tracing       bool            `yaml:"tracing"`
	TracingStdout bool            `yaml:"tracingStdout" split_words:"true"`
	Genesis       genesis.Config  `yaml:"genesis"`
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:   ".solcat",
		BlobPlugin:     DefaultBlobPlugin,
		MetadataPlugin: DefaultMetadataPlugin,
		BindAddr:       "127.0.0.1",
		MetricsPort:    12799,
	}
}

var globalConfig = defaultConfig()

// LoadConfig builds the config from the defaults, the config file and then
// the environment. Without an explicit path, ~/.solcat/solcat.yaml and
// /etc/solcat/solcat.yaml are tried in turn.
func LoadConfig(configFile string) (*Config, error) {
	cfg := defaultConfig()
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
	}
	// Process environment variables
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	// Process plugin environment variables
	for _, pluginType := range []plugin.PluginType{plugin.PluginTypeBlob, plugin.PluginTypeMetadata} {
		if err := plugin.ProcessEnvVars(EnvPrefix, pluginType); err != nil {
			return nil, fmt.Errorf(
				"error processing plugin environment variables: %w",
				err,
			)
		}
	}
	if cfg.Authority.IsZero() {
		cfg.Authority = cfg.ProgramID
	}
	globalConfig = cfg
	return cfg, nil
}

func GetConfig() *Config {
	return globalConfig
}

// Validate checks the settings needed to execute instructions
func (c *Config) Validate() error {
	if c.ProgramID.IsZero() {
		return ErrNoProgramID
	}
	return nil
}

func findConfigFile() string {
	// Check for config file in this path: ~/.solcat/solcat.yaml
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".solcat", "solcat.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := "/etc/solcat/solcat.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

func (c *Config) loadFile(configFile string) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	// First unmarshal into temp config to handle plugin sections
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if tempCfg.Config.Kind != 0 {
		// Overlay the config section onto existing defaults
		if err := tempCfg.Config.Decode(c); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else {
		// Otherwise the whole file is the main config
		if err := yaml.Unmarshal(buf, c); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if tempCfg.Database == nil {
		return nil
	}
	if tempCfg.Database.Blob != nil {
		name, pluginConfig := pluginSection(tempCfg.Database.Blob)
		if name != "" {
			c.BlobPlugin = name
		}
		if err := plugin.ProcessConfig(plugin.PluginTypeBlob, pluginConfig); err != nil {
			return fmt.Errorf("error processing blob plugin config: %w", err)
		}
	}
	if tempCfg.Database.Metadata != nil {
		name, pluginConfig := pluginSection(tempCfg.Database.Metadata)
		if name != "" {
			c.MetadataPlugin = name
		}
		if err := plugin.ProcessConfig(plugin.PluginTypeMetadata, pluginConfig); err != nil {
			return fmt.Errorf("error processing metadata plugin config: %w", err)
		}
	}
	return nil
}

// pluginSection splits a database config section into the selected plugin
// name and the per-plugin option maps
func pluginSection(section map[string]any) (string, map[string]map[string]any) {
	section = maps.Clone(section)
	var name string
	if pluginVal, ok := section["plugin"]; ok {
		if pluginName, ok := pluginVal.(string); ok {
			name = pluginName
			delete(section, "plugin")
		}
	}
	ret := make(map[string]map[string]any)
	for k, v := range section {
		switch val := v.(type) {
		case map[string]any:
			ret[k] = val
		case map[any]any:
			// Convert map[any]any to map[string]any
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			ret[k] = stringAnyMap
		default:
			fmt.Fprintf(os.Stderr, "warning: skipping database config entry %q: expected map, got %T\n", k, v)
		}
	}
	return name, ret
}
