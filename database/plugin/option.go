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
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

// PluginOption describes a single configurable value of a plugin. Dest points
// at the plugin's own storage for the value.
type PluginOption struct {
	Name         string
	Type         PluginOptionType
	Description  string
	DefaultValue any
	Dest         any
}

var errNilDest = errors.New("nil destination")

// setValue performs a type-checked assignment into Dest
func (p *PluginOption) setValue(value any) error {
	if p.Dest == nil {
		return fmt.Errorf("option %s: %w", p.Name, errNilDest)
	}
	switch p.Type {
	case PluginOptionTypeString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected string", p.Name)
		}
		dest, ok := p.Dest.(*string)
		if !ok || dest == nil {
			return fmt.Errorf("invalid destination type for option %s: expected *string", p.Name)
		}
		*dest = v
	case PluginOptionTypeBool:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected bool", p.Name)
		}
		dest, ok := p.Dest.(*bool)
		if !ok || dest == nil {
			return fmt.Errorf("invalid destination type for option %s: expected *bool", p.Name)
		}
		*dest = v
	case PluginOptionTypeInt:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected int", p.Name)
		}
		dest, ok := p.Dest.(*int)
		if !ok || dest == nil {
			return fmt.Errorf("invalid destination type for option %s: expected *int", p.Name)
		}
		*dest = v
	case PluginOptionTypeUint:
		dest, ok := p.Dest.(*uint64)
		if !ok || dest == nil {
			return fmt.Errorf("invalid destination type for option %s: expected *uint64", p.Name)
		}
		// accept uint64 or int
		switch tv := value.(type) {
		case uint64:
			*dest = tv
		case int:
			if tv < 0 {
				return fmt.Errorf("invalid value for option %s: negative int", p.Name)
			}
			*dest = uint64(tv)
		default:
			return fmt.Errorf("invalid type for option %s: expected uint64 or int", p.Name)
		}
	default:
		return fmt.Errorf("unknown plugin option type %d for option %s", p.Type, p.Name)
	}
	return nil
}

// setString parses a textual value, as found in environment variables, and
// assigns it
func (p *PluginOption) setString(value string) error {
	switch p.Type {
	case PluginOptionTypeString:
		return p.setValue(value)
	case PluginOptionTypeBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for option %s: %w", p.Name, err)
		}
		return p.setValue(v)
	case PluginOptionTypeInt:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for option %s: %w", p.Name, err)
		}
		return p.setValue(v)
	case PluginOptionTypeUint:
		v, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid value for option %s: %w", p.Name, err)
		}
		return p.setValue(v)
	default:
		return fmt.Errorf("unknown plugin option type %d for option %s", p.Type, p.Name)
	}
}

// AddToFlagSet registers the option as a command line flag
func (p *PluginOption) AddToFlagSet(
	fs *pflag.FlagSet,
	pluginType string,
	pluginName string,
) error {
	flagName := strings.Join([]string{pluginType, pluginName, p.Name}, "-")
	switch p.Type {
	case PluginOptionTypeString:
		dest, ok := p.Dest.(*string)
		def, ok2 := p.DefaultValue.(string)
		if !ok || !ok2 {
			return fmt.Errorf("option %s: string type mismatch", p.Name)
		}
		fs.StringVar(dest, flagName, def, p.Description)
	case PluginOptionTypeBool:
		dest, ok := p.Dest.(*bool)
		def, ok2 := p.DefaultValue.(bool)
		if !ok || !ok2 {
			return fmt.Errorf("option %s: bool type mismatch", p.Name)
		}
		fs.BoolVar(dest, flagName, def, p.Description)
	case PluginOptionTypeInt:
		dest, ok := p.Dest.(*int)
		def, ok2 := p.DefaultValue.(int)
		if !ok || !ok2 {
			return fmt.Errorf("option %s: int type mismatch", p.Name)
		}
		fs.IntVar(dest, flagName, def, p.Description)
	case PluginOptionTypeUint:
		dest, ok := p.Dest.(*uint64)
		def, ok2 := p.DefaultValue.(uint64)
		if !ok || !ok2 {
			return fmt.Errorf("option %s: uint type mismatch", p.Name)
		}
		fs.Uint64Var(dest, flagName, def, p.Description)
	default:
		return fmt.Errorf("unknown plugin option type %d for option %s", p.Type, p.Name)
	}
	return nil
}

// EnvVarName returns the environment variable consulted for the option
func (p *PluginOption) EnvVarName(
	envPrefix string,
	pluginType string,
	pluginName string,
) string {
	ret := strings.Join(
		[]string{envPrefix, pluginType, pluginName, p.Name},
		"_",
	)
	return strings.ToUpper(strings.ReplaceAll(ret, "-", "_"))
}

// PopulateCmdlineOptions adds flags for the options of every registered plugin
// of the given type
func PopulateCmdlineOptions(fs *pflag.FlagSet, pluginType PluginType) error {
	for _, entry := range GetPlugins(pluginType) {
		for i := range entry.Options {
			if err := entry.Options[i].AddToFlagSet(fs, PluginTypeName(pluginType), entry.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessEnvVars applies option values from the environment to every
// registered plugin of the given type
func ProcessEnvVars(envPrefix string, pluginType PluginType) error {
	for _, entry := range GetPlugins(pluginType) {
		for i := range entry.Options {
			opt := &entry.Options[i]
			envVar := opt.EnvVarName(envPrefix, PluginTypeName(pluginType), entry.Name)
			value, ok := os.LookupEnv(envVar)
			if !ok {
				continue
			}
			if err := opt.setString(value); err != nil {
				return fmt.Errorf("environment variable %s: %w", envVar, err)
			}
		}
	}
	return nil
}

// ProcessConfig applies option values from a config file section, keyed by
// plugin name and then option name
func ProcessConfig(
	pluginType PluginType,
	pluginConfig map[string]map[string]any,
) error {
	for pluginName, options := range pluginConfig {
		for optionName, value := range options {
			if err := SetPluginOption(pluginType, pluginName, optionName, value); err != nil {
				return err
			}
		}
	}
	return nil
}
