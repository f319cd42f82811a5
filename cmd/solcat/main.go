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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/blinklabs-io/solcat/database/plugin"
	"github.com/blinklabs-io/solcat/internal/config"
	"github.com/blinklabs-io/solcat/internal/node"
	"github.com/blinklabs-io/solcat/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

const (
	programName = "solcat"
)

func slogPrintf(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func commonRun() *slog.Logger {
	// Configure logger
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	logger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	// Configure max processes with our logger wrapper, toss undo func
	_, err := maxprocs.Set(maxprocs.Logger(slogPrintf))
	if err != nil {
		// If we hit this, something really wrong happened
		slog.Error(err.Error())
		os.Exit(1)
	}
	logger.Debug(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger
}

// openNode opens the database for a command. The caller must close it.
func openNode(cmd *cobra.Command) (*node.Node, *config.Config, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, nil, fmt.Errorf("no config found in context")
	}
	logger := commonRun()
	n, err := node.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return n, cfg, nil
}

func listAllPlugins() string {
	var buf strings.Builder
	buf.WriteString("Available plugins:\n\n")

	buf.WriteString("Blob Storage Plugins:\n")
	for _, p := range plugin.GetPlugins(plugin.PluginTypeBlob) {
		fmt.Fprintf(&buf, "  %s: %s\n", p.Name, p.Description)
	}

	buf.WriteString("\nMetadata Storage Plugins:\n")
	for _, p := range plugin.GetPlugins(plugin.PluginTypeMetadata) {
		fmt.Fprintf(&buf, "  %s: %s\n", p.Name, p.Description)
	}

	return buf.String()
}

func listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all available plugins",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), listAllPlugins())
		},
	}
	return cmd
}

func versionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", programName, version.GetVersionString())
		},
	}
	return cmd
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Address reputation engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().
		StringP("blob", "b", config.DefaultBlobPlugin, "blob store plugin to use")
	rootCmd.PersistentFlags().
		StringP("metadata", "m", config.DefaultMetadataPlugin, "metadata store plugin to use")

	// Add plugin-specific flags
	for _, pluginType := range []plugin.PluginType{plugin.PluginTypeBlob, plugin.PluginTypeMetadata} {
		if err := plugin.PopulateCmdlineOptions(rootCmd.PersistentFlags(), pluginType); err != nil {
			fmt.Fprintf(os.Stderr, "Error adding plugin flags: %v\n", err)
			os.Exit(1)
		}
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// Override config with command line flags
		if flag := cmd.Flags().Lookup("blob"); flag != nil && flag.Changed {
			cfg.BlobPlugin = flag.Value.String()
		}
		if flag := cmd.Flags().Lookup("metadata"); flag != nil && flag.Changed {
			cfg.MetadataPlugin = flag.Value.String()
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	// Subcommands
	rootCmd.AddCommand(initCommand())
	rootCmd.AddCommand(applyCommand())
	rootCmd.AddCommand(inspectCommand())
	rootCmd.AddCommand(blacklistCommand())
	rootCmd.AddCommand(reportsCommand())
	rootCmd.AddCommand(batchesCommand())
	rootCmd.AddCommand(listCommand())
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// NOTE: we purposely don't display the error, since cobra will have already displayed it
		os.Exit(1)
	}
}
