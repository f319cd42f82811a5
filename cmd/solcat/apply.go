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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/blinklabs-io/solcat/internal/node"
	"github.com/blinklabs-io/solcat/internal/txfile"
	"github.com/spf13/cobra"
)

func applyCommand() *cobra.Command {
	var txFile string
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Execute the instructions in a transaction file",
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := txfile.Load(txFile)
			if err != nil {
				return err
			}
			n, cfg, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(
				cmd.Context(),
				syscall.SIGINT,
				syscall.SIGTERM,
			)
			defer stop()
			shutdownTracing, err := node.SetupTracing(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					slog.Error("tracing shutdown failed", "component", programName, "error", err)
				}
			}()
			summary, err := n.Run(ctx, txs, keepGoing)
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"applied %d, failed %d, skipped %d\n",
				summary.Applied,
				summary.Failed,
				len(txs)-summary.Applied-summary.Failed,
			)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&txFile, "file", "f", "", "transaction file")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "continue after a failed transaction")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
