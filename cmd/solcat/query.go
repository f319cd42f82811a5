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
	"io"
	"text/tabwriter"
	"time"

	"github.com/blinklabs-io/solcat/records"
	"github.com/spf13/cobra"
)

func formatTime(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

func blacklistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist [address]",
		Short: "List blacklisted addresses, or check one address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			store := n.Database().Metadata()
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				addr, err := records.ParseAddress(args[0])
				if err != nil {
					return err
				}
				blacklisted, err := store.IsBlacklisted(addr.Bytes(), nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s blacklisted: %t\n", addr, blacklisted)
				return nil
			}
			entries, err := store.GetBlacklist(nil)
			if err != nil {
				return err
			}
			tw := newTable(out, "ADDRESS", "HISTORY", "SINCE", "REASON")
			for _, entry := range entries {
				fmt.Fprintf(
					tw,
					"%s\t%s\t%s\t%s\n",
					records.NewAddress(entry.Address),
					records.NewAddress(entry.HistoryKey),
					formatTime(entry.Timestamp),
					entry.Reason,
				)
			}
			return tw.Flush()
		},
	}
	return cmd
}

func reportsCommand() *cobra.Command {
	var byReporter bool
	cmd := &cobra.Command{
		Use:   "reports <address>",
		Short: "List indexed reports about an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := records.ParseAddress(args[0])
			if err != nil {
				return err
			}
			n, _, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			store := n.Database().Metadata()
			getReports := store.GetReportsByAddress
			if byReporter {
				getReports = store.GetReportsByReporter
			}
			reports, err := getReports(addr.Bytes(), nil)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "REPORT", "REPORTER", "ADDRESS", "RISK", "WEIGHT", "STAKE", "FILED")
			for _, r := range reports {
				fmt.Fprintf(
					tw,
					"%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					records.NewAddress(r.ReportKey),
					records.NewAddress(r.Reporter),
					records.NewAddress(r.ReportedAddress),
					r.RiskScore,
					r.VoteWeight,
					uint64(r.StakeAmount),
					formatTime(r.Timestamp),
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&byReporter, "by-reporter", false, "treat the address as a reporter")
	return cmd
}

func batchesCommand() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "List batch reports by verification status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var vs records.VerificationStatus
			if err := vs.UnmarshalText([]byte(status)); err != nil {
				return err
			}
			n, _, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			batches, err := n.Database().Metadata().GetBatchesByStatus(uint8(vs), nil)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout(), "BATCH", "REPORTER", "SIZE", "SUBMITTED")
			for _, b := range batches {
				fmt.Fprintf(
					tw,
					"%s\t%s\t%d\t%s\n",
					records.NewAddress(b.BatchKey),
					records.NewAddress(b.Reporter),
					b.Size,
					formatTime(b.Timestamp),
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "pending", "pending, verified or rejected")
	return cmd
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	return tw
}
