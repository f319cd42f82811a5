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
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/blinklabs-io/solcat/database"
	"github.com/blinklabs-io/solcat/records"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type recordKind struct {
	decode func([]byte) (any, error)
}

func decodeAs[T any, PT interface {
	*T
	records.Record
}]() func([]byte) (any, error) {
	return func(data []byte) (any, error) {
		return records.Decode[T, PT](data)
	}
}

// reportView adds the derived severity to a report
type reportView struct {
	records.AddressReport `yaml:",inline"`
	MaxSeverity           uint8 `yaml:"maxSeverity"`
}

// statsView adds the derived average risk to address stats
type statsView struct {
	records.AddressStats `yaml:",inline"`
	AverageRisk          uint8 `yaml:"averageRisk"`
}

var recordKinds = map[string]recordKind{
	"reporter-stats": {decode: decodeAs[records.ReporterStats]()},
	"address-stats": {decode: func(data []byte) (any, error) {
		stats, err := records.Decode[records.AddressStats](data)
		if err != nil {
			return nil, err
		}
		return statsView{AddressStats: *stats, AverageRisk: stats.AverageRisk()}, nil
	}},
	"report": {decode: func(data []byte) (any, error) {
		report, err := records.Decode[records.AddressReport](data)
		if err != nil {
			return nil, err
		}
		return reportView{
			AddressReport: *report,
			MaxSeverity:   report.RiskAssessment.MaxSeverity(),
		}, nil
	}},
	"config":     {decode: decodeAs[records.GlobalConfig]()},
	"stake-pool": {decode: decodeAs[records.StakePool]()},
	"user-stake": {decode: decodeAs[records.UserStake]()},
	"batch":      {decode: decodeAs[records.BatchReport]()},
	"history":    {decode: decodeAs[records.ReportHistory]()},
}

func recordKindNames() []string {
	ret := make([]string, 0, len(recordKinds)+1)
	for name := range recordKinds {
		ret = append(ret, name)
	}
	ret = append(ret, "balance")
	slices.Sort(ret)
	return ret
}

func inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <kind> <address>",
		Short: "Decode and print a stored record",
		Long: "Decode and print a stored record. Kinds: " +
			strings.Join(recordKindNames(), ", "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := records.ParseAddress(args[1])
			if err != nil {
				return err
			}
			n, _, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()
			txn := n.Database().Transaction(false)
			defer txn.Release()
			return inspect(cmd.OutOrStdout(), txn, args[0], addr)
		},
	}
	return cmd
}

func inspect(
	w io.Writer,
	txn *database.Txn,
	kind string,
	addr records.Address,
) error {
	if kind == "balance" {
		balance, err := txn.Balance(addr)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s: %d\n", addr, balance)
		return err
	}
	rk, ok := recordKinds[kind]
	if !ok {
		return fmt.Errorf(
			"unknown record kind %q, expected one of: %s",
			kind,
			strings.Join(recordKindNames(), ", "),
		)
	}
	data, err := txn.Record(addr)
	if err != nil {
		return err
	}
	rec, err := rk.decode(data)
	if err != nil {
		if errors.Is(err, records.ErrNotInitialized) {
			return fmt.Errorf("no record at %s", addr)
		}
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return err
	}
	return enc.Close()
}
