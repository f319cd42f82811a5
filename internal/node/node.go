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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"code.cloudfoundry.org/clock"
	"github.com/blinklabs-io/solcat/database"
	"github.com/blinklabs-io/solcat/event"
	"github.com/blinklabs-io/solcat/executor"
	"github.com/blinklabs-io/solcat/genesis"
	"github.com/blinklabs-io/solcat/internal/config"
	"github.com/blinklabs-io/solcat/internal/txfile"
	"github.com/blinklabs-io/solcat/processor"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Node wires the database, processor and executor for one CLI invocation
type Node struct {
	config       *config.Config
	logger       *slog.Logger
	clock        clock.Clock
	db           *database.Database
	eventBus     *event.EventBus
	executor     *executor.Executor
	promRegistry *prometheus.Registry
}

type NodeOptionFunc func(*Node)

func WithClock(clk clock.Clock) NodeOptionFunc {
	return func(n *Node) {
		n.clock = clk
	}
}

// WithPromRegistry specifies the registry metrics are recorded in and served
// from. A private registry is used by default.
func WithPromRegistry(registry *prometheus.Registry) NodeOptionFunc {
	return func(n *Node) {
		n.promRegistry = registry
	}
}

// Open opens the database and builds the executor
func Open(
	cfg *config.Config,
	logger *slog.Logger,
	opts ...NodeOptionFunc,
) (*Node, error) {
	n := &Node{
		config: cfg,
		logger: logger,
		clock:  clock.NewClock(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.promRegistry == nil {
		n.promRegistry = prometheus.NewRegistry()
	}
	db, err := database.New(&database.Config{
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
		DataDir:        cfg.DatabasePath,
		Logger:         logger,
		PromRegistry:   n.promRegistry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	n.eventBus = event.NewEventBus(n.promRegistry, logger)
	n.eventBus.SubscribeFunc(event.BlacklistEventType, n.logBlacklist)
	authority := cfg.Authority
	if authority.IsZero() {
		authority = cfg.ProgramID
	}
	n.executor, err = executor.New(executor.Config{
		Database: db,
		Processor: processor.New(
			cfg.ProgramID,
			processor.WithAuthority(authority),
			processor.WithLogger(logger),
		),
		Clock:        n.clock,
		EventBus:     n.eventBus,
		Logger:       logger,
		PromRegistry: n.promRegistry,
	})
	if err != nil {
		n.eventBus.Stop()
		_ = db.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) Database() *database.Database {
	return n.db
}

func (n *Node) EventBus() *event.EventBus {
	return n.eventBus
}

func (n *Node) Close() error {
	n.eventBus.Stop()
	return n.db.Close()
}

// Init writes the genesis records from the config
func (n *Node) Init() error {
	now := n.clock.Now().Unix()
	err := n.db.Transaction(true).Do(func(txn *database.Txn) error {
		return genesis.Apply(txn, &n.config.Genesis, now)
	})
	if err != nil {
		return err
	}
	n.logger.Info(
		"genesis records written",
		"component", "node",
		"config", n.config.Genesis.ConfigAddress.String(),
		"stake_pool", n.config.Genesis.StakePoolAddress.String(),
		"balances", len(n.config.Genesis.Balances),
	)
	return nil
}

// ApplySummary counts the outcome of a transaction file
type ApplySummary struct {
	Applied int
	Failed  int
}

// Apply executes the transactions in order, each in its own database
// transaction. Without keepGoing it stops at the first failure.
func (n *Node) Apply(
	ctx context.Context,
	txs []txfile.Transaction,
	keepGoing bool,
) (ApplySummary, error) {
	var ret ApplySummary
	var errs []error
	for i := range txs {
		if err := ctx.Err(); err != nil {
			return ret, err
		}
		err := n.applyOne(ctx, &txs[i])
		if err == nil {
			ret.Applied++
			continue
		}
		ret.Failed++
		err = fmt.Errorf("transaction %d (%s): %w", i, txs[i].Op, err)
		n.logger.Warn(
			"transaction failed",
			"component", "node",
			"index", i,
			"op", txs[i].Op,
			"error", err,
		)
		if !keepGoing {
			return ret, err
		}
		errs = append(errs, err)
	}
	return ret, errors.Join(errs...)
}

func (n *Node) applyOne(ctx context.Context, tx *txfile.Transaction) error {
	ins, err := tx.Instruction()
	if err != nil {
		return err
	}
	_, err = n.executor.Execute(ctx, ins)
	return err
}

// Run applies the transactions while serving metrics, when a metrics port is
// configured. The metrics server stops once the transactions are done.
func (n *Node) Run(
	ctx context.Context,
	txs []txfile.Transaction,
	keepGoing bool,
) (ApplySummary, error) {
	if n.config.MetricsPort == 0 {
		return n.Apply(ctx, txs, keepGoing)
	}
	var summary ApplySummary
	g, gctx := errgroup.WithContext(ctx)
	applyDone := make(chan struct{})
	g.Go(func() error {
		return n.serveMetrics(gctx, applyDone)
	})
	g.Go(func() error {
		defer close(applyDone)
		var err error
		summary, err = n.Apply(gctx, txs, keepGoing)
		return err
	})
	err := g.Wait()
	return summary, err
}

func (n *Node) logBlacklist(evt event.Event) {
	data, ok := evt.Data.(event.BlacklistEvent)
	if !ok {
		return
	}
	n.logger.Info(
		"address blacklisted",
		"component", "node",
		"address", data.Address.String(),
		"reason", data.Reason,
		"invocation_id", data.InvocationID,
	)
}
