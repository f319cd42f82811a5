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

// Package executor runs instructions against the database. Each instruction
// gets its own read-write transaction: the records written by the processor,
// the balance changes and the metadata index rows commit together or not at
// all.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"code.cloudfoundry.org/clock"
	"github.com/blinklabs-io/solcat/database"
	"github.com/blinklabs-io/solcat/event"
	"github.com/blinklabs-io/solcat/instruction"
	"github.com/blinklabs-io/solcat/processor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "solcat"

type Config struct {
	Database     *database.Database
	Processor    *processor.Processor
	Clock        clock.Clock
	EventBus     *event.EventBus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

type Executor struct {
	config  Config
	metrics *executorMetrics
	tracer  trace.Tracer
}

// Receipt describes a committed instruction
type Receipt struct {
	InvocationID string
	Result       *processor.Result
}

func New(cfg Config) (*Executor, error) {
	if cfg.Database == nil {
		return nil, errors.New("no database provided")
	}
	if cfg.Processor == nil {
		return nil, errors.New("no processor provided")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewClock()
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &Executor{
		config: cfg,
		tracer: otel.Tracer(tracerName),
	}
	if cfg.PromRegistry != nil {
		e.metrics = newExecutorMetrics(cfg.PromRegistry)
	}
	return e, nil
}

// Execute runs one instruction in its own transaction. The returned error is
// a *processor.Error for engine failures. Storage failures are returned as is
// and reported with the host failure code.
func (e *Executor) Execute(
	ctx context.Context,
	ins *instruction.Instruction,
) (*Receipt, error) {
	invocationID := uuid.NewString()
	opName := opcodeLabel(ins)
	start := e.config.Clock.Now()
	_, span := e.tracer.Start(
		ctx,
		"solcat.execute",
		trace.WithAttributes(
			attribute.String("solcat.invocation_id", invocationID),
			attribute.String("solcat.opcode", opName),
			attribute.Int("solcat.accounts", len(ins.Accounts)),
		),
	)
	defer span.End()

	var result *processor.Result
	var pending []event.Event
	err := e.config.Database.Transaction(true).Do(func(txn *database.Txn) error {
		host := &txnHost{
			txn: txn,
			now: start.Unix(),
		}
		var err error
		result, err = e.config.Processor.Process(host, ins)
		if err != nil {
			return err
		}
		pending, err = indexResult(txn, invocationID, result)
		if err != nil {
			return fmt.Errorf("index result: %w", err)
		}
		return nil
	})
	elapsed := e.config.Clock.Since(start)
	if err != nil {
		code, ok := processor.ErrorCode(err)
		if !ok {
			code = processor.ErrHostFailure.Code
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Int64("solcat.error_code", int64(code)))
		e.config.Logger.Debug(
			"instruction rejected",
			"component", "executor",
			"invocation_id", invocationID,
			"opcode", opName,
			"code", code,
			"error", err,
		)
		if e.metrics != nil {
			e.metrics.observe(opName, strconv.FormatUint(uint64(code), 10), elapsed)
		}
		e.publish(event.NewEvent(
			event.InstructionFailedEventType,
			event.InstructionFailedEvent{
				InvocationID: invocationID,
				Opcode:       opName,
				Error:        err.Error(),
				Code:         code,
			},
		))
		return nil, err
	}
	span.SetStatus(codes.Ok, "")
	e.config.Logger.Info(
		"instruction executed",
		"component", "executor",
		"invocation_id", invocationID,
		"opcode", opName,
		"records", len(result.Written),
		"duration", elapsed,
	)
	if e.metrics != nil {
		e.metrics.observe(opName, resultOK, elapsed)
		e.metrics.update(result)
	}
	for _, evt := range pending {
		e.publish(evt)
	}
	return &Receipt{
		InvocationID: invocationID,
		Result:       result,
	}, nil
}

func (e *Executor) publish(evt event.Event) {
	if e.config.EventBus == nil {
		return
	}
	e.config.EventBus.Publish(evt.Type, evt)
}

// opcodeLabel keeps metric label cardinality bounded for garbage input
func opcodeLabel(ins *instruction.Instruction) string {
	op, err := ins.Opcode()
	if err != nil {
		return "invalid"
	}
	return op.String()
}
