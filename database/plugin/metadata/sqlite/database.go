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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blinklabs-io/solcat/database/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// MetadataStoreSqlite is a SQLite-based implementation of the metadata store.
// It indexes reports, blacklist entries, batches and history snapshots.
type MetadataStoreSqlite struct {
	promRegistry   prometheus.Registerer
	db             *gorm.DB
	logger         *slog.Logger
	timerVacuum    *time.Timer
	dataDir        string
	busyTimeout    time.Duration
	vacuumInterval time.Duration
	timerMutex     sync.Mutex
	vacuumWG       sync.WaitGroup
	closed         bool
}

// NewWithOptions creates a SQLite metadata store. Uses an in-memory database
// if no data directory is specified.
func NewWithOptions(
	opts ...MetadataStoreSqliteOptionFunc,
) (*MetadataStoreSqlite, error) {
	d := &MetadataStoreSqlite{
		busyTimeout:    DefaultBusyTimeout,
		vacuumInterval: DefaultVacuumInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	dsn, err := d.dsn()
	if err != nil {
		return nil, err
	}
	d.db, err = gorm.Open(
		sqlite.Open(dsn),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return nil, err
	}
	if err := d.init(); err != nil {
		// MetadataStoreSqlite is available for recovery, so return it with error
		return d, err
	}
	return d, nil
}

func (d *MetadataStoreSqlite) dsn() (string, error) {
	if d.dataDir == "" {
		// Each in-memory store gets its own name. cache=shared lets the
		// connections of one store see the same database.
		return fmt.Sprintf(
			"file:solcat-%s?mode=memory&cache=shared",
			uuid.NewString(),
		), nil
	}
	// Make sure that we can read data dir, and create if it doesn't exist
	if _, err := os.Stat(d.dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read data dir: %w", err)
		}
		if err := os.MkdirAll(d.dataDir, fs.ModePerm); err != nil {
			return "", fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	metadataDbPath := filepath.Join(d.dataDir, "metadata.sqlite")
	// WAL journal mode, busy timeout so writers wait on readers
	connOpts := fmt.Sprintf(
		"_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		d.busyTimeout.Milliseconds(),
	)
	return fmt.Sprintf("file:%s?%s", metadataDbPath, connOpts), nil
}

func (d *MetadataStoreSqlite) init() error {
	// Configure tracing for GORM
	if err := d.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return err
	}
	if err := d.db.AutoMigrate(&CommitTimestamp{}); err != nil {
		return err
	}
	for _, model := range models.MigrateModels {
		d.logger.Debug(
			fmt.Sprintf("creating table: %T", model),
			"component", "database",
		)
		if err := d.db.AutoMigrate(model); err != nil {
			return err
		}
	}
	if d.promRegistry != nil {
		d.registerMetrics()
	}
	d.scheduleVacuum()
	return nil
}

func (d *MetadataStoreSqlite) runVacuum() error {
	d.timerMutex.Lock()
	if d.dataDir == "" || d.closed {
		d.timerMutex.Unlock()
		return nil
	}
	// Track this vacuum operation while we know the store is open
	d.vacuumWG.Add(1)
	d.timerMutex.Unlock()
	defer d.vacuumWG.Done()
	return d.DB().Exec("VACUUM").Error
}

// scheduleVacuum schedules the next vacuum operation
func (d *MetadataStoreSqlite) scheduleVacuum() {
	d.timerMutex.Lock()
	defer d.timerMutex.Unlock()
	if d.closed || d.vacuumInterval <= 0 {
		return
	}
	if d.timerVacuum != nil {
		d.timerVacuum.Stop()
	}
	d.timerVacuum = time.AfterFunc(d.vacuumInterval, func() {
		// schedule next run
		defer d.scheduleVacuum()
		if err := d.runVacuum(); err != nil {
			d.logger.Error(
				"failed to free unused space in metadata store",
				"component", "database",
				"error", err,
			)
		}
	})
}

// Start implements the plugin.Plugin interface. The store is opened by
// NewWithOptions.
func (d *MetadataStoreSqlite) Start() error {
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreSqlite) Stop() error {
	return d.Close()
}

// Close shuts down the database connection and stops background processes.
func (d *MetadataStoreSqlite) Close() error {
	d.timerMutex.Lock()
	if d.closed {
		d.timerMutex.Unlock()
		return nil
	}
	d.closed = true
	if d.timerVacuum != nil {
		d.timerVacuum.Stop()
		d.timerVacuum = nil
	}
	d.timerMutex.Unlock()
	// Wait for any in-flight vacuum operations to complete
	d.vacuumWG.Wait()
	db, err := d.DB().DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return db.Close()
}

// DB returns the underlying GORM database handle.
func (d *MetadataStoreSqlite) DB() *gorm.DB {
	return d.db
}
