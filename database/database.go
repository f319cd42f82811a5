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

package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/solcat/database/plugin"
	"github.com/blinklabs-io/solcat/database/plugin/blob"
	"github.com/blinklabs-io/solcat/database/plugin/metadata"
	"github.com/prometheus/client_golang/prometheus"

	// Register built-in plugins
	_ "github.com/blinklabs-io/solcat/database/plugin/blob/aws"
	_ "github.com/blinklabs-io/solcat/database/plugin/blob/badger"
	_ "github.com/blinklabs-io/solcat/database/plugin/blob/gcs"
	_ "github.com/blinklabs-io/solcat/database/plugin/metadata/sqlite"
)

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// Config holds the settings used to open a Database. An empty DataDir opens
// in-memory stores.
type Config struct {
	PromRegistry   prometheus.Registerer
	Logger         *slog.Logger
	BlobPlugin     string
	MetadataPlugin string
	DataDir        string
}

// Database pairs the record store (blob) with the query index (metadata)
type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	dataDir  string
}

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

func (d *Database) init() error {
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return d.checkCommitTimestamp()
}

// New opens the configured blob and metadata plugins
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	blobPlugin := config.BlobPlugin
	if blobPlugin == "" {
		blobPlugin = DefaultBlobPlugin
	}
	metadataPlugin := config.MetadataPlugin
	if metadataPlugin == "" {
		metadataPlugin = DefaultMetadataPlugin
	}
	plugin.SetShared(config.Logger, config.PromRegistry)
	// Point both stores at the data directory. Plugins without a data-dir
	// option ignore it.
	if err := plugin.SetPluginOption(plugin.PluginTypeBlob, blobPlugin, "data-dir", config.DataDir); err != nil {
		return nil, err
	}
	if err := plugin.SetPluginOption(plugin.PluginTypeMetadata, metadataPlugin, "data-dir", config.DataDir); err != nil {
		return nil, err
	}
	metadataDb, err := metadata.New(metadataPlugin)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	blobDb, err := blob.New(blobPlugin)
	if err != nil {
		_ = metadataDb.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	db := &Database{
		logger:   config.Logger,
		blob:     blobDb,
		metadata: metadataDb,
		dataDir:  config.DataDir,
	}
	if err := db.init(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}
