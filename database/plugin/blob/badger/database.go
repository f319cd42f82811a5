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

package badger

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

	"github.com/blinklabs-io/solcat/database/types"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultBlockCacheSize = 67108864 // 64MB
	DefaultIndexCacheSize = 16777216 // 16MB
	DefaultGcInterval     = 5 * time.Minute
	// Records are small, so keep them all in the LSM tree
	DefaultValueThreshold = 1024
	gcDiscardRatio        = 0.5
)

// BlobStoreBadger keeps record bytes and balances in badger. With no data
// directory the store is in-memory and nothing is persisted.
type BlobStoreBadger struct {
	promRegistry   prometheus.Registerer
	metrics        *blobMetrics
	db             *badger.DB
	logger         *slog.Logger
	gcStopCh       chan struct{}
	dataDir        string
	gcWg           sync.WaitGroup
	closeOnce      sync.Once
	gcInterval     time.Duration
	blockCacheSize uint64
	indexCacheSize uint64
	valueThreshold int64
	gcEnabled      bool
}

// New opens the badger store
func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	d := &BlobStoreBadger{
		gcEnabled:      true,
		gcInterval:     DefaultGcInterval,
		blockCacheSize: DefaultBlockCacheSize,
		indexCacheSize: DefaultIndexCacheSize,
		valueThreshold: DefaultValueThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	badgerOpts, err := d.badgerOptions()
	if err != nil {
		return nil, err
	}
	d.db, err = badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	d.init()
	return d, nil
}

func (d *BlobStoreBadger) badgerOptions() (badger.Options, error) {
	if d.dataDir == "" {
		return badger.DefaultOptions("").
			WithLogger(NewBadgerLogger(d.logger)).
			// The default INFO logging is a bit verbose
			WithLoggingLevel(badger.WARNING).
			WithInMemory(true).
			WithValueThreshold(d.valueThreshold), nil
	}
	if _, err := os.Stat(d.dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return badger.Options{}, fmt.Errorf("failed to read data dir: %w", err)
		}
		if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
			return badger.Options{}, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	return badger.DefaultOptions(filepath.Join(d.dataDir, "blob")).
		WithLogger(NewBadgerLogger(d.logger)).
		WithLoggingLevel(badger.WARNING).
		WithBlockCacheSize(int64(d.blockCacheSize)). //nolint:gosec
		WithIndexCacheSize(int64(d.indexCacheSize)). //nolint:gosec
		WithValueThreshold(d.valueThreshold).
		WithCompression(options.Snappy), nil
}

func (d *BlobStoreBadger) init() {
	d.metrics = newBlobMetrics(d)
	if d.promRegistry != nil {
		d.metrics.register(d.promRegistry)
	}
	// Value log GC only applies to disk-backed stores
	if d.gcEnabled && d.dataDir != "" && d.gcInterval > 0 {
		d.gcStopCh = make(chan struct{})
		d.gcWg.Add(1)
		go d.blobGc(time.NewTicker(d.gcInterval), d.gcStopCh)
	}
}

func (d *BlobStoreBadger) blobGc(t *time.Ticker, stop <-chan struct{}) {
	defer d.gcWg.Done()
	defer t.Stop()
	for {
		select {
		case <-t.C:
			// Keep collecting while there is something to rewrite
			for {
				err := d.db.RunValueLogGC(gcDiscardRatio)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					d.logger.Warn(
						"blob DB: GC failure",
						"component", "database",
						"error", err,
					)
				}
				break
			}
		case <-stop:
			return
		}
	}
}

// Start implements the plugin.Plugin interface. The store is opened by New.
func (d *BlobStoreBadger) Start() error {
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreBadger) Stop() error {
	return d.Close()
}

// Close stops GC and closes the database handle
func (d *BlobStoreBadger) Close() error {
	var err error
	d.closeOnce.Do(func() {
		if d.gcStopCh != nil {
			close(d.gcStopCh)
			d.gcWg.Wait()
		}
		err = d.db.Close()
	})
	return err
}

// DB returns the database handle
func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}

// NewTransaction creates a new badger transaction
func (d *BlobStoreBadger) NewTransaction(readWrite bool) types.Txn {
	return &badgerTxn{
		store:     d,
		tx:        d.db.NewTransaction(readWrite),
		readWrite: readWrite,
	}
}

// Get returns a copy of the value stored under key, or ErrBlobKeyNotFound
func (d *BlobStoreBadger) Get(txn types.Txn, key []byte) ([]byte, error) {
	t, err := d.txnFor(txn)
	if err != nil {
		return nil, err
	}
	d.metrics.gets.Inc()
	item, err := t.tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (d *BlobStoreBadger) Set(txn types.Txn, key, val []byte) error {
	t, err := d.txnFor(txn)
	if err != nil {
		return err
	}
	if !t.readWrite {
		return types.ErrReadOnlyTxn
	}
	d.metrics.sets.Inc()
	return t.tx.Set(key, val)
}

func (d *BlobStoreBadger) Delete(txn types.Txn, key []byte) error {
	t, err := d.txnFor(txn)
	if err != nil {
		return err
	}
	if !t.readWrite {
		return types.ErrReadOnlyTxn
	}
	d.metrics.deletes.Inc()
	return t.tx.Delete(key)
}

// NewIterator creates an iterator over keys with the given prefix. Items must
// be read before the transaction ends.
func (d *BlobStoreBadger) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	t, err := d.txnFor(txn)
	if err != nil {
		return &errorIterator{err: err}
	}
	return &badgerIterator{
		iter: t.tx.NewIterator(
			badger.IteratorOptions{
				Prefix:         opts.Prefix,
				Reverse:        opts.Reverse,
				PrefetchValues: true,
				PrefetchSize:   100,
			},
		),
	}
}
