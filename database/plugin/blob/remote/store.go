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

package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/solcat/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultTimeout = 60 * time.Second

// ObjectClient is the minimal object storage API a remote record store needs.
// GetObject returns types.ErrBlobKeyNotFound for missing keys and
// DeleteObject ignores them.
type ObjectClient interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
	PutObject(ctx context.Context, key string, data []byte) error
	DeleteObject(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// Store keeps records as objects in a bucket. Writes made in a transaction are
// buffered and only sent to the bucket on commit, so a rolled back
// transaction leaves nothing behind.
// Sealer encrypts objects before they leave the process. Sealed tells a
// sealed object from one written before sealing was enabled.
type Sealer interface {
	Seal(data []byte) ([]byte, error)
	Open(data []byte) ([]byte, error)
	Sealed(data []byte) bool
}

type Store struct {
	client       ObjectClient
	logger       *slog.Logger
	promRegistry prometheus.Registerer
	metrics      *storeMetrics
	name         string
	timeout      time.Duration
	sealer       Sealer
}

type StoreOptionFunc func(*Store)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) StoreOptionFunc {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) StoreOptionFunc {
	return func(s *Store) {
		s.promRegistry = registry
	}
}

// WithTimeout bounds every single object operation
func WithTimeout(timeout time.Duration) StoreOptionFunc {
	return func(s *Store) {
		s.timeout = timeout
	}
}

// WithSealer seals every object on commit and opens it on read
func WithSealer(sealer Sealer) StoreOptionFunc {
	return func(s *Store) {
		s.sealer = sealer
	}
}

func New(name string, client ObjectClient, opts ...StoreOptionFunc) *Store {
	s := &Store{
		client:  client,
		name:    name,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s.logger = s.logger.With("component", "database", "blob", name)
	s.metrics = newStoreMetrics(name)
	return s
}

// Start registers the store metrics. It is called by the owning plugin once
// its client is ready.
func (s *Store) Start() error {
	if s.promRegistry != nil {
		if err := s.metrics.register(s.promRegistry); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// NewTransaction returns a transaction buffering writes until Commit
func (s *Store) NewTransaction(readWrite bool) types.Txn {
	return &Txn{store: s, readWrite: readWrite}
}

func (s *Store) validateTxn(txn types.Txn) (*Txn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	t, ok := txn.(*Txn)
	if !ok || t.store != s {
		return nil, types.ErrTxnWrongType
	}
	if t.finished {
		return nil, ErrTxnFinished
	}
	return t, nil
}

// Get returns the value at key as seen by txn
func (s *Store) Get(txn types.Txn, key []byte) ([]byte, error) {
	t, err := s.validateTxn(txn)
	if err != nil {
		return nil, err
	}
	if val, ok := t.pending(string(key)); ok {
		if val == nil {
			return nil, types.ErrBlobKeyNotFound
		}
		return append([]byte(nil), val...), nil
	}
	return s.read(string(key))
}

// read fetches an object and opens it when sealing is enabled. Objects
// written before sealing was enabled are returned as stored and resealed
// by their next write.
func (s *Store) read(key string) ([]byte, error) {
	data, err := s.fetch(key)
	if err != nil || s.sealer == nil {
		return data, err
	}
	if !s.sealer.Sealed(data) {
		s.logger.Warn(
			"object stored unsealed",
			"key", key,
		)
		return data, nil
	}
	plaintext, err := s.sealer.Open(data)
	if err != nil {
		s.logger.Error(
			"object open failed",
			"key", key,
			"error", err,
		)
		return nil, fmt.Errorf("open %q: %w", key, err)
	}
	return plaintext, nil
}

func (s *Store) fetch(key string) ([]byte, error) {
	ctx, cancel := s.opContext()
	defer cancel()
	data, err := s.client.GetObject(ctx, key)
	s.metrics.gets.Inc()
	if err != nil {
		if !errors.Is(err, types.ErrBlobKeyNotFound) {
			s.logger.Error(
				"object read failed",
				"key", key,
				"error", err,
			)
		}
		return nil, err
	}
	s.metrics.bytesRead.Add(float64(len(data)))
	return data, nil
}

// Set buffers a write of key in txn
func (s *Store) Set(txn types.Txn, key, val []byte) error {
	t, err := s.validateTxn(txn)
	if err != nil {
		return err
	}
	if !t.readWrite {
		return types.ErrReadOnlyTxn
	}
	if val == nil {
		val = []byte{}
	}
	t.stage(string(key), append([]byte(nil), val...))
	return nil
}

// Delete buffers a removal of key in txn
func (s *Store) Delete(txn types.Txn, key []byte) error {
	t, err := s.validateTxn(txn)
	if err != nil {
		return err
	}
	if !t.readWrite {
		return types.ErrReadOnlyTxn
	}
	t.stage(string(key), nil)
	return nil
}

// Close implements the BlobStore interface. The owning plugin releases the
// client.
func (s *Store) Close() error {
	return nil
}
