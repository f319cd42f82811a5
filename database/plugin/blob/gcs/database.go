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

package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/blinklabs-io/solcat/database/plugin/blob/remote"
	"github.com/blinklabs-io/solcat/database/sops"
	"github.com/blinklabs-io/solcat/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BlobStoreGCS stores records as objects in a Google Cloud Storage bucket
type BlobStoreGCS struct {
	*remote.Store
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	client          *storage.Client
	bucket          *storage.BucketHandle
	bucketName      string
	prefix          string
	credentialsFile string
	kmsKeys         sops.Keys
}

// New creates a new GCS-backed record store. dataDir must be "gcs://bucket".
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreGCS, error) {
	bucketName, _ := strings.CutPrefix(dataDir, "gcs://")
	if bucketName == "" || bucketName == dataDir {
		return nil, errors.New(
			"gcs blob: bucket not set (expected dataDir='gcs://<bucket>')",
		)
	}
	return NewWithOptions(
		WithBucket(bucketName),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

// NewWithOptions creates a new GCS-backed record store using options. The
// client is created by Start.
func NewWithOptions(opts ...BlobStoreGCSOptionFunc) (*BlobStoreGCS, error) {
	d := &BlobStoreGCS{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if d.prefix != "" {
		d.prefix = strings.TrimSuffix(d.prefix, "/") + "/"
	}
	storeOpts := []remote.StoreOptionFunc{
		remote.WithLogger(d.logger),
		remote.WithPromRegistry(d.promRegistry),
	}
	if !d.kmsKeys.IsZero() {
		sealer, err := sops.NewSealer(d.kmsKeys)
		if err != nil {
			return nil, fmt.Errorf("gcs blob: %w", err)
		}
		storeOpts = append(storeOpts, remote.WithSealer(sealer))
	}
	d.Store = remote.New("gcs", &objects{d: d}, storeOpts...)
	return d, nil
}

// ValidateCredentials checks that a configured credentials file exists. An
// empty path selects the default credentials and is always valid.
func ValidateCredentials(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("GCS credentials file does not exist: %s", path)
		}
		return fmt.Errorf("GCS credentials file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("GCS credentials file is a directory: %s", path)
	}
	return nil
}

// Start implements the plugin.Plugin interface.
func (d *BlobStoreGCS) Start() error {
	if d.bucketName == "" {
		return errors.New("gcs blob: bucket not set")
	}
	if err := ValidateCredentials(d.credentialsFile); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	clientOpts := []option.ClientOption{storage.WithDisabledClientMetrics()}
	if d.credentialsFile != "" {
		clientOpts = append(
			clientOpts,
			option.WithCredentialsFile(d.credentialsFile),
		)
	}
	client, err := storage.NewGRPCClient(ctx, clientOpts...)
	if err != nil {
		return fmt.Errorf("gcs blob: failed in creating storage client: %w", err)
	}
	d.client = client
	d.bucket = client.Bucket(d.bucketName)
	d.logger.Info(
		"using GCS record store",
		"component", "database",
		"bucket", d.bucketName,
		"prefix", d.prefix,
	)
	if err := d.Store.Start(); err != nil {
		_ = d.Close()
		return err
	}
	return nil
}

// Stop implements the plugin.Plugin interface.
func (d *BlobStoreGCS) Stop() error {
	return d.Close()
}

// Close releases the GCS client
func (d *BlobStoreGCS) Close() error {
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	d.bucket = nil
	return err
}

func (d *BlobStoreGCS) fullKey(key string) string {
	return d.prefix + key
}

// objects adapts the GCS bucket handle to remote.ObjectClient
type objects struct {
	d *BlobStoreGCS
}

func (o *objects) bucket() (*storage.BucketHandle, error) {
	if o.d.bucket == nil {
		return nil, types.ErrNoStoreAvailable
	}
	return o.d.bucket, nil
}

func (o *objects) GetObject(ctx context.Context, key string) ([]byte, error) {
	bucket, err := o.bucket()
	if err != nil {
		return nil, err
	}
	r, err := bucket.Object(o.d.fullKey(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (o *objects) PutObject(ctx context.Context, key string, data []byte) error {
	bucket, err := o.bucket()
	if err != nil {
		return err
	}
	w := bucket.Object(o.d.fullKey(key)).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (o *objects) DeleteObject(ctx context.Context, key string) error {
	bucket, err := o.bucket()
	if err != nil {
		return err
	}
	err = bucket.Object(o.d.fullKey(key)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (o *objects) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	bucket, err := o.bucket()
	if err != nil {
		return nil, err
	}
	it := bucket.Objects(ctx, &storage.Query{Prefix: o.d.fullKey(prefix)})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, o.d.prefix))
	}
	return keys, nil
}
