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

package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/blinklabs-io/solcat/database/plugin/blob/remote"
	"github.com/blinklabs-io/solcat/database/sops"
	"github.com/blinklabs-io/solcat/database/types"
	"github.com/prometheus/client_golang/prometheus"
)

// BlobStoreS3 stores records as objects in an AWS S3 bucket
type BlobStoreS3 struct {
	*remote.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	client       *s3.Client
	bucket       string
	prefix       string
	region       string
	endpoint     string
	timeout      time.Duration
	kmsKeys      sops.Keys
}

// New creates a new S3-backed record store. dataDir must be "s3://bucket" or
// "s3://bucket/prefix".
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*BlobStoreS3, error) {
	bucket, keyPrefix, err := parseDataDir(dataDir)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(
		WithBucket(bucket),
		WithPrefix(keyPrefix),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
}

func parseDataDir(dataDir string) (string, string, error) {
	path, ok := strings.CutPrefix(dataDir, "s3://")
	if !ok {
		return "", "", errors.New(
			"s3 blob: expected dataDir='s3://<bucket>[/prefix]'",
		)
	}
	bucket, keyPrefix, _ := strings.Cut(path, "/")
	if bucket == "" {
		return "", "", errors.New("s3 blob: bucket not set")
	}
	return bucket, keyPrefix, nil
}

// NewWithOptions creates a new S3-backed record store using options. The
// client is created by Start.
func NewWithOptions(opts ...BlobStoreS3OptionFunc) (*BlobStoreS3, error) {
	d := &BlobStoreS3{}
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
			return nil, fmt.Errorf("s3 blob: %w", err)
		}
		storeOpts = append(storeOpts, remote.WithSealer(sealer))
	}
	if d.timeout > 0 {
		storeOpts = append(storeOpts, remote.WithTimeout(d.timeout))
	}
	d.Store = remote.New("s3", &objects{d: d}, storeOpts...)
	return d, nil
}

// Start implements the plugin.Plugin interface.
func (d *BlobStoreS3) Start() error {
	if d.bucket == "" {
		return errors.New("s3 blob: bucket not set")
	}
	timeout := d.timeout
	if timeout == 0 {
		timeout = remote.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("s3 blob: load default AWS config: %w", err)
	}
	if d.region != "" {
		awsCfg.Region = d.region
	}
	d.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if d.endpoint != "" {
			o.BaseEndpoint = aws.String(d.endpoint)
			o.UsePathStyle = true
		}
	})
	d.logger.Info(
		"using S3 record store",
		"component", "database",
		"bucket", d.bucket,
		"prefix", d.prefix,
	)
	return d.Store.Start()
}

// Stop implements the plugin.Plugin interface.
func (d *BlobStoreS3) Stop() error {
	return nil
}

// Close implements the BlobStore interface.
func (d *BlobStoreS3) Close() error {
	return d.Stop()
}

func (d *BlobStoreS3) fullKey(key string) string {
	return d.prefix + key
}

// objects adapts the S3 client to remote.ObjectClient
type objects struct {
	d *BlobStoreS3
}

func (o *objects) client() (*s3.Client, error) {
	if o.d.client == nil {
		return nil, types.ErrNoStoreAvailable
	}
	return o.d.client, nil
}

func (o *objects) GetObject(ctx context.Context, key string) ([]byte, error) {
	client, err := o.client()
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.d.bucket),
		Key:    aws.String(o.d.fullKey(key)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (o *objects) PutObject(ctx context.Context, key string, data []byte) error {
	client, err := o.client()
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(o.d.bucket),
		Key:    aws.String(o.d.fullKey(key)),
		Body:   bytes.NewReader(data),
	})
	return err
}

func (o *objects) DeleteObject(ctx context.Context, key string) error {
	client, err := o.client()
	if err != nil {
		return err
	}
	_, err = client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.d.bucket),
		Key:    aws.String(o.d.fullKey(key)),
	})
	if err != nil && !isS3NotFound(err) {
		return err
	}
	return nil
}

func (o *objects) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	client, err := o.client()
	if err != nil {
		return nil, err
	}
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(o.d.bucket),
		Prefix: aws.String(o.d.fullKey(prefix)),
	})
	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(
				keys,
				strings.TrimPrefix(aws.ToString(obj.Key), o.d.prefix),
			)
		}
	}
	return keys, nil
}

func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
