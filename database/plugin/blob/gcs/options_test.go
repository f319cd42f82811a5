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
	"io"
	"log/slog"
	"testing"

	"github.com/blinklabs-io/solcat/database/sops"
	"github.com/blinklabs-io/solcat/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := prometheus.NewRegistry()
	b, err := NewWithOptions(
		WithLogger(logger),
		WithPromRegistry(registry),
		WithBucket("test-bucket"),
		WithPrefix("solcat/"),
		WithCredentialsFile("/tmp/key.json"),
		WithKMSKeys(sops.Keys{
			GCPResourceID: "projects/solcat/locations/global/keyRings/records/cryptoKeys/blob",
		}),
	)
	require.NoError(t, err)
	assert.Same(t, logger, b.logger)
	assert.Equal(t, registry, b.promRegistry)
	assert.Equal(t, "test-bucket", b.bucketName)
	assert.Equal(t, "solcat/rabc", b.fullKey("rabc"))
	assert.Equal(t, "/tmp/key.json", b.credentialsFile)
	assert.Equal(
		t,
		"projects/solcat/locations/global/keyRings/records/cryptoKeys/blob",
		b.kmsKeys.GCPResourceID,
	)
}

func TestNewDataDir(t *testing.T) {
	b, err := New("gcs://records", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "records", b.bucketName)

	_, err = New("records", nil, nil)
	require.Error(t, err)
	_, err = New("gcs://", nil, nil)
	require.Error(t, err)
}

func TestUnstartedStoreUnavailable(t *testing.T) {
	b, err := New("gcs://records", nil, nil)
	require.NoError(t, err)
	_, err = b.GetCommitTimestamp()
	require.ErrorIs(t, err, types.ErrNoStoreAvailable)
	require.NoError(t, b.Close())
}
