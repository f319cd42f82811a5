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

package remote_test

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/blinklabs-io/solcat/database/plugin/blob/remote"
	"github.com/blinklabs-io/solcat/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memClient struct {
	objects map[string][]byte
	failPut error
	failKey string
	order   []string
	puts    int
	mu      sync.Mutex
}

func newMemClient() *memClient {
	return &memClient{objects: make(map[string][]byte)}
}

func (c *memClient) GetObject(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.objects[key]
	if !ok {
		return nil, types.ErrBlobKeyNotFound
	}
	return slices.Clone(val), nil
}

func (c *memClient) PutObject(_ context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failPut != nil && (c.failKey == "" || c.failKey == key) {
		return c.failPut
	}
	c.order = append(c.order, key)
	c.puts++
	c.objects[key] = slices.Clone(data)
	return nil
}

func (c *memClient) DeleteObject(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, key)
	return nil
}

func (c *memClient) ListKeys(_ context.Context, prefix string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ret []string
	for _, key := range slices.Sorted(maps.Keys(c.objects)) {
		if strings.HasPrefix(key, prefix) {
			ret = append(ret, key)
		}
	}
	return ret, nil
}

func TestWritesBufferedUntilCommit(t *testing.T) {
	client := newMemClient()
	s := remote.New("test", client)

	txn := s.NewTransaction(true)
	require.NoError(t, s.Set(txn, []byte("ra"), []byte{1, 2}))
	got, err := s.Get(txn, []byte("ra"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, got)
	assert.Empty(t, client.objects)

	require.NoError(t, txn.Commit())
	assert.Equal(t, []byte{1, 2}, client.objects["ra"])

	_, err = s.Get(txn, []byte("ra"))
	require.ErrorIs(t, err, remote.ErrTxnFinished)
}

func TestRollbackDiscards(t *testing.T) {
	client := newMemClient()
	client.objects["ra"] = []byte{9}
	s := remote.New("test", client)

	txn := s.NewTransaction(true)
	require.NoError(t, s.Set(txn, []byte("rb"), []byte{1}))
	require.NoError(t, s.Delete(txn, []byte("ra")))
	_, err := s.Get(txn, []byte("ra"))
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, txn.Rollback())

	assert.Equal(t, map[string][]byte{"ra": {9}}, client.objects)
}

func TestReadOnlyTxn(t *testing.T) {
	s := remote.New("test", newMemClient())
	txn := s.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	require.ErrorIs(t, s.Set(txn, []byte("k"), []byte{1}), types.ErrReadOnlyTxn)
	require.ErrorIs(t, s.Delete(txn, []byte("k")), types.ErrReadOnlyTxn)
}

func TestForeignTxnRejected(t *testing.T) {
	a := remote.New("a", newMemClient())
	b := remote.New("b", newMemClient())
	txn := a.NewTransaction(true)
	require.ErrorIs(t, b.Set(txn, []byte("k"), nil), types.ErrTxnWrongType)
	_, err := b.Get(nil, []byte("k"))
	require.ErrorIs(t, err, types.ErrNilTxn)
}

func TestIteratorMergesPending(t *testing.T) {
	client := newMemClient()
	client.objects["ra"] = []byte{1}
	client.objects["rb"] = []byte{2}
	client.objects["lx"] = []byte{3}
	s := remote.New("test", client)

	txn := s.NewTransaction(true)
	defer txn.Rollback() //nolint:errcheck
	require.NoError(t, s.Delete(txn, []byte("rb")))
	require.NoError(t, s.Set(txn, []byte("rc"), []byte{4}))

	prefix := []byte("r")
	iter := s.NewIterator(txn, types.BlobIteratorOptions{Prefix: prefix})
	defer iter.Close()
	var keys []string
	var vals []byte
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		keys = append(keys, string(iter.Item().Key()))
		val, err := iter.Item().ValueCopy(nil)
		require.NoError(t, err)
		vals = append(vals, val...)
	}
	require.NoError(t, iter.Err())
	assert.Equal(t, []string{"ra", "rc"}, keys)
	assert.Equal(t, []byte{1, 4}, vals)

	rev := s.NewIterator(
		txn,
		types.BlobIteratorOptions{Prefix: prefix, Reverse: true},
	)
	rev.Rewind()
	require.True(t, rev.Valid())
	assert.Equal(t, "rc", string(rev.Item().Key()))
}

func TestCommitFlushError(t *testing.T) {
	client := newMemClient()
	client.failPut = errors.New("bucket unavailable")
	s := remote.New("test", client)

	txn := s.NewTransaction(true)
	require.NoError(t, s.Set(txn, []byte("ra"), []byte{1}))
	err := txn.Commit()
	require.ErrorIs(t, err, client.failPut)
	assert.Empty(t, client.objects)
}

func TestCommitTimestampFlushedLast(t *testing.T) {
	client := newMemClient()
	s := remote.New("test", client)

	txn := s.NewTransaction(true)
	require.NoError(t, s.Set(txn, []byte("ra"), []byte{1}))
	require.NoError(t, s.SetCommitTimestamp(5, txn))
	require.NoError(t, s.Set(txn, []byte("la"), []byte{2}))
	require.NoError(t, txn.Commit())
	assert.Equal(
		t,
		[]string{"la", "ra", "metadata_commit_timestamp"},
		client.order,
	)

	client.failPut = errors.New("bucket unavailable")
	client.failKey = "rb"
	txn = s.NewTransaction(true)
	require.NoError(t, s.Set(txn, []byte("rb"), []byte{3}))
	require.NoError(t, s.SetCommitTimestamp(6, txn))
	require.Error(t, txn.Commit())
	ts, err := s.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(5), ts)
}

func TestCommitTimestamp(t *testing.T) {
	client := newMemClient()
	s := remote.New("test", client)

	ts, err := s.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Zero(t, ts)

	txn := s.NewTransaction(true)
	require.NoError(t, s.SetCommitTimestamp(1_700_000_000_123, txn))
	require.NoError(t, txn.Commit())

	ts, err = s.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000_123), ts)
}

// prefixSealer marks sealed objects with a header and reverses the payload
type prefixSealer struct {
	fail error
}

var sealHeader = []byte("sealed:")

func (p *prefixSealer) Seal(data []byte) ([]byte, error) {
	if p.fail != nil {
		return nil, p.fail
	}
	body := slices.Clone(data)
	slices.Reverse(body)
	return append(slices.Clone(sealHeader), body...), nil
}

func (p *prefixSealer) Open(data []byte) ([]byte, error) {
	body := slices.Clone(data[len(sealHeader):])
	slices.Reverse(body)
	return body, nil
}

func (p *prefixSealer) Sealed(data []byte) bool {
	return bytes.HasPrefix(data, sealHeader)
}

func TestSealedObjects(t *testing.T) {
	client := newMemClient()
	s := remote.New("test", client, remote.WithSealer(&prefixSealer{}))

	txn := s.NewTransaction(true)
	require.NoError(t, s.Set(txn, []byte("ra"), []byte{1, 2, 3}))
	require.NoError(t, s.SetCommitTimestamp(42, txn))
	// pending writes are read back unsealed
	val, err := s.Get(txn, []byte("ra"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, val)
	require.NoError(t, txn.Commit())

	assert.Equal(t, []byte("sealed:\x03\x02\x01"), client.objects["ra"])
	assert.Equal(t, []byte("sealed:24"), client.objects["metadata_commit_timestamp"])

	txn = s.NewTransaction(false)
	val, err = s.Get(txn, []byte("ra"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, val)
	it := s.NewIterator(txn, types.BlobIteratorOptions{Prefix: []byte("r")})
	require.True(t, it.Valid())
	val, err = it.Item().ValueCopy(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, val)
	ts, err := s.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
}

func TestSealedStoreReadsUnsealedObjects(t *testing.T) {
	client := newMemClient()
	client.objects["metadata_commit_timestamp"] = []byte("42")
	client.objects["ra"] = []byte{9}
	s := remote.New("test", client, remote.WithSealer(&prefixSealer{}))

	ts, err := s.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(42), ts)
	val, err := s.Get(s.NewTransaction(false), []byte("ra"))
	require.NoError(t, err)
	assert.Equal(t, []byte{9}, val)

	// the next write reseals it
	txn := s.NewTransaction(true)
	require.NoError(t, s.Set(txn, []byte("ra"), []byte{9}))
	require.NoError(t, txn.Commit())
	assert.Equal(t, []byte("sealed:\x09"), client.objects["ra"])
}

func TestSealFailureAbortsCommit(t *testing.T) {
	client := newMemClient()
	sealErr := errors.New("kms unavailable")
	s := remote.New("test", client, remote.WithSealer(&prefixSealer{fail: sealErr}))

	txn := s.NewTransaction(true)
	require.NoError(t, s.Set(txn, []byte("ra"), []byte{1}))
	require.ErrorIs(t, txn.Commit(), sealErr)
	assert.Empty(t, client.objects)
	assert.Zero(t, client.puts)
}

func TestMetrics(t *testing.T) {
	client := newMemClient()
	reg := prometheus.NewRegistry()
	s := remote.New("test", client, remote.WithPromRegistry(reg))
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())

	txn := s.NewTransaction(true)
	require.NoError(t, s.Set(txn, []byte("ra"), []byte{1, 2, 3}))
	require.NoError(t, txn.Commit())

	count, err := testutil.GatherAndCount(reg, "solcat_blob_test_puts_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, client.puts)
}
