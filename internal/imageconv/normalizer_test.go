package imageconv

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
)

// memStore is an in-memory blob store for normalizer tests.
type memStore struct {
	blobs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{blobs: map[string][]byte{}}
}

func (m *memStore) Write(ctx context.Context, name string, data []byte) error {
	if _, ok := m.blobs[name]; ok {
		return &domain.StorageError{Op: "write", Name: name, Err: errors.New("blob already exists")}
	}
	m.blobs[name] = data
	return nil
}

func (m *memStore) Read(ctx context.Context, name string) ([]byte, error) {
	data, ok := m.blobs[name]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "blob", ID: name}
	}
	return data, nil
}

func (m *memStore) Delete(ctx context.Context, name string) error {
	if _, ok := m.blobs[name]; !ok {
		return &domain.NotFoundError{Resource: "blob", ID: name}
	}
	delete(m.blobs, name)
	return nil
}

func (m *memStore) Exists(ctx context.Context, name string) (bool, error) {
	_, ok := m.blobs[name]
	return ok, nil
}

// stubConverter returns fixed output, or a fixed error.
type stubConverter struct {
	out []byte
	err error
}

func (s stubConverter) Convert(ctx context.Context, data []byte) ([]byte, error) {
	return s.out, s.err
}

func TestNormalizeCanonicalPassThrough(t *testing.T) {
	store := newMemStore()
	norm := NewNormalizer(store, stubConverter{err: errors.New("must not be called")}, 0, 0)

	for _, ref := range []string{"1-a.jpg", "2-b.jpeg", "3-c.PNG"} {
		got, err := norm.Normalize(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, ref, got)
	}
	// Pass-through touches the store not at all.
	assert.Empty(t, store.blobs)
}

func TestNormalizeConvertsAndSwapsBlobs(t *testing.T) {
	store := newMemStore()
	store.blobs["1-photo.heic"] = []byte("heic bytes")
	norm := NewNormalizer(store, stubConverter{out: []byte("jpeg bytes")}, 0, 0)

	got, err := norm.Normalize(context.Background(), "1-photo.heic")
	require.NoError(t, err)
	assert.Equal(t, "1-photo.jpg", got)

	assert.Equal(t, []byte("jpeg bytes"), store.blobs["1-photo.jpg"])
	_, srcKept := store.blobs["1-photo.heic"]
	assert.False(t, srcKept)
}

func TestNormalizeConversionFailureKeepsSource(t *testing.T) {
	store := newMemStore()
	store.blobs["1-photo.heic"] = []byte("heic bytes")
	norm := NewNormalizer(store, stubConverter{err: errors.New("tool crashed")}, 0, 0)

	_, err := norm.Normalize(context.Background(), "1-photo.heic")
	require.Error(t, err)

	var ce *domain.ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "1-photo.heic", ce.Ref)

	// Source blob untouched, nothing else written.
	assert.Equal(t, []byte("heic bytes"), store.blobs["1-photo.heic"])
	assert.Len(t, store.blobs, 1)
}

func TestNormalizeDownscalesConvertedOutput(t *testing.T) {
	store := newMemStore()
	store.blobs["1-big.heic"] = []byte("heic bytes")

	// The converter yields an oversized decodable image; the size bound must
	// apply to it even though the intake bytes were not decodable.
	norm := NewNormalizer(store, stubConverter{out: encodePNG(t, 300, 100)}, 0, 150)

	got, err := norm.Normalize(context.Background(), "1-big.heic")
	require.NoError(t, err)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(store.blobs[got]))
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestNormalizeMissingSource(t *testing.T) {
	norm := NewNormalizer(newMemStore(), stubConverter{out: []byte("x")}, 0, 0)

	_, err := norm.Normalize(context.Background(), "1-gone.heic")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}
