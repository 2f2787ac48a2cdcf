package ratelimit_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/peakform/backend/internal/ratelimit"
)

func setupStorage(t *testing.T) (*ratelimit.RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	storage := ratelimit.NewRedisStorage(mr.Addr(), "", 0)
	t.Cleanup(func() {
		storage.Close()
	})
	return storage, mr
}

func TestStorageSetGetDelete(t *testing.T) {
	storage, _ := setupStorage(t)

	assert.NoError(t, storage.Set("hits:1.2.3.4", []byte("3"), 0))

	val, err := storage.Get("hits:1.2.3.4")
	assert.NoError(t, err)
	assert.Equal(t, []byte("3"), val)

	assert.NoError(t, storage.Delete("hits:1.2.3.4"))

	val, err = storage.Get("hits:1.2.3.4")
	assert.NoError(t, err)
	assert.Nil(t, val, "missing keys read as nil, not as an error")
}

func TestStorageMissingKeyIsNil(t *testing.T) {
	storage, _ := setupStorage(t)

	val, err := storage.Get("never-set")
	assert.NoError(t, err)
	assert.Nil(t, val)
}

func TestStorageExpiry(t *testing.T) {
	storage, mr := setupStorage(t)

	assert.NoError(t, storage.Set("hits:ttl", []byte("1"), time.Second))

	mr.FastForward(2 * time.Second)

	val, err := storage.Get("hits:ttl")
	assert.NoError(t, err)
	assert.Nil(t, val)
}

func TestStorageReset(t *testing.T) {
	storage, _ := setupStorage(t)

	assert.NoError(t, storage.Set("a", []byte("1"), 0))
	assert.NoError(t, storage.Set("b", []byte("2"), 0))
	assert.NoError(t, storage.Reset())

	val, err := storage.Get("a")
	assert.NoError(t, err)
	assert.Nil(t, val)
}
