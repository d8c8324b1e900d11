package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBlobs(t *testing.T) *GormBlobs {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := Migrate(db); err != nil {
		t.Fatal(err)
	}
	return NewGormBlobs(db)
}

func TestBlobRoundTrip(t *testing.T) {
	blobs := setupBlobs(t)

	_, err := blobs.Get(KeyUsers)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, blobs.Put(KeyUsers, []byte(`[{"id": "u1"}]`)))

	value, err := blobs.Get(KeyUsers)
	assert.NoError(t, err)
	assert.Equal(t, []byte(`[{"id": "u1"}]`), value)

	// Put replaces the previous value for the key.
	assert.NoError(t, blobs.Put(KeyUsers, []byte(`[]`)))
	value, err = blobs.Get(KeyUsers)
	assert.NoError(t, err)
	assert.Equal(t, []byte(`[]`), value)
}

func TestBlobDelete(t *testing.T) {
	blobs := setupBlobs(t)

	assert.NoError(t, blobs.Put(KeyVisibility, []byte(`{}`)))
	assert.NoError(t, blobs.Delete(KeyVisibility))

	_, err := blobs.Get(KeyVisibility)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, blobs.Delete(KeyVisibility))
}
