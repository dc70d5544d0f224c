package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/riskprofile-backend/internal/config"
	"github.com/stemsi/riskprofile-backend/internal/model"
)

func TestOpenStoreSQLite(t *testing.T) {
	cfg := &config.Config{
		StorageDriver: config.StorageDriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "nested", "risk.db"),
	}
	store, closeFn, err := OpenStore(context.Background(), cfg, zerolog.New(io.Discard))
	require.NoError(t, err)
	defer closeFn()

	u := &model.User{Email: "e@x.io", Name: "E", PasswordHash: "h"}
	require.NoError(t, store.Create(context.Background(), u))
	assert.NotZero(t, u.ID)
	assert.FileExists(t, cfg.SQLitePath)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), &config.Config{StorageDriver: "mongo"}, zerolog.New(io.Discard))
	assert.ErrorContains(t, err, "mongo")
}
