package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/uploadauth/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.DB.Migrator().HasTable(&entities.Account{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.LoginEvent{}))
	assert.NoError(t, db.Ping(context.Background()))
}

func TestDatabase_PingAfterClose(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "./data.db?"+sqliteParams, dsn("./data.db"))
	assert.Equal(t, "file:x.db?cache=shared", dsn("file:x.db?cache=shared"))
}
