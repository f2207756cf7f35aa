package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestOpen_SQLiteMemory(t *testing.T) {
	db, err := Open(context.Background(), "sqlite::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.Equal(t, "sqlite", db.Dialector.Name())
	require.NoError(t, Ping(context.Background(), db))
}

func TestDialector(t *testing.T) {
	_, isSQLite := dialector("file:test.db?cache=shared")
	assert.True(t, isSQLite)

	d, isSQLite := dialector("postgres://u:p@localhost:5432/shop?sslmode=disable")
	assert.False(t, isSQLite)
	assert.Equal(t, "postgres", d.Name())
}
