// Package dbtest opens throwaway SQLite databases carrying the application
// schema for store-level tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/squadlog/squadlog-backend/pkg/config"
	"github.com/squadlog/squadlog-backend/pkg/db"
	"github.com/squadlog/squadlog-backend/pkg/migrate"
	"github.com/stretchr/testify/require"
)

// Open returns a client on a private in-memory database. The pool is pinned
// to one connection so concurrent transactions queue the way row locks make
// them queue in Postgres.
func Open(t *testing.T) *db.Client {
	t.Helper()

	cfg := config.DBConfig{
		Driver:       config.DBDriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)

	sqlDB, err := client.SQL()
	require.NoError(t, err)
	require.NoError(t, migrate.UpSQLite(context.Background(), sqlDB))

	t.Cleanup(func() { _ = client.Close() })
	return client
}
