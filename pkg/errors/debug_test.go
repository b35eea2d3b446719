package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpNil(t *testing.T) {
	assert.Equal(t, ErrorDump{}, Dump(nil))
}

func TestDumpTypedChain(t *testing.T) {
	err := fmt.Errorf("approve: %w", New(CodeGroupLimitExceeded, "limit reached"))

	d := Dump(err)
	assert.Equal(t, CodeGroupLimitExceeded, d.Code)
	assert.Len(t, d.Chain, 2)
	assert.Nil(t, d.Postgres)
	assert.NotContains(t, d.Fields(), "pg_code")
}

func TestDumpPostgresDrivers(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "group_members_group_user_key", TableName: "group_members"}
	d := Dump(Wrap(CodeConflict, pgxErr, "insert membership"))
	require.NotNil(t, d.Postgres)
	assert.Equal(t, "23505", d.Postgres.Code)
	assert.Equal(t, "group_members_group_user_key", d.Fields()["pg_constraint"])

	pqErr := &pq.Error{Code: "23503", Table: "notifications"}
	d = Dump(fmt.Errorf("insert: %w", pqErr))
	require.NotNil(t, d.Postgres)
	assert.Equal(t, "23503", d.Postgres.Code)
	assert.Equal(t, "notifications", d.Postgres.Table)
}

func TestDumpPlainError(t *testing.T) {
	d := Dump(errors.New("boom"))
	assert.Equal(t, "boom", d.TopMessage)
	assert.Empty(t, d.Code)
}
