package postgres

import (
	"context"
	"errors"
	"testing"

	"tvcatalog/internal/store/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRecorded = errors.New("recorded")

type recordingQuerier struct {
	sql  string
	args []any
	tag  pgconn.CommandTag
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.sql, q.args = sql, args
	return nil, errRecorded
}

func (q *recordingQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.sql, q.args = sql, args
	return q.tag, nil
}

func TestPagedQuery_AppendsLimitOffset(t *testing.T) {
	q := &recordingQuerier{}

	_, err := pagedQuery(context.Background(), q, `SELECT id FROM seasons WHERE serie_id = $1`,
		scanSeason, 10, 20, int64(4))

	require.ErrorIs(t, err, errRecorded)
	assert.Equal(t, `SELECT id FROM seasons WHERE serie_id = $1 LIMIT $2 OFFSET $3`, q.sql)
	assert.Equal(t, []any{int64(4), 10, 20}, q.args)
}

func TestPagedQuery_NoArgs(t *testing.T) {
	q := &recordingQuerier{}

	_, _ = pagedQuery(context.Background(), q, `SELECT id, name FROM genres ORDER BY id ASC`, scanGenre, 5, 0)

	assert.Equal(t, `SELECT id, name FROM genres ORDER BY id ASC LIMIT $1 OFFSET $2`, q.sql)
	assert.Equal(t, []any{5, 0}, q.args)
}

func TestDeleteQuery(t *testing.T) {
	q := &recordingQuerier{tag: pgconn.NewCommandTag("DELETE 0")}
	err := deleteQuery(context.Background(), q, `DELETE FROM series WHERE id = $1`, int64(1))
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	q.tag = pgconn.NewCommandTag("DELETE 1")
	assert.NoError(t, deleteQuery(context.Background(), q, `DELETE FROM series WHERE id = $1`, int64(1)))
}

func TestNotFound(t *testing.T) {
	assert.ErrorIs(t, notFound(pgx.ErrNoRows), repositories.ErrNotFound)
	other := errors.New("conn reset")
	assert.Same(t, other, notFound(other))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init.up.sql")
	assert.Contains(t, names, "000001_init.down.sql")
}
