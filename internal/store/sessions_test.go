package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// execStub records the last statement executed and replays a canned tag.
type execStub struct {
	tag  pgconn.CommandTag
	err  error
	sql  string
	args []any
}

func (s *execStub) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.sql, s.args = sql, args
	return s.tag, s.err
}

func (s *execStub) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("unexpected Query: " + sql)
}

func (s *execStub) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("unexpected QueryRow: " + sql)
}

func TestRecomputeSessionTotalsUpdatesActiveSession(t *testing.T) {
	db := &execStub{tag: pgconn.NewCommandTag("UPDATE 1")}
	q := New(db)

	ok, err := q.RecomputeSessionTotals(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, db.sql, "s.status = $2")
	require.Equal(t, []any{int64(7), SessionActive}, db.args)
}

func TestRecomputeSessionTotalsSkipsClosedSession(t *testing.T) {
	// A completed or expired session has frozen totals; the update must not
	// match it, and callers see that through the false return.
	db := &execStub{tag: pgconn.NewCommandTag("UPDATE 0")}
	q := New(db)

	ok, err := q.RecomputeSessionTotals(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, ok)
}
