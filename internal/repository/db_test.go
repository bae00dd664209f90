package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelsync/hostelsync-api/internal/domain"
)

type statement struct {
	sql  string
	args []any
}

// recordingDB captures statements and answers QueryRow with a canned row.
type recordingDB struct {
	queries []statement
	execs   []statement
	row     cannedRow
}

type cannedRow struct {
	value string
	err   error
}

func (r cannedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if s, ok := dest[0].(*string); ok {
		*s = r.value
	}
	return nil
}

func (d *recordingDB) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (d *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execs = append(d.execs, statement{sql: sql, args: args})
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (d *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("query not supported")
}

func (d *recordingDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	d.queries = append(d.queries, statement{sql: sql, args: args})
	return d.row
}

func TestWhereBuilderScope(t *testing.T) {
	cases := []struct {
		name   string
		scope  domain.Scope
		clause string
		args   []any
	}{
		{"all", domain.Scope{Kind: domain.ScopeAll, UserID: "admin"}, "", nil},
		{"own", domain.Scope{Kind: domain.ScopeOwn, UserID: "s1"}, " WHERE reporter_id = $1", []any{"s1"}},
		{
			"worker",
			domain.Scope{Kind: domain.ScopeWorker, UserID: "p1"},
			" WHERE (assignee_id = $1 OR (assignee_id IS NULL AND status = 'PENDING'))",
			[]any{"p1"},
		},
		{"unknown kind falls back to own", domain.Scope{Kind: domain.ScopeKind(42), UserID: "x"}, " WHERE reporter_id = $1", []any{"x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var w whereBuilder
			w.scope(tc.scope, "reporter_id", "assignee_id", "status")
			assert.Equal(t, tc.clause, w.clause())
			assert.Equal(t, tc.args, w.args)
		})
	}
}

func TestWhereBuilderNumbersArgsAcrossConditions(t *testing.T) {
	var w whereBuilder
	w.add("category = %s", "WATER")
	w.scope(domain.Scope{Kind: domain.ScopeWorker, UserID: "p1"}, "reporter_id", "assignee_id", "status")
	w.add("priority = %s", "HIGH")
	page := w.page(20, 40)

	assert.Equal(t,
		" WHERE category = $1 AND (assignee_id = $2 OR (assignee_id IS NULL AND status = 'PENDING')) AND priority = $3",
		w.clause())
	assert.Equal(t, " LIMIT $4 OFFSET $5", page)
	assert.Equal(t, []any{"WATER", "p1", "HIGH", 20, 40}, w.args)

	var empty whereBuilder
	assert.Equal(t, "", empty.page(0, 0))
}

func TestMapWriteError(t *testing.T) {
	assert.ErrorIs(t, mapWriteError(&pgconn.PgError{Code: "23505"}), ErrDuplicate)
	fk := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, error(fk), mapWriteError(fk))
	assert.NoError(t, mapWriteError(nil))
}

func TestLockScheduleTakesRowLock(t *testing.T) {
	db := &recordingDB{row: cannedRow{err: pgx.ErrNoRows}}
	repo := &bookingRepository{db: db}

	_, err := repo.LockSchedule(context.Background(), "sched-1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	require.Len(t, db.queries, 1)
	assert.Contains(t, db.queries[0].sql, "FROM schedules WHERE id=$1 FOR UPDATE")
	assert.Equal(t, []any{"sched-1"}, db.queries[0].args)
}

func TestPromoteSeriesMember(t *testing.T) {
	db := &recordingDB{row: cannedRow{value: "member-2"}}
	repo := &menuRepository{db: db}

	next, err := repo.PromoteSeriesMember(context.Background(), "base-1")
	require.NoError(t, err)
	assert.Equal(t, "member-2", next)
	require.Len(t, db.execs, 2)
	assert.Equal(t, []any{"member-2"}, db.execs[0].args)
	assert.Contains(t, db.execs[0].sql, "SET base_menu_id=NULL")
	assert.Equal(t, []any{"member-2", "base-1"}, db.execs[1].args)
}

func TestPromoteSeriesMemberWithoutMembers(t *testing.T) {
	db := &recordingDB{row: cannedRow{err: pgx.ErrNoRows}}
	repo := &menuRepository{db: db}

	next, err := repo.PromoteSeriesMember(context.Background(), "base-1")
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Empty(t, db.execs)
}
