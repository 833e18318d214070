package schedule

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupScheduleMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })
	return NewRepository(sqlxDB), mock
}

var spColumns = []string{
	"id", "client_program_id", "client_id", "program_name", "scheduled_date",
	"completed", "completed_at", "notes", "created_at",
}

func TestRepository_CreateMany_OneRowPerDate(t *testing.T) {
	repo, mock := setupScheduleMock(t)
	now := time.Now()
	d1, d2 := date("2026-01-05"), date("2026-01-12")

	// d1 is already on the calendar as row 90; it still gets its own new row.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scheduled_programs (client_program_id, scheduled_date) VALUES ($1, $2::date) RETURNING id")).
		WithArgs(20, d1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(100))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scheduled_programs (client_program_id, scheduled_date) VALUES ($1, $2::date) RETURNING id")).
		WithArgs(20, d2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduled_programs sp JOIN client_programs cp ON cp.id = sp.client_program_id JOIN programs p ON p.id = cp.program_id WHERE sp.id IN ($1,$2) ORDER BY sp.scheduled_date ASC, sp.id ASC")).
		WithArgs(100, 101).
		WillReturnRows(sqlmock.NewRows(spColumns).
			AddRow(100, 20, 5, "Full Body", d1, false, nil, nil, now).
			AddRow(101, 20, 5, "Full Body", d2, false, nil, nil, now))

	list, err := repo.CreateMany(context.Background(), 20, []time.Time{d1, d2})

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []int{100, 101}, []int{list[0].ID, list[1].ID})
	assert.Equal(t, "Full Body", list[0].ProgramName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateMany_RollsBack(t *testing.T) {
	repo, mock := setupScheduleMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO scheduled_programs")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.CreateMany(context.Background(), 20, []time.Time{date("2026-01-05")})

	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List_InstructorScope(t *testing.T) {
	repo, mock := setupScheduleMock(t)
	from, to := date("2026-01-01"), date("2026-01-31")

	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = cp.client_id WHERE u.instructor_id = $1 AND sp.scheduled_date >= $2 AND sp.scheduled_date <= $3")).
		WithArgs(1, from, to).
		WillReturnRows(sqlmock.NewRows(spColumns))

	list, err := repo.List(context.Background(), ListFilter{InstructorID: 1, From: &from, To: &to})

	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetCompleted_NotFound(t *testing.T) {
	repo, mock := setupScheduleMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_programs SET completed = $2")).
		WithArgs(9, true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.SetCompleted(context.Background(), 9, true)

	assert.ErrorIs(t, err, ErrScheduledNotFound)
}

func TestRepository_CompleteOn(t *testing.T) {
	repo, mock := setupScheduleMock(t)
	today := date("2026-01-07")

	mock.ExpectExec(regexp.QuoteMeta("WHERE client_program_id = $1 AND scheduled_date = $2::date AND NOT completed")).
		WithArgs(20, today).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.CompleteOn(context.Background(), 20, today)

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepository_Delete_NotFound(t *testing.T) {
	repo, mock := setupScheduleMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scheduled_programs WHERE id = $1")).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 9), ErrScheduledNotFound)
}
