package postgresadapter

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"jornada/contexts/strategy-journey/ranking-engine/domain/entities"
	domainerrors "jornada/contexts/strategy-journey/ranking-engine/domain/errors"
	"jornada/contexts/strategy-journey/ranking-engine/ports"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return NewRepository(gdb, nil), mock
}

func sampleSaveInput() ports.SaveRankingInput {
	completedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return ports.SaveRankingInput{
		SessionID: "session-1",
		PillarID:  "pillar-1",
		ActionIDs: []string{"A", "B"},
		Order: []entities.RankedAction{
			{ActionID: "B", Rank: 1},
			{ActionID: "A", Rank: 2},
		},
		CompletedAt: completedAt,
		Events: []ports.EventEnvelope{{
			EventID:    "evt-1",
			EventType:  "pillar.completed",
			OccurredAt: completedAt,
			Data:       []byte(`{"session_id":"session-1"}`),
		}},
	}
}

func TestSaveRankingCommitsAllStepsInOneTransaction(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "user_priorities"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "user_priorities"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "session_pillars"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "ranking_outbox"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveRanking(context.Background(), sampleSaveInput())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRankingRollsBackWhenCompletionFails(t *testing.T) {
	repo, mock := newMockRepository(t)
	failure := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "user_priorities"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "user_priorities"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "session_pillars"`)).
		WillReturnError(failure)
	mock.ExpectRollback()

	err := repo.SaveRanking(context.Background(), sampleSaveInput())
	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRankingMapsUniqueViolationToConflict(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "user_priorities"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "user_priorities"`)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err := repo.SaveRanking(context.Background(), sampleSaveInput())
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPillarNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "pillars"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "color", "icon"}))

	_, err := repo.GetPillar(context.Background(), "missing")
	assert.ErrorIs(t, err, domainerrors.ErrPillarNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPrioritiesSkipsQueryForEmptyCatalog(t *testing.T) {
	repo, mock := newMockRepository(t)

	items, err := repo.ListPriorities(context.Background(), "session-1", nil)
	assert.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPrioritiesReturnsRankOrder(t *testing.T) {
	repo, mock := newMockRepository(t)

	rows := sqlmock.NewRows([]string{"id", "session_id", "action_id", "rank", "created_at"}).
		AddRow("p1", "session-1", "B", 1, time.Now()).
		AddRow("p2", "session-1", "A", 2, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "user_priorities"`)).
		WillReturnRows(rows)

	items, err := repo.ListPriorities(context.Background(), "session-1", []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, []entities.RankedAction{{ActionID: "B", Rank: 1}, {ActionID: "A", Rank: 2}}, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShareCodeGeneratorAlphabet(t *testing.T) {
	code, err := ShareCodeGenerator{}.NewShareCode(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, shareCodeLength)
	assert.Regexp(t, `^[A-HJ-NP-Z2-9]+$`, code)
}

func TestReleaseEventDeletesReservation(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "ranking_event_dedup" WHERE event_id = $1`)).
		WithArgs("evt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ReleaseEvent(context.Background(), " evt-1 "))
	assert.NoError(t, mock.ExpectationsWereMet())
}
