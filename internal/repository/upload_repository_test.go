package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/forgottenfelines/tnr-intake-api/internal/models"
	appErrors "github.com/forgottenfelines/tnr-intake-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func uploadRows(u *models.Upload) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "content_hash", "original_filename", "stored_filename", "size_bytes",
		"batch_id", "source_system", "source_table", "status", "error_message",
		"inline_content", "stored_inline", "uploaded_at",
	}).AddRow(u.ID, u.ContentHash, u.OriginalFilename, u.StoredFilename, u.SizeBytes,
		u.BatchID, u.SourceSystem, u.SourceTable, u.Status, u.ErrorMessage,
		u.InlineContent, u.StoredInline, u.UploadedAt)
}

func TestUploadRepositoryCreateAndFindByHash(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUploadRepository(db, time.Second)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO uploads")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	upload := &models.Upload{
		ContentHash:      "abc123",
		OriginalFilename: "appointments.csv",
		StoredFilename:   "clinichq_appointments_20260314T090000_abc123def456.csv",
		SizeBytes:        2048,
		SourceSystem:     models.SourceSystemClinicHQ,
		SourceTable:      "appointments",
	}
	require.NoError(t, repo.Create(context.Background(), upload))
	require.NotEmpty(t, upload.ID)
	require.Equal(t, models.UploadStatusPending, upload.Status)

	upload.UploadedAt = time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, content_hash")).
		WithArgs("abc123").
		WillReturnRows(uploadRows(upload))

	found, err := repo.FindByHash(context.Background(), "abc123")
	require.NoError(t, err)
	require.Equal(t, upload.ID, found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepositorySoftDeleteWrongState(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUploadRepository(db, time.Second)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE uploads SET status = 'deleted'")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), "upload-1", time.Hour)
	require.ErrorIs(t, err, appErrors.ErrWrongState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepositorySoftDeleteSuccess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUploadRepository(db, time.Second)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE uploads SET status = 'deleted'")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), "upload-1", time.Hour))
	require.NoError(t, mock.ExpectationsWereMet())
}

// A delete whose underlying exec never returns within the guard deadline must
// surface as lock contention, not wrong state.
func TestUploadRepositorySoftDeleteContention(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUploadRepository(db, 20*time.Millisecond)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE uploads SET status = 'deleted'")).
		WillDelayFor(time.Second).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SoftDelete(context.Background(), "upload-1", time.Hour)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, appErrors.ErrLockContention.Code, appErr.Code)
}

func TestUploadRepositoryResetProcessing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUploadRepository(db, time.Second)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE uploads SET status = 'failed'")).
		WithArgs("upload-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ResetProcessing(context.Background(), "upload-1"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE uploads SET status = 'failed'")).
		WithArgs("upload-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ResetProcessing(context.Background(), "upload-2")
	require.ErrorIs(t, err, appErrors.ErrWrongState)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUploadRepository(db, time.Second)
	upload := &models.Upload{
		ID:           "upload-1",
		ContentHash:  "abc",
		SourceSystem: models.SourceSystemAirtable,
		Status:       models.UploadStatusPending,
		UploadedAt:   time.Now(),
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, content_hash")).
		WithArgs(models.SourceSystemAirtable).
		WillReturnRows(uploadRows(upload))

	list, err := repo.List(context.Background(), models.UploadFilter{SourceSystem: models.SourceSystemAirtable})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "upload-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
