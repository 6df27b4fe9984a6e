package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
)

func setupAuditDB(t *testing.T) (AuditRecorder, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewAuditService(gdb, slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

func TestAuditService_RecordInsertsRow(t *testing.T) {
	recorder, mock := setupAuditDB(t)

	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WithArgs(models.AuditAlertTriggered, "2420030098", "alert-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	recorder.Record(context.Background(), models.AuditAlertTriggered, "2420030098", "alert-1", map[string]any{
		"emergency_type": "Medical",
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_RecordWithoutDetail(t *testing.T) {
	recorder, mock := setupAuditDB(t)

	// A nil detail is rendered as an inline NULL, not a bound argument.
	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WithArgs(models.AuditStudentDeleted, "2420030123", "users/2420030123@klh,edu,in", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	recorder.Record(context.Background(), models.AuditStudentDeleted, "2420030123", "users/2420030123@klh,edu,in", nil)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditService_InsertFailureDoesNotPanic(t *testing.T) {
	recorder, mock := setupAuditDB(t)

	mock.ExpectQuery(`INSERT INTO "audit_logs"`).
		WillReturnError(assert.AnError)

	// Recording is best-effort; a database failure must stay contained.
	recorder.Record(context.Background(), models.AuditUserLogin, "admin@klh.edu.in", "", nil)

	assert.NoError(t, mock.ExpectationsWereMet())
}
