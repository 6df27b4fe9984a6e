package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/KLH-F-2025/campus-safety-service/internal/events"
	"github.com/KLH-F-2025/campus-safety-service/internal/store"
)

type testEnv struct {
	store     store.Client
	publisher *events.MockEventPublisher
	logger    *slog.Logger
}

func setupTestEnv(t *testing.T) *testEnv {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		store:     store.NewRedisStore(client, logger),
		publisher: events.NewMockEventPublisher(logger),
		logger:    logger,
	}
}

func (e *testEnv) authService() AuthService {
	return NewAuthService(e.store, NewNopAuditRecorder(e.logger), e.logger, DefaultRetryPolicy)
}

func (e *testEnv) alertService() AlertService {
	return NewAlertService(e.store, e.publisher, NewNopAuditRecorder(e.logger), e.logger, DefaultRetryPolicy)
}

func (e *testEnv) complaintService() ComplaintService {
	return NewComplaintService(e.store, e.publisher, NewNopAuditRecorder(e.logger), e.logger, DefaultRetryPolicy)
}

func (e *testEnv) studentService() StudentService {
	return NewStudentService(e.store, NewNopAuditRecorder(e.logger), e.logger, DefaultRetryPolicy)
}

func (e *testEnv) exportService() ExportService {
	return NewExportService(NewNopAuditRecorder(e.logger), e.logger)
}
