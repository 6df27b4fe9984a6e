package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditRecorder appends one row per domain operation. Recording is
// best-effort: a failed append is logged and never fails the operation that
// produced it.
type AuditRecorder interface {
	Record(ctx context.Context, event models.AuditEventType, actor, targetID string, detail map[string]any)
}

type auditService struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewAuditService returns a recorder backed by the audit_logs table.
func NewAuditService(db *gorm.DB, logger *slog.Logger) AuditRecorder {
	return &auditService{
		db:     db,
		logger: logger,
	}
}

// MigrateAuditSchema creates or updates the audit_logs table.
func MigrateAuditSchema(db *gorm.DB) error {
	return db.AutoMigrate(&models.AuditLog{})
}

func (s *auditService) Record(ctx context.Context, event models.AuditEventType, actor, targetID string, detail map[string]any) {
	var payload datatypes.JSON
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err != nil {
			s.logger.Warn("dropping unserializable audit detail",
				"event_type", event, "error", err)
		} else {
			payload = datatypes.JSON(raw)
		}
	}

	entry := models.AuditLog{
		EventType: event,
		Actor:     actor,
		TargetID:  targetID,
		Detail:    payload,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.logger.Error("failed to record audit entry",
			"event_type", event,
			"actor", actor,
			"target_id", targetID,
			"error", err)
	}
}

// nopAuditRecorder is used when no database is configured.
type nopAuditRecorder struct {
	logger *slog.Logger
}

// NewNopAuditRecorder returns a recorder that only logs at debug level.
func NewNopAuditRecorder(logger *slog.Logger) AuditRecorder {
	return &nopAuditRecorder{logger: logger}
}

func (n *nopAuditRecorder) Record(_ context.Context, event models.AuditEventType, actor, targetID string, _ map[string]any) {
	n.logger.Debug("audit disabled, dropping entry",
		"event_type", event,
		"actor", actor,
		"target_id", targetID)
}
