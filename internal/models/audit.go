package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEventType string

const (
	AuditUserLogin          AuditEventType = "user_login"
	AuditLoginRejected      AuditEventType = "login_rejected"
	AuditUsersSeeded        AuditEventType = "users_seeded"
	AuditAlertTriggered     AuditEventType = "alert_triggered"
	AuditAlertDispatched    AuditEventType = "alert_dispatched"
	AuditAlertResolved      AuditEventType = "alert_resolved"
	AuditComplaintSubmitted AuditEventType = "complaint_submitted"
	AuditComplaintReviewed  AuditEventType = "complaint_reviewed"
	AuditStudentUpserted    AuditEventType = "student_upserted"
	AuditStudentDeleted     AuditEventType = "student_deleted"
	AuditDataExported       AuditEventType = "data_exported"
)

// AuditLog records one domain operation. The document store itself keeps no
// history, so this table is the only trail of who did what and when.
type AuditLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	EventType AuditEventType `json:"event_type" gorm:"not null;index"`

	// Actor is the login identifier or roll number that performed the
	// operation; "system" for startup seeding.
	Actor string `json:"actor" gorm:"size:255;index"`

	// TargetID is the store key of the affected record, if any.
	TargetID string `json:"target_id" gorm:"size:255;index"`

	Detail datatypes.JSON `json:"detail" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
