package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/KLH-F-2025/campus-safety-service/internal/events"
	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/KLH-F-2025/campus-safety-service/internal/store"
)

// AlertService drives the SOS alert lifecycle. All writes go to the document
// store; the alert mirror catches up through its standing subscription, so
// callers must not expect their own write in the very next snapshot they
// read.
type AlertService interface {
	// Trigger creates an active alert and returns it with its assigned id.
	Trigger(ctx context.Context, student models.StudentProfile, emergency models.EmergencyType, location models.Location, isWitness bool) (*models.SOSAlert, error)

	// Dispatch marks responders as sent. Rejects alerts already resolved.
	Dispatch(ctx context.Context, id string) error

	// Resolve closes the alert with a report. The report is validated
	// non-empty by the caller, not here. Rejects alerts already resolved.
	Resolve(ctx context.Context, id, report string) error
}

type alertService struct {
	store     store.Client
	publisher events.EventPublisher
	audit     AuditRecorder
	logger    *slog.Logger
	retry     RetryPolicy
}

func NewAlertService(storeClient store.Client, publisher events.EventPublisher, audit AuditRecorder, logger *slog.Logger, retry RetryPolicy) AlertService {
	return &alertService{
		store:     storeClient,
		publisher: publisher,
		audit:     audit,
		logger:    logger,
		retry:     retry,
	}
}

func (s *alertService) Trigger(ctx context.Context, student models.StudentProfile, emergency models.EmergencyType, location models.Location, isWitness bool) (*models.SOSAlert, error) {
	alert := models.SOSAlert{
		Student:         student,
		Type:            emergency,
		Location:        location,
		Timestamp:       time.Now().UnixMilli(),
		Status:          models.AlertActive,
		IsWitnessReport: isWitness,
	}

	var id string
	err := s.retry.Do(ctx, s.logger, "create alert", func(ctx context.Context) error {
		var err error
		id, err = s.store.Push(ctx, "alerts", alert)
		return err
	})
	if err != nil {
		return nil, err
	}
	alert.ID = id

	s.logger.Info("SOS alert triggered",
		"alert_id", alert.ID,
		"emergency_type", alert.Type,
		"roll_number", student.RollNumber,
		"witness", isWitness)

	if err := s.publisher.PublishSafetyEvent(ctx, events.NewAlertTriggeredEvent(&alert)); err != nil {
		// The alert is stored; responders still see it through the mirror.
		s.logger.Error("failed to publish alert triggered event",
			"alert_id", alert.ID, "error", err)
	}
	s.audit.Record(ctx, models.AuditAlertTriggered, student.RollNumber, alert.ID, map[string]any{
		"emergency_type": alert.Type,
		"witness":        isWitness,
	})

	return &alert, nil
}

func (s *alertService) Dispatch(ctx context.Context, id string) error {
	alert, err := s.getAlert(ctx, id)
	if err != nil {
		return err
	}
	if alert.Status.Terminal() {
		return fmt.Errorf("dispatch alert %s: %w", id, ErrAlertAlreadyResolved)
	}

	err = s.retry.Do(ctx, s.logger, "dispatch alert", func(ctx context.Context) error {
		return s.store.Update(ctx, "alerts/"+id, map[string]any{
			"status": models.AlertDispatched,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("alert dispatched", "alert_id", id)
	alert.Status = models.AlertDispatched
	if err := s.publisher.PublishSafetyEvent(ctx, events.NewAlertDispatchedEvent(alert)); err != nil {
		s.logger.Error("failed to publish alert dispatched event",
			"alert_id", id, "error", err)
	}
	s.audit.Record(ctx, models.AuditAlertDispatched, alert.Student.RollNumber, id, nil)
	return nil
}

func (s *alertService) Resolve(ctx context.Context, id, report string) error {
	alert, err := s.getAlert(ctx, id)
	if err != nil {
		return err
	}
	if alert.Status.Terminal() {
		return fmt.Errorf("resolve alert %s: %w", id, ErrAlertAlreadyResolved)
	}

	resolvedAt := time.Now().UnixMilli()
	err = s.retry.Do(ctx, s.logger, "resolve alert", func(ctx context.Context) error {
		return s.store.Update(ctx, "alerts/"+id, map[string]any{
			"status":           models.AlertResolved,
			"resolutionReport": report,
			"resolvedAt":       resolvedAt,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("alert resolved", "alert_id", id)
	if err := s.publisher.PublishSafetyEvent(ctx, events.NewAlertResolvedEvent(id, report, resolvedAt)); err != nil {
		s.logger.Error("failed to publish alert resolved event",
			"alert_id", id, "error", err)
	}
	s.audit.Record(ctx, models.AuditAlertResolved, alert.Student.RollNumber, id, map[string]any{
		"resolution_report": report,
	})
	return nil
}

func (s *alertService) getAlert(ctx context.Context, id string) (*models.SOSAlert, error) {
	var raw json.RawMessage
	err := s.retry.Do(ctx, s.logger, "read alert", func(ctx context.Context) error {
		var err error
		raw, err = s.store.Get(ctx, "alerts/"+id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("alert %s: %w", id, ErrAlertNotFound)
	}

	var alert models.SOSAlert
	if err := json.Unmarshal(raw, &alert); err != nil {
		return nil, fmt.Errorf("decode alert %s: %w", id, err)
	}
	alert.ID = id
	return &alert, nil
}
