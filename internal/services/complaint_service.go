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

// ComplaintService handles the non-emergency grievance lifecycle.
type ComplaintService interface {
	// Submit creates a pending complaint and returns it with its assigned
	// id. Subject and description are validated non-empty by the caller.
	Submit(ctx context.Context, student models.StudentProfile, subject, description string) (*models.Complaint, error)

	// Review marks the complaint reviewed. Re-reviewing an already reviewed
	// complaint is a harmless no-op.
	Review(ctx context.Context, id string) error
}

type complaintService struct {
	store     store.Client
	publisher events.EventPublisher
	audit     AuditRecorder
	logger    *slog.Logger
	retry     RetryPolicy
}

func NewComplaintService(storeClient store.Client, publisher events.EventPublisher, audit AuditRecorder, logger *slog.Logger, retry RetryPolicy) ComplaintService {
	return &complaintService{
		store:     storeClient,
		publisher: publisher,
		audit:     audit,
		logger:    logger,
		retry:     retry,
	}
}

func (s *complaintService) Submit(ctx context.Context, student models.StudentProfile, subject, description string) (*models.Complaint, error) {
	complaint := models.Complaint{
		Student:     student,
		Subject:     subject,
		Description: description,
		Timestamp:   time.Now().UnixMilli(),
		Status:      models.ComplaintPending,
	}

	var id string
	err := s.retry.Do(ctx, s.logger, "create complaint", func(ctx context.Context) error {
		var err error
		id, err = s.store.Push(ctx, "complaints", complaint)
		return err
	})
	if err != nil {
		return nil, err
	}
	complaint.ID = id

	s.logger.Info("complaint submitted",
		"complaint_id", complaint.ID,
		"roll_number", student.RollNumber,
		"subject", subject)

	if err := s.publisher.PublishSafetyEvent(ctx, events.NewComplaintSubmittedEvent(&complaint)); err != nil {
		s.logger.Error("failed to publish complaint submitted event",
			"complaint_id", complaint.ID, "error", err)
	}
	s.audit.Record(ctx, models.AuditComplaintSubmitted, student.RollNumber, complaint.ID, map[string]any{
		"subject": subject,
	})

	return &complaint, nil
}

func (s *complaintService) Review(ctx context.Context, id string) error {
	complaint, err := s.getComplaint(ctx, id)
	if err != nil {
		return err
	}

	err = s.retry.Do(ctx, s.logger, "review complaint", func(ctx context.Context) error {
		return s.store.Update(ctx, "complaints/"+id, map[string]any{
			"status": models.ComplaintReviewed,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("complaint reviewed", "complaint_id", id)
	if err := s.publisher.PublishSafetyEvent(ctx, events.NewComplaintReviewedEvent(id)); err != nil {
		s.logger.Error("failed to publish complaint reviewed event",
			"complaint_id", id, "error", err)
	}
	s.audit.Record(ctx, models.AuditComplaintReviewed, complaint.Student.RollNumber, id, nil)
	return nil
}

func (s *complaintService) getComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	var raw json.RawMessage
	err := s.retry.Do(ctx, s.logger, "read complaint", func(ctx context.Context) error {
		var err error
		raw, err = s.store.Get(ctx, "complaints/"+id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("complaint %s: %w", id, ErrComplaintNotFound)
	}

	var complaint models.Complaint
	if err := json.Unmarshal(raw, &complaint); err != nil {
		return nil, fmt.Errorf("decode complaint %s: %w", id, err)
	}
	complaint.ID = id
	return &complaint, nil
}
