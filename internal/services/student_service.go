package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/KLH-F-2025/campus-safety-service/internal/store"
)

// StudentService maintains the student registry. Records are keyed by the
// email derived from the roll number, so the roll number is effectively the
// immutable identity: "editing" it through Upsert creates a second record
// rather than renaming the first. Deleting never cascades; historical alerts
// and complaints keep their embedded profile snapshots.
type StudentService interface {
	// Upsert patches the profile subtree of an existing record, leaving
	// password and role untouched, or creates a fresh student record with
	// the default password.
	Upsert(ctx context.Context, profile models.StudentProfile) error

	// Delete removes the user record for the roll number.
	Delete(ctx context.Context, rollNumber string) error

	// List returns the profiles of all student records. No order contract.
	List(ctx context.Context) ([]models.StudentProfile, error)
}

type studentService struct {
	store  store.Client
	audit  AuditRecorder
	logger *slog.Logger
	retry  RetryPolicy
}

func NewStudentService(storeClient store.Client, audit AuditRecorder, logger *slog.Logger, retry RetryPolicy) StudentService {
	return &studentService{
		store:  storeClient,
		audit:  audit,
		logger: logger,
		retry:  retry,
	}
}

func (s *studentService) Upsert(ctx context.Context, profile models.StudentProfile) error {
	path := "users/" + models.DerivedEmail(profile.RollNumber)

	var existing json.RawMessage
	err := s.retry.Do(ctx, s.logger, "read user", func(ctx context.Context) error {
		var err error
		existing, err = s.store.Get(ctx, path)
		return err
	})
	if err != nil {
		return err
	}

	if existing != nil {
		err = s.retry.Do(ctx, s.logger, "update student profile", func(ctx context.Context) error {
			return s.store.Update(ctx, path+"/profile", map[string]any{
				"name":       profile.Name,
				"rollNumber": profile.RollNumber,
				"branch":     profile.Branch,
				"year":       profile.Year,
				"phone":      profile.Phone,
			})
		})
	} else {
		err = s.retry.Do(ctx, s.logger, "create student", func(ctx context.Context) error {
			return s.store.Set(ctx, path, models.User{
				Role:     models.RoleStudent,
				Password: models.DefaultPassword,
				Profile:  &profile,
			})
		})
	}
	if err != nil {
		return err
	}

	s.logger.Info("student upserted",
		"roll_number", profile.RollNumber,
		"created", existing == nil)
	s.audit.Record(ctx, models.AuditStudentUpserted, profile.RollNumber, path, map[string]any{
		"created": existing == nil,
	})
	return nil
}

func (s *studentService) Delete(ctx context.Context, rollNumber string) error {
	path := "users/" + models.DerivedEmail(rollNumber)
	err := s.retry.Do(ctx, s.logger, "delete student", func(ctx context.Context) error {
		return s.store.Delete(ctx, path)
	})
	if err != nil {
		return err
	}

	s.logger.Info("student deleted", "roll_number", rollNumber)
	s.audit.Record(ctx, models.AuditStudentDeleted, rollNumber, path, nil)
	return nil
}

func (s *studentService) List(ctx context.Context) ([]models.StudentProfile, error) {
	var raw json.RawMessage
	err := s.retry.Do(ctx, s.logger, "read users", func(ctx context.Context) error {
		var err error
		raw, err = s.store.Get(ctx, "users")
		return err
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []models.StudentProfile{}, nil
	}

	var users map[string]models.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode user collection: %w", err)
	}

	profiles := make([]models.StudentProfile, 0, len(users))
	for _, user := range users {
		if user.Role == models.RoleStudent && user.Profile != nil {
			profiles = append(profiles, *user.Profile)
		}
	}
	return profiles, nil
}
