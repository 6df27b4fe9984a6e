package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/KLH-F-2025/campus-safety-service/internal/store"
)

// AuthService authenticates against the user records in the document store
// and seeds the fixed first-run accounts.
type AuthService interface {
	// Login tries the identifier as a sanitized-email key first, then falls
	// back to scanning all user records for a matching roll number. The
	// returned error never distinguishes an unknown identifier from a wrong
	// password.
	Login(ctx context.Context, identifier, password string) (*models.LoginResult, error)

	// SeedDefaultUsers writes the fixed admin and demo student records on
	// first run; a no-op once the admin record exists.
	SeedDefaultUsers(ctx context.Context) error
}

type authService struct {
	store  store.Client
	audit  AuditRecorder
	logger *slog.Logger
	retry  RetryPolicy
}

func NewAuthService(storeClient store.Client, audit AuditRecorder, logger *slog.Logger, retry RetryPolicy) AuthService {
	return &authService{
		store:  storeClient,
		audit:  audit,
		logger: logger,
		retry:  retry,
	}
}

const adminEmail = "admin@" + models.EmailDomain

// seedUsers are written once, on first run. Passwords are plaintext for
// parity with the existing data set.
var seedUsers = []struct {
	email string
	user  models.User
}{
	{
		email: adminEmail,
		user:  models.User{Role: models.RoleAdmin, Password: models.DefaultPassword},
	},
	{
		email: "2420030098@" + models.EmailDomain,
		user: models.User{
			Role:     models.RoleStudent,
			Password: models.DefaultPassword,
			Profile: &models.StudentProfile{
				Name:       "Rahul Sharma",
				RollNumber: "2420030098",
				Branch:     "CSE",
				Year:       "1st Year",
				Phone:      "+91 98765 00098",
			},
		},
	},
	{
		email: "2420030045@" + models.EmailDomain,
		user: models.User{
			Role:     models.RoleStudent,
			Password: models.DefaultPassword,
			Profile: &models.StudentProfile{
				Name:       "Priya Singh",
				RollNumber: "2420030045",
				Branch:     "CSE",
				Year:       "1st Year",
				Phone:      "+91 98765 00045",
			},
		},
	},
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*models.LoginResult, error) {
	// Direct key lookup on the sanitized email form.
	user, err := s.getUser(ctx, models.SanitizeEmail(identifier))
	if err != nil {
		return nil, err
	}
	if user != nil && user.Password == password {
		return s.loginMatched(ctx, identifier, user), nil
	}

	// Fallback: linear scan for a roll-number match. Acceptable while the
	// user collection stays small.
	users, err := s.getAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, candidate := range users {
		if candidate.Profile != nil && candidate.Profile.RollNumber == identifier && candidate.Password == password {
			return s.loginMatched(ctx, identifier, &candidate), nil
		}
	}

	s.audit.Record(ctx, models.AuditLoginRejected, identifier, "", nil)
	return nil, ErrInvalidCredentials
}

func (s *authService) loginMatched(ctx context.Context, identifier string, user *models.User) *models.LoginResult {
	s.logger.Info("login succeeded", "identifier", identifier, "role", user.Role)
	s.audit.Record(ctx, models.AuditUserLogin, identifier, "", map[string]any{
		"role": user.Role,
	})
	return &models.LoginResult{Role: user.Role, Profile: user.Profile}
}

func (s *authService) SeedDefaultUsers(ctx context.Context) error {
	existing, err := s.getUser(ctx, models.SanitizeEmail(adminEmail))
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	for _, seed := range seedUsers {
		path := "users/" + models.SanitizeEmail(seed.email)
		err := s.retry.Do(ctx, s.logger, "seed user", func(ctx context.Context) error {
			return s.store.Set(ctx, path, seed.user)
		})
		if err != nil {
			return err
		}
	}

	s.logger.Info("seeded default users", "count", len(seedUsers))
	s.audit.Record(ctx, models.AuditUsersSeeded, "system", "", map[string]any{
		"count": len(seedUsers),
	})
	return nil
}

func (s *authService) getUser(ctx context.Context, sanitizedEmail string) (*models.User, error) {
	var raw json.RawMessage
	err := s.retry.Do(ctx, s.logger, "read user", func(ctx context.Context) error {
		var err error
		raw, err = s.store.Get(ctx, "users/"+sanitizedEmail)
		return err
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}
	return &user, nil
}

func (s *authService) getAllUsers(ctx context.Context) (map[string]models.User, error) {
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
		return nil, nil
	}

	var users map[string]models.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode user collection: %w", err)
	}
	return users, nil
}
