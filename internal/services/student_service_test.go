package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
)

func TestStudentService_UpsertCreates(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.studentService()
	ctx := context.Background()

	profile := models.StudentProfile{
		Name:       "Anil Kumar",
		RollNumber: "2420030123",
		Branch:     "ECE",
		Year:       "2nd Year",
		Phone:      "+91 98765 00123",
	}
	require.NoError(t, svc.Upsert(ctx, profile))

	raw, err := env.store.Get(ctx, "users/2420030123@klh,edu,in")
	require.NoError(t, err)
	require.NotNil(t, raw)

	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, models.DefaultPassword, user.Password)
	require.NotNil(t, user.Profile)
	assert.Equal(t, profile, *user.Profile)
}

func TestStudentService_UpsertPatchesProfileOnly(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.studentService()
	ctx := context.Background()

	profile := models.StudentProfile{
		Name:       "Anil Kumar",
		RollNumber: "2420030123",
		Branch:     "ECE",
		Year:       "2nd Year",
	}
	require.NoError(t, svc.Upsert(ctx, profile))

	// A changed password must survive later profile edits.
	require.NoError(t, env.store.Update(ctx, "users/2420030123@klh,edu,in", map[string]any{
		"password": "personal-secret",
	}))

	profile.Branch = "CSE"
	profile.Phone = "+91 98765 00123"
	require.NoError(t, svc.Upsert(ctx, profile))

	raw, err := env.store.Get(ctx, "users/2420030123@klh,edu,in")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, "personal-secret", user.Password)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "CSE", user.Profile.Branch)
	assert.Equal(t, "+91 98765 00123", user.Profile.Phone)
}

func TestStudentService_Delete(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.studentService()
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, models.StudentProfile{
		Name:       "Anil Kumar",
		RollNumber: "2420030123",
	}))
	require.NoError(t, svc.Delete(ctx, "2420030123"))

	raw, err := env.store.Get(ctx, "users/2420030123@klh,edu,in")
	require.NoError(t, err)
	assert.Nil(t, raw)

	// Deleting an absent roll number is not an error.
	require.NoError(t, svc.Delete(ctx, "2420030123"))
}

func TestStudentService_ListFiltersAdmins(t *testing.T) {
	env := setupTestEnv(t)
	authSvc := env.authService()
	svc := env.studentService()
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, authSvc.SeedDefaultUsers(ctx))

	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	rolls := []string{list[0].RollNumber, list[1].RollNumber}
	assert.ElementsMatch(t, []string{"2420030098", "2420030045"}, rolls)
}
