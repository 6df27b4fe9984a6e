package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KLH-F-2025/campus-safety-service/internal/events"
	"github.com/KLH-F-2025/campus-safety-service/internal/models"
)

func TestComplaintService_Submit(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.complaintService()
	ctx := context.Background()

	complaint, err := svc.Submit(ctx, testStudent, "Hostel wifi down", "No connectivity in block C since Monday")
	require.NoError(t, err)

	assert.NotEmpty(t, complaint.ID)
	assert.Equal(t, models.ComplaintPending, complaint.Status)
	assert.NotZero(t, complaint.Timestamp)

	raw, err := env.store.Get(ctx, "complaints/"+complaint.ID)
	require.NoError(t, err)
	var stored models.Complaint
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "Hostel wifi down", stored.Subject)
	assert.Equal(t, testStudent.RollNumber, stored.Student.RollNumber)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventComplaintSubmitted, published[0].Type)
}

func TestComplaintService_Review(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.complaintService()
	ctx := context.Background()

	complaint, err := svc.Submit(ctx, testStudent, "Library hours", "Reading hall closes too early")
	require.NoError(t, err)
	env.publisher.ClearEvents()

	require.NoError(t, svc.Review(ctx, complaint.ID))

	raw, err := env.store.Get(ctx, "complaints/"+complaint.ID)
	require.NoError(t, err)
	var stored models.Complaint
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, models.ComplaintReviewed, stored.Status)
	assert.Equal(t, "Library hours", stored.Subject)

	published := env.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventComplaintReviewed, published[0].Type)
}

func TestComplaintService_ReviewTwiceIsHarmless(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.complaintService()
	ctx := context.Background()

	complaint, err := svc.Submit(ctx, testStudent, "Canteen", "Queue management")
	require.NoError(t, err)

	require.NoError(t, svc.Review(ctx, complaint.ID))
	require.NoError(t, svc.Review(ctx, complaint.ID))
}

func TestComplaintService_ReviewUnknown(t *testing.T) {
	env := setupTestEnv(t)
	svc := env.complaintService()

	err := svc.Review(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrComplaintNotFound)
}
