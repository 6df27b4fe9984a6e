package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
)

func TestNewAlertTriggeredEvent(t *testing.T) {
	alert := &models.SOSAlert{
		ID:              "a1",
		Type:            models.EmergencyMedical,
		Location:        models.DefaultLocation,
		Timestamp:       1700000000000,
		Status:          models.AlertActive,
		IsWitnessReport: true,
		Student:         models.StudentProfile{Name: "Rahul Sharma", RollNumber: "2420030098"},
	}

	event := NewAlertTriggeredEvent(alert)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventAlertTriggered, event.Type)
	assert.Equal(t, "campus-safety-service", event.Source)
	assert.Equal(t, "1.0", event.Version)

	data, ok := event.Data.(AlertTriggeredEvent)
	require.True(t, ok)
	assert.Equal(t, "a1", data.AlertID)
	assert.Equal(t, models.EmergencyMedical, data.EmergencyType)
	assert.True(t, data.IsWitnessReport)
	assert.Equal(t, int64(1700000000000), data.TriggeredAt)
}

func TestEventIDsAreUnique(t *testing.T) {
	a := NewAlertResolvedEvent("a1", "done", 1)
	b := NewAlertResolvedEvent("a1", "done", 1)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	require.NoError(t, publisher.PublishSafetyEvent(ctx, NewComplaintReviewedEvent("c1")))
	require.NoError(t, publisher.PublishSafetyEvent(ctx, NewComplaintReviewedEvent("c2")))

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, EventComplaintReviewed, published[0].Type)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())

	require.NoError(t, publisher.Close())
}
