package events

import (
	"time"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/google/uuid"
)

// EventType represents different types of safety events
type EventType string

const (
	// Alert lifecycle events
	EventAlertTriggered  EventType = "alert.triggered"
	EventAlertDispatched EventType = "alert.dispatched"
	EventAlertResolved   EventType = "alert.resolved"

	// Complaint lifecycle events
	EventComplaintSubmitted EventType = "complaint.submitted"
	EventComplaintReviewed  EventType = "complaint.reviewed"
)

// SafetyEvent is the base event structure for all safety events
type SafetyEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Data      interface{}    `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Alert event payloads

type AlertTriggeredEvent struct {
	AlertID         string                `json:"alert_id"`
	EmergencyType   models.EmergencyType  `json:"emergency_type"`
	Student         models.StudentProfile `json:"student"`
	Location        models.Location       `json:"location"`
	IsWitnessReport bool                  `json:"is_witness_report"`
	TriggeredAt     int64                 `json:"triggered_at"`
}

type AlertDispatchedEvent struct {
	AlertID       string               `json:"alert_id"`
	EmergencyType models.EmergencyType `json:"emergency_type"`
	Location      models.Location      `json:"location"`
	DispatchedAt  time.Time            `json:"dispatched_at"`
}

type AlertResolvedEvent struct {
	AlertID          string `json:"alert_id"`
	ResolutionReport string `json:"resolution_report"`
	ResolvedAt       int64  `json:"resolved_at"`
}

// Complaint event payloads

type ComplaintSubmittedEvent struct {
	ComplaintID string                `json:"complaint_id"`
	Subject     string                `json:"subject"`
	Student     models.StudentProfile `json:"student"`
	SubmittedAt int64                 `json:"submitted_at"`
}

type ComplaintReviewedEvent struct {
	ComplaintID string    `json:"complaint_id"`
	ReviewedAt  time.Time `json:"reviewed_at"`
}

// GenerateEventID returns a unique identifier for a new event
func GenerateEventID() string {
	return uuid.NewString()
}

func newEvent(eventType EventType, data interface{}) *SafetyEvent {
	return &SafetyEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "campus-safety-service",
		Version:   "1.0",
		Data:      data,
	}
}

// NewAlertTriggeredEvent creates the event published when an SOS alert is raised
func NewAlertTriggeredEvent(alert *models.SOSAlert) *SafetyEvent {
	return newEvent(EventAlertTriggered, AlertTriggeredEvent{
		AlertID:         alert.ID,
		EmergencyType:   alert.Type,
		Student:         alert.Student,
		Location:        alert.Location,
		IsWitnessReport: alert.IsWitnessReport,
		TriggeredAt:     alert.Timestamp,
	})
}

// NewAlertDispatchedEvent creates the event published when responders are dispatched
func NewAlertDispatchedEvent(alert *models.SOSAlert) *SafetyEvent {
	return newEvent(EventAlertDispatched, AlertDispatchedEvent{
		AlertID:       alert.ID,
		EmergencyType: alert.Type,
		Location:      alert.Location,
		DispatchedAt:  time.Now(),
	})
}

// NewAlertResolvedEvent creates the event published when an alert is closed out
func NewAlertResolvedEvent(alertID, report string, resolvedAt int64) *SafetyEvent {
	return newEvent(EventAlertResolved, AlertResolvedEvent{
		AlertID:          alertID,
		ResolutionReport: report,
		ResolvedAt:       resolvedAt,
	})
}

// NewComplaintSubmittedEvent creates the event published for a new grievance
func NewComplaintSubmittedEvent(complaint *models.Complaint) *SafetyEvent {
	return newEvent(EventComplaintSubmitted, ComplaintSubmittedEvent{
		ComplaintID: complaint.ID,
		Subject:     complaint.Subject,
		Student:     complaint.Student,
		SubmittedAt: complaint.Timestamp,
	})
}

// NewComplaintReviewedEvent creates the event published when a grievance is reviewed
func NewComplaintReviewedEvent(complaintID string) *SafetyEvent {
	return newEvent(EventComplaintReviewed, ComplaintReviewedEvent{
		ComplaintID: complaintID,
		ReviewedAt:  time.Now(),
	})
}
