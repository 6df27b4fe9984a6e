package models

type EmergencyType string

const (
	EmergencyMedical  EmergencyType = "Medical"
	EmergencyFire     EmergencyType = "Fire"
	EmergencyViolence EmergencyType = "Violence"
	EmergencyRescue   EmergencyType = "Rescue"
	EmergencyAccident EmergencyType = "Accident"
	EmergencyOther    EmergencyType = "Other"
)

// EmergencyTypes lists the fixed enumeration in display order.
var EmergencyTypes = []EmergencyType{
	EmergencyMedical,
	EmergencyFire,
	EmergencyViolence,
	EmergencyRescue,
	EmergencyAccident,
	EmergencyOther,
}

func (t EmergencyType) Valid() bool {
	for _, known := range EmergencyTypes {
		if t == known {
			return true
		}
	}
	return false
}

type AlertStatus string

const (
	AlertActive     AlertStatus = "active"
	AlertDispatched AlertStatus = "dispatched"
	AlertResolved   AlertStatus = "resolved"
)

// Terminal reports whether no further status transition is allowed.
func (s AlertStatus) Terminal() bool {
	return s == AlertResolved
}

// CanTransition enforces the forward-only lifecycle:
// active -> dispatched -> resolved, or active -> resolved directly.
func (s AlertStatus) CanTransition(to AlertStatus) bool {
	switch s {
	case AlertActive:
		return to == AlertDispatched || to == AlertResolved
	case AlertDispatched:
		return to == AlertResolved
	default:
		return false
	}
}

// Location is a latitude/longitude pair reported with an alert.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DefaultLocation is the campus fallback used when a caller cannot provide
// coordinates (location access denied). Deliberate behavior, not an error.
var DefaultLocation = Location{Lat: 17.3850, Lng: 78.4867}

// SOSAlert is the record stored at alerts/{id}. Timestamps are unix
// milliseconds. The id is assigned by the store on creation and is never
// persisted inside the value itself; the mirror stamps it after reads.
type SOSAlert struct {
	ID              string         `json:"id,omitempty"`
	Student         StudentProfile `json:"student"`
	Type            EmergencyType  `json:"type"`
	Location        Location       `json:"location"`
	Timestamp       int64          `json:"timestamp"`
	Status          AlertStatus    `json:"status"`
	IsWitnessReport bool           `json:"isWitnessReport,omitempty"`

	// Set exactly once, at the resolved transition.
	ResolutionReport string `json:"resolutionReport,omitempty"`
	ResolvedAt       int64  `json:"resolvedAt,omitempty"`
}
