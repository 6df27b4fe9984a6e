package models

type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "pending"
	ComplaintReviewed ComplaintStatus = "reviewed"
)

// Complaint is the record stored at complaints/{id}. The lifecycle is
// one-way: pending -> reviewed.
type Complaint struct {
	ID          string          `json:"id,omitempty"`
	Student     StudentProfile  `json:"student"`
	Subject     string          `json:"subject"`
	Description string          `json:"description"`
	Timestamp   int64           `json:"timestamp"`
	Status      ComplaintStatus `json:"status"`
}
