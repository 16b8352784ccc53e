package apps

import (
	"time"

	"jobdesk.org/internal/identity"
)

// Status tracks where an application sits in the hiring pipeline. Any
// status may transition to any other; there is no forward-only machine.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ValidStatus reports whether s is one of the known pipeline statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Application links an applicant to a job posting. Applicant is populated
// on read paths that attach the user summary; it is never persisted.
type Application struct {
	ID          string            `json:"id"`
	JobID       string            `json:"jobId"`
	ApplicantID string            `json:"applicantId"`
	CoverLetter string            `json:"coverLetter,omitempty"`
	ResumeURL   string            `json:"resumeUrl,omitempty"`
	Status      Status            `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	Applicant   *identity.Summary `json:"applicant,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// ApplyInput carries the applicant-provided fields.
type ApplyInput struct {
	CoverLetter string
	ResumeURL   string
}
