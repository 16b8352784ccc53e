package apps

import "context"

// Store describes persistence operations for applications. Implementations
// must enforce the unique (job, applicant) pair so duplicate detection is a
// single atomic insert.
type Store interface {
	// Create persists a new application. Returns ErrAlreadyApplied when the
	// applicant already applied to the job.
	Create(ctx context.Context, app *Application) error
	// Get returns ErrNotFound when no application matches.
	Get(ctx context.Context, id string) (*Application, error)
	// ListByJob returns the job's applications, newest first.
	ListByJob(ctx context.Context, jobID string) ([]Application, error)
	// ListByApplicant returns the user's applications, newest first.
	ListByApplicant(ctx context.Context, applicantID string) ([]Application, error)
	// UpdateStatus sets the pipeline status and returns the updated record.
	UpdateStatus(ctx context.Context, id string, status Status) (*Application, error)
	// Delete returns ErrNotFound when no application matches.
	Delete(ctx context.Context, id string) error
	// DeleteByJob removes all applications for the job.
	DeleteByJob(ctx context.Context, jobID string) error
}
