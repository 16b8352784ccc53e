package catalog

import (
	"context"
	"time"
)

// Store describes persistence operations required by the job catalog.
// Implementations must enforce the saved-jobs uniqueness constraint so the
// duplicate-save check is a single atomic insert rather than a
// read-then-write sequence.
type Store interface {
	CreateJob(ctx context.Context, job *Job) error
	// GetJob returns ErrNotFound when no job matches.
	GetJob(ctx context.Context, id string) (*Job, error)
	// IncrementViews bumps the popularity counter. Returns ErrNotFound when
	// no job matches.
	IncrementViews(ctx context.Context, id string) error
	// UpdateJob applies the patch and returns the updated job.
	UpdateJob(ctx context.Context, id string, patch JobPatch) (*Job, error)
	// DeleteJob removes the job together with its applications, saved-job
	// entries and reports.
	DeleteJob(ctx context.Context, id string) error

	// ListJobs returns the requested page slice plus the total match count.
	ListJobs(ctx context.Context, f ListFilter) ([]Job, int, error)
	// SearchJobs returns the requested page slice plus the total match count.
	SearchJobs(ctx context.Context, c SearchCriteria) ([]Job, int, error)
	// FeaturedJobs returns featured jobs, newest first.
	FeaturedJobs(ctx context.Context, limit int) ([]Job, error)
	// RecentJobs returns all jobs, newest first.
	RecentJobs(ctx context.Context, limit int) ([]Job, error)
	// JobsByPoster returns jobs posted by the user, newest first.
	JobsByPoster(ctx context.Context, userID string) ([]Job, error)
	// PopularCategories groups jobs by type, descending count.
	PopularCategories(ctx context.Context, limit int) ([]TypeCount, error)
	// MatchingJobs returns active jobs whose type OR location is in the
	// given sets, excluding the listed IDs, newest first. Empty sets match
	// nothing.
	MatchingJobs(ctx context.Context, types, locations, excludeIDs []string, limit int) ([]Job, error)
	// Stats aggregates the catalog; recentSince bounds RecentJobsCount.
	Stats(ctx context.Context, recentSince time.Time) (Stats, error)

	// SaveJob records the saved-job relation. Returns ErrAlreadySaved on a
	// duplicate and ErrNotFound when the job does not exist.
	SaveJob(ctx context.Context, userID, jobID string) error
	// UnsaveJob is idempotent: removing an absent entry is not an error.
	UnsaveJob(ctx context.Context, userID, jobID string) error
	// SavedJobs returns the user's saved jobs, most recently saved first.
	SavedJobs(ctx context.Context, userID string) ([]Job, error)

	// AddReport appends a report to the job. Returns ErrNotFound when the
	// job does not exist.
	AddReport(ctx context.Context, jobID string, report *Report) error
}
