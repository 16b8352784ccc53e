// Package recommend suggests jobs based on a user's application history.
package recommend

import (
	"context"

	"jobdesk.org/internal/apps"
	"jobdesk.org/internal/catalog"
	"jobdesk.org/internal/identity"
)

const maxSuggestions = 10

// ApplicationSource is the slice of the application store recommendations
// read from.
type ApplicationSource interface {
	ListByApplicant(ctx context.Context, applicantID string) ([]apps.Application, error)
}

// JobSource is the slice of the catalog recommendations read from.
type JobSource interface {
	GetJob(ctx context.Context, id string) (*catalog.Job, error)
	MatchingJobs(ctx context.Context, types, locations, excludeIDs []string, limit int) ([]catalog.Job, error)
}

// Service derives suggestions from the types and locations of jobs the user
// has applied to.
type Service struct {
	applications ApplicationSource
	jobs         JobSource
}

// NewService wires the recommendation service to its sources.
func NewService(applications ApplicationSource, jobs JobSource) *Service {
	return &Service{applications: applications, jobs: jobs}
}

// ForUser returns up to ten active jobs sharing a type or location with the
// user's applied-to jobs, excluding jobs already applied to, newest first.
// A user with no application history gets an empty list, never the
// unfiltered catalog.
func (s *Service) ForUser(ctx context.Context, sub identity.Subject) ([]catalog.Job, error) {
	history, err := s.applications.ListByApplicant(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return []catalog.Job{}, nil
	}

	appliedIDs := make([]string, 0, len(history))
	var types, locations []string
	seenType := make(map[string]bool)
	seenLocation := make(map[string]bool)
	for _, app := range history {
		appliedIDs = append(appliedIDs, app.JobID)
		job, err := s.jobs.GetJob(ctx, app.JobID)
		if err != nil {
			// The applied-to job may have been deleted since.
			continue
		}
		if !seenType[job.Type] {
			seenType[job.Type] = true
			types = append(types, job.Type)
		}
		if !seenLocation[job.Location] {
			seenLocation[job.Location] = true
			locations = append(locations, job.Location)
		}
	}

	return s.jobs.MatchingJobs(ctx, types, locations, appliedIDs, maxSuggestions)
}
