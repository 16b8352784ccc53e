package apps

import (
	"context"
	"strings"

	"jobdesk.org/internal/catalog"
	"jobdesk.org/internal/identity"
	"jobdesk.org/internal/obs"
	"jobdesk.org/internal/policy"
)

// JobSource is the slice of the catalog the application lifecycle needs.
type JobSource interface {
	GetJob(ctx context.Context, id string) (*catalog.Job, error)
}

// UserSource resolves applicant summaries for listing.
type UserSource interface {
	FindByID(ctx context.Context, id string) (*identity.User, error)
}

// Service implements the application lifecycle. Job lookups always precede
// authorization so missing jobs read as not-found to everyone, and an
// application addressed under the wrong job is not-found rather than a leak
// of its existence.
type Service struct {
	store Store
	jobs  JobSource
	users UserSource
}

// NewService wires the application service to its stores.
func NewService(store Store, jobs JobSource, users UserSource) *Service {
	return &Service{store: store, jobs: jobs, users: users}
}

// Apply submits an application. Duplicate applications by the same user
// surface as ErrAlreadyApplied. The posting's isActive flag and deadline are
// advisory; they do not gate submission.
func (s *Service) Apply(ctx context.Context, sub identity.Subject, jobID string, in ApplyInput) (*Application, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !policy.CanApply(sub, job.PostedBy) {
		return nil, ErrForbidden
	}

	app := &Application{
		JobID:       jobID,
		ApplicantID: sub.UserID,
		CoverLetter: strings.TrimSpace(in.CoverLetter),
		ResumeURL:   strings.TrimSpace(in.ResumeURL),
		Status:      StatusPending,
	}
	if err := s.store.Create(ctx, app); err != nil {
		return nil, err
	}
	obs.ApplicationSubmitted()
	return app, nil
}

// ListForJob returns the job's applications with applicant summaries
// attached. Restricted to the job owner and admins.
func (s *Service) ListForJob(ctx context.Context, sub identity.Subject, jobID string) ([]Application, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewApplications(sub, job.PostedBy) {
		return nil, ErrForbidden
	}
	applications, err := s.store.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for i := range applications {
		// Best effort: a deleted applicant leaves the summary empty.
		if user, err := s.users.FindByID(ctx, applications[i].ApplicantID); err == nil {
			summary := user.Summary()
			applications[i].Applicant = &summary
		}
	}
	return applications, nil
}

// UpdateStatus moves an application through the pipeline. Restricted to the
// job owner and admins.
func (s *Service) UpdateStatus(ctx context.Context, sub identity.Subject, jobID, appID string, status Status) (*Application, error) {
	job, app, err := s.resolve(ctx, jobID, appID)
	if err != nil {
		return nil, err
	}
	if !policy.CanUpdateApplicationStatus(sub, job.PostedBy) {
		return nil, ErrForbidden
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidInput
	}
	return s.store.UpdateStatus(ctx, app.ID, status)
}

// Delete withdraws or removes an application. Allowed for the job owner,
// the applicant themselves, and admins.
func (s *Service) Delete(ctx context.Context, sub identity.Subject, jobID, appID string) error {
	job, app, err := s.resolve(ctx, jobID, appID)
	if err != nil {
		return err
	}
	if !policy.CanDeleteApplication(sub, job.PostedBy, app.ApplicantID) {
		return ErrForbidden
	}
	return s.store.Delete(ctx, app.ID)
}

// DeleteForJob clears a job's applications after the posting itself was
// removed. The Postgres schema cascades this through the FK already; the
// deletion path calls it anyway so in-memory stores stay consistent.
func (s *Service) DeleteForJob(ctx context.Context, jobID string) error {
	return s.store.DeleteByJob(ctx, jobID)
}

// resolve loads the job and the application addressed under it. A mismatch
// between the two is reported as ErrNotFound.
func (s *Service) resolve(ctx context.Context, jobID, appID string) (*catalog.Job, *Application, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	app, err := s.store.Get(ctx, appID)
	if err != nil {
		return nil, nil, err
	}
	if app.JobID != jobID {
		return nil, nil, ErrNotFound
	}
	return job, app, nil
}
