package catalog

import (
	"context"
	"strings"
	"time"

	"jobdesk.org/internal/identity"
	"jobdesk.org/internal/obs"
	"jobdesk.org/internal/policy"
)

const (
	defaultPageLimit  = 10
	featuredLimit     = 5
	recentLimit       = 10
	popularTypesLimit = 10
	statsRecentWindow = 30 * 24 * time.Hour
)

// Service implements the job catalog operations over a Store. Authorization
// decisions are delegated to the policy package; lookups always precede
// permission checks so a missing job reads as not-found to everyone.
type Service struct {
	store Store
}

// NewService creates a catalog service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates the input and stores a new active job owned by the subject.
func (s *Service) Create(ctx context.Context, sub identity.Subject, in CreateJobInput) (*Job, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Type = strings.TrimSpace(in.Type)
	in.Location = strings.TrimSpace(in.Location)
	in.Company = strings.TrimSpace(in.Company)
	if in.Title == "" || in.Description == "" || in.Type == "" || in.Location == "" || in.Company == "" {
		return nil, ErrInvalidInput
	}
	if in.Salary != nil && *in.Salary < 0 {
		return nil, ErrInvalidInput
	}

	job := &Job{
		Title:               in.Title,
		Description:         in.Description,
		Type:                in.Type,
		Location:            in.Location,
		Company:             in.Company,
		Salary:              in.Salary,
		Featured:            in.Featured,
		IsActive:            true,
		Categories:          in.Categories,
		Tags:                in.Tags,
		Requirements:        in.Requirements,
		Benefits:            in.Benefits,
		ContactEmail:        in.ContactEmail,
		ContactPhone:        in.ContactPhone,
		ApplicationDeadline: in.ApplicationDeadline,
		PostedBy:            sub.UserID,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	obs.JobCreated()
	return job, nil
}

// Get fetches a single job and bumps its view counter. The counter bump is
// best effort; a failure there does not fail the read.
func (s *Service) Get(ctx context.Context, id string) (*Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.IncrementViews(ctx, id); err == nil {
		job.ViewsCount++
	}
	return job, nil
}

// List returns a page of jobs filtered by exact type and location.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Job, Page, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	jobs, total, err := s.store.ListJobs(ctx, f)
	if err != nil {
		return nil, Page{}, err
	}
	return jobs, makePage(f.Page, f.Limit, total), nil
}

// Search runs the advanced query with sorting and pagination.
func (s *Service) Search(ctx context.Context, c SearchCriteria) ([]Job, Page, error) {
	c.Page, c.Limit = normalizePage(c.Page, c.Limit)
	if c.MinSalary != nil && c.MaxSalary != nil && *c.MinSalary > *c.MaxSalary {
		return nil, Page{}, ErrInvalidInput
	}
	switch c.SortBy {
	case SortByCreatedAt, SortBySalary, SortByTitle, SortByCompany:
	default:
		c.SortBy = SortByCreatedAt
	}
	switch c.SortOrder {
	case SortAsc, SortDesc:
	default:
		c.SortOrder = SortDesc
	}
	jobs, total, err := s.store.SearchJobs(ctx, c)
	if err != nil {
		return nil, Page{}, err
	}
	return jobs, makePage(c.Page, c.Limit, total), nil
}

// Update patches a job owned by the subject. Missing jobs surface as
// ErrNotFound before any permission check.
func (s *Service) Update(ctx context.Context, sub identity.Subject, id string, patch JobPatch) (*Job, error) {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageJob(sub, job.PostedBy) {
		return nil, ErrForbidden
	}
	if patch.Salary != nil && *patch.Salary < 0 {
		return nil, ErrInvalidInput
	}
	if emptyPatchString(patch.Title) || emptyPatchString(patch.Description) ||
		emptyPatchString(patch.Type) || emptyPatchString(patch.Location) ||
		emptyPatchString(patch.Company) {
		return nil, ErrInvalidInput
	}
	return s.store.UpdateJob(ctx, id, patch)
}

// Delete removes a job along with its applications and saved-job entries.
func (s *Service) Delete(ctx context.Context, sub identity.Subject, id string) error {
	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanManageJob(sub, job.PostedBy) {
		return ErrForbidden
	}
	return s.store.DeleteJob(ctx, id)
}

// Featured returns up to five featured jobs, newest first.
func (s *Service) Featured(ctx context.Context) ([]Job, error) {
	return s.store.FeaturedJobs(ctx, featuredLimit)
}

// Recent returns the ten newest jobs.
func (s *Service) Recent(ctx context.Context) ([]Job, error) {
	return s.store.RecentJobs(ctx, recentLimit)
}

// MyJobs returns the subject's own postings, newest first.
func (s *Service) MyJobs(ctx context.Context, sub identity.Subject) ([]Job, error) {
	return s.store.JobsByPoster(ctx, sub.UserID)
}

// PopularCategories groups postings by type, most common first.
func (s *Service) PopularCategories(ctx context.Context) ([]TypeCount, error) {
	return s.store.PopularCategories(ctx, popularTypesLimit)
}

// Stats aggregates the catalog; recent means the last 30 days.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx, time.Now().UTC().Add(-statsRecentWindow))
}

// Save bookmarks a job for the subject. Duplicates surface as ErrAlreadySaved.
func (s *Service) Save(ctx context.Context, sub identity.Subject, jobID string) error {
	return s.store.SaveJob(ctx, sub.UserID, jobID)
}

// Unsave removes a bookmark. Removing an absent bookmark succeeds.
func (s *Service) Unsave(ctx context.Context, sub identity.Subject, jobID string) error {
	return s.store.UnsaveJob(ctx, sub.UserID, jobID)
}

// Saved returns the subject's bookmarked jobs, most recently saved first.
func (s *Service) Saved(ctx context.Context, sub identity.Subject) ([]Job, error) {
	return s.store.SavedJobs(ctx, sub.UserID)
}

// Report flags a job posting. Any authenticated user may report any job,
// including their own.
func (s *Service) Report(ctx context.Context, sub identity.Subject, jobID, reason, details string) (*Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrInvalidInput
	}
	report := &Report{
		ReportedBy: sub.UserID,
		Reason:     reason,
		Details:    strings.TrimSpace(details),
		Status:     ReportPending,
	}
	if err := s.store.AddReport(ctx, jobID, report); err != nil {
		return nil, err
	}
	return report, nil
}

func emptyPatchString(p *string) bool {
	return p != nil && strings.TrimSpace(*p) == ""
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	return page, limit
}

func makePage(page, limit, total int) Page {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return Page{CurrentPage: page, Limit: limit, TotalPages: totalPages, TotalJobs: total}
}
