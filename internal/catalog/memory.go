package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"jobdesk.org/internal/ids"
)

type savedEntry struct {
	jobID   string
	savedAt time.Time
}

// InMemory implements Store with in-process concurrency safety. Used by
// tests and by DSN-less startup.
type InMemory struct {
	mu    sync.RWMutex
	jobs  map[string]*Job
	saved map[string][]savedEntry // userID -> saved jobs, oldest first
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty catalog.
func NewInMemory() *InMemory {
	return &InMemory{
		jobs:  make(map[string]*Job),
		saved: make(map[string][]savedEntry),
	}
}

func (s *InMemory) CreateJob(ctx context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == "" {
		job.ID = ids.New()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	cp := cloneJob(job)
	s.jobs[job.ID] = &cp
	return nil
}

func (s *InMemory) GetJob(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneJob(job)
	return &cp, nil
}

func (s *InMemory) IncrementViews(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.ViewsCount++
	return nil
}

func (s *InMemory) UpdateJob(ctx context.Context, id string, patch JobPatch) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	applyPatch(job, patch)
	job.UpdatedAt = time.Now().UTC()
	cp := cloneJob(job)
	return &cp, nil
}

func (s *InMemory) DeleteJob(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return ErrNotFound
	}
	delete(s.jobs, id)
	for userID, entries := range s.saved {
		kept := entries[:0]
		for _, e := range entries {
			if e.jobID != id {
				kept = append(kept, e)
			}
		}
		s.saved[userID] = kept
	}
	return nil
}

func (s *InMemory) ListJobs(ctx context.Context, f ListFilter) ([]Job, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.collect(func(j *Job) bool {
		if f.Type != "" && j.Type != f.Type {
			return false
		}
		if f.Location != "" && j.Location != f.Location {
			return false
		}
		return true
	})
	sortNewestFirst(matched)
	total := len(matched)
	return pageSlice(matched, f.Page, f.Limit), total, nil
}

func (s *InMemory) SearchJobs(ctx context.Context, c SearchCriteria) ([]Job, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keyword := strings.ToLower(strings.TrimSpace(c.Keyword))
	location := strings.ToLower(strings.TrimSpace(c.Location))
	company := strings.ToLower(strings.TrimSpace(c.Company))

	matched := s.collect(func(j *Job) bool {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(j.Title), keyword) &&
			!strings.Contains(strings.ToLower(j.Description), keyword) {
			return false
		}
		if location != "" && !strings.Contains(strings.ToLower(j.Location), location) {
			return false
		}
		if company != "" && !strings.Contains(strings.ToLower(j.Company), company) {
			return false
		}
		if c.Type != "" && j.Type != c.Type {
			return false
		}
		if c.MinSalary != nil || c.MaxSalary != nil {
			if j.Salary == nil {
				return false
			}
			if c.MinSalary != nil && *j.Salary < *c.MinSalary {
				return false
			}
			if c.MaxSalary != nil && *j.Salary > *c.MaxSalary {
				return false
			}
		}
		return true
	})

	sortJobs(matched, c.SortBy, c.SortOrder)
	total := len(matched)
	return pageSlice(matched, c.Page, c.Limit), total, nil
}

func (s *InMemory) FeaturedJobs(ctx context.Context, limit int) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.collect(func(j *Job) bool { return j.Featured })
	sortNewestFirst(matched)
	return headSlice(matched, limit), nil
}

func (s *InMemory) RecentJobs(ctx context.Context, limit int) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.collect(func(j *Job) bool { return true })
	sortNewestFirst(matched)
	return headSlice(matched, limit), nil
}

func (s *InMemory) JobsByPoster(ctx context.Context, userID string) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.collect(func(j *Job) bool { return j.PostedBy == userID })
	sortNewestFirst(matched)
	return matched, nil
}

func (s *InMemory) PopularCategories(ctx context.Context, limit int) ([]TypeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, j := range s.jobs {
		counts[j.Type]++
	}
	result := typeCounts(counts)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *InMemory) MatchingJobs(ctx context.Context, types, locations, excludeIDs []string, limit int) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(types) == 0 && len(locations) == 0 {
		return []Job{}, nil
	}
	typeSet := stringSet(types)
	locationSet := stringSet(locations)
	excluded := stringSet(excludeIDs)

	matched := s.collect(func(j *Job) bool {
		if !j.IsActive || excluded[j.ID] {
			return false
		}
		return typeSet[j.Type] || locationSet[j.Location]
	})
	sortNewestFirst(matched)
	return headSlice(matched, limit), nil
}

func (s *InMemory) Stats(ctx context.Context, recentSince time.Time) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{TotalJobs: len(s.jobs)}
	typeCountsMap := make(map[string]int)
	locationCounts := make(map[string]int)
	var salarySum, salaryMin, salaryMax int64
	salaried := 0

	for _, j := range s.jobs {
		typeCountsMap[j.Type]++
		locationCounts[j.Location]++
		if !j.CreatedAt.Before(recentSince) {
			stats.RecentJobsCount++
		}
		if j.Salary != nil {
			if salaried == 0 || *j.Salary < salaryMin {
				salaryMin = *j.Salary
			}
			if salaried == 0 || *j.Salary > salaryMax {
				salaryMax = *j.Salary
			}
			salarySum += *j.Salary
			salaried++
		}
	}

	stats.JobsByType = typeCounts(typeCountsMap)
	locs := make([]LocationCount, 0, len(locationCounts))
	for location, count := range locationCounts {
		locs = append(locs, LocationCount{Location: location, Count: count})
	}
	sort.Slice(locs, func(i, k int) bool {
		if locs[i].Count != locs[k].Count {
			return locs[i].Count > locs[k].Count
		}
		return locs[i].Location < locs[k].Location
	})
	if len(locs) > 10 {
		locs = locs[:10]
	}
	stats.JobsByLocation = locs

	if salaried > 0 {
		stats.SalaryStats = SalaryStats{
			AverageSalary: float64(salarySum) / float64(salaried),
			MinSalary:     salaryMin,
			MaxSalary:     salaryMax,
		}
	}
	return stats, nil
}

func (s *InMemory) SaveJob(ctx context.Context, userID, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobID]; !ok {
		return ErrNotFound
	}
	for _, e := range s.saved[userID] {
		if e.jobID == jobID {
			return ErrAlreadySaved
		}
	}
	s.saved[userID] = append(s.saved[userID], savedEntry{jobID: jobID, savedAt: time.Now().UTC()})
	return nil
}

func (s *InMemory) UnsaveJob(ctx context.Context, userID, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.saved[userID]
	kept := entries[:0]
	for _, e := range entries {
		if e.jobID != jobID {
			kept = append(kept, e)
		}
	}
	s.saved[userID] = kept
	return nil
}

func (s *InMemory) SavedJobs(ctx context.Context, userID string) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.saved[userID]
	result := make([]Job, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if job, ok := s.jobs[entries[i].jobID]; ok {
			result = append(result, cloneJob(job))
		}
	}
	return result, nil
}

func (s *InMemory) AddReport(ctx context.Context, jobID string, report *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrNotFound
	}
	if report.ID == "" {
		report.ID = ids.New()
	}
	report.CreatedAt = time.Now().UTC()
	job.Reports = append(job.Reports, *report)
	return nil
}

// collect returns copies of jobs matching the predicate.
func (s *InMemory) collect(match func(*Job) bool) []Job {
	result := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if match(j) {
			result = append(result, cloneJob(j))
		}
	}
	return result
}

func cloneJob(j *Job) Job {
	cp := *j
	cp.Categories = append([]string(nil), j.Categories...)
	cp.Tags = append([]string(nil), j.Tags...)
	cp.Requirements = append([]string(nil), j.Requirements...)
	cp.Benefits = append([]string(nil), j.Benefits...)
	cp.Reports = append([]Report(nil), j.Reports...)
	if j.Salary != nil {
		v := *j.Salary
		cp.Salary = &v
	}
	if j.ApplicationDeadline != nil {
		v := *j.ApplicationDeadline
		cp.ApplicationDeadline = &v
	}
	return cp
}

func applyPatch(job *Job, patch JobPatch) {
	if patch.Title != nil {
		job.Title = *patch.Title
	}
	if patch.Description != nil {
		job.Description = *patch.Description
	}
	if patch.Type != nil {
		job.Type = *patch.Type
	}
	if patch.Location != nil {
		job.Location = *patch.Location
	}
	if patch.Company != nil {
		job.Company = *patch.Company
	}
	if patch.Salary != nil {
		v := *patch.Salary
		job.Salary = &v
	}
	if patch.Featured != nil {
		job.Featured = *patch.Featured
	}
	if patch.IsActive != nil {
		job.IsActive = *patch.IsActive
	}
	if patch.Categories != nil {
		job.Categories = append([]string(nil), patch.Categories...)
	}
	if patch.Tags != nil {
		job.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.Requirements != nil {
		job.Requirements = append([]string(nil), patch.Requirements...)
	}
	if patch.Benefits != nil {
		job.Benefits = append([]string(nil), patch.Benefits...)
	}
	if patch.ContactEmail != nil {
		job.ContactEmail = *patch.ContactEmail
	}
	if patch.ContactPhone != nil {
		job.ContactPhone = *patch.ContactPhone
	}
	if patch.ApplicationDeadline != nil {
		v := *patch.ApplicationDeadline
		job.ApplicationDeadline = &v
	}
}

func sortNewestFirst(jobs []Job) {
	sort.Slice(jobs, func(i, k int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[k].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
		}
		return jobs[i].ID > jobs[k].ID
	})
}

func sortJobs(jobs []Job, sortBy, sortOrder string) {
	asc := sortOrder == SortAsc
	less := func(i, k int) bool {
		var cmp int
		switch sortBy {
		case SortBySalary:
			cmp = compareSalary(jobs[i].Salary, jobs[k].Salary)
		case SortByTitle:
			cmp = strings.Compare(strings.ToLower(jobs[i].Title), strings.ToLower(jobs[k].Title))
		case SortByCompany:
			cmp = strings.Compare(strings.ToLower(jobs[i].Company), strings.ToLower(jobs[k].Company))
		default:
			cmp = jobs[i].CreatedAt.Compare(jobs[k].CreatedAt)
			if cmp == 0 {
				cmp = strings.Compare(jobs[i].ID, jobs[k].ID)
			}
		}
		if asc {
			return cmp < 0
		}
		return cmp > 0
	}
	sort.SliceStable(jobs, less)
}

func compareSalary(a, b *int64) int {
	av, bv := int64(-1), int64(-1)
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	switch {
	case av < bv:
		return -1
	case av > bv:
		return 1
	}
	return 0
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func typeCounts(counts map[string]int) []TypeCount {
	result := make([]TypeCount, 0, len(counts))
	for jobType, count := range counts {
		result = append(result, TypeCount{Type: jobType, Count: count})
	}
	sort.Slice(result, func(i, k int) bool {
		if result[i].Count != result[k].Count {
			return result[i].Count > result[k].Count
		}
		return result[i].Type < result[k].Type
	})
	return result
}

func pageSlice(jobs []Job, page, limit int) []Job {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	start := (page - 1) * limit
	if start >= len(jobs) {
		return []Job{}
	}
	end := start + limit
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[start:end]
}

func headSlice(jobs []Job, limit int) []Job {
	if limit > 0 && len(jobs) > limit {
		return jobs[:limit]
	}
	return jobs
}
