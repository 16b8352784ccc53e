package apps

import (
	"context"
	"sort"
	"sync"
	"time"

	"jobdesk.org/internal/ids"
)

// InMemory implements Store with in-process concurrency safety.
type InMemory struct {
	mu   sync.RWMutex
	byID map[string]*Application
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty application store.
func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[string]*Application)}
}

func (s *InMemory) Create(ctx context.Context, app *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.JobID == app.JobID && existing.ApplicantID == app.ApplicantID {
			return ErrAlreadyApplied
		}
	}
	if app.ID == "" {
		app.ID = ids.New()
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	cp := *app
	cp.Applicant = nil
	s.byID[app.ID] = &cp
	return nil
}

func (s *InMemory) Get(ctx context.Context, id string) (*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (s *InMemory) ListByJob(ctx context.Context, jobID string) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(a *Application) bool { return a.JobID == jobID }), nil
}

func (s *InMemory) ListByApplicant(ctx context.Context, applicantID string) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(a *Application) bool { return a.ApplicantID == applicantID }), nil
}

func (s *InMemory) UpdateStatus(ctx context.Context, id string, status Status) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	cp := *app
	return &cp, nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *InMemory) DeleteByJob(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, app := range s.byID {
		if app.JobID == jobID {
			delete(s.byID, id)
		}
	}
	return nil
}

func (s *InMemory) collect(match func(*Application) bool) []Application {
	result := make([]Application, 0)
	for _, app := range s.byID {
		if match(app) {
			result = append(result, *app)
		}
	}
	sort.Slice(result, func(i, k int) bool {
		if !result[i].CreatedAt.Equal(result[k].CreatedAt) {
			return result[i].CreatedAt.After(result[k].CreatedAt)
		}
		return result[i].ID > result[k].ID
	})
	return result
}
