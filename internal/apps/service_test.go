package apps

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobdesk.org/internal/catalog"
	"jobdesk.org/internal/identity"
)

type fixture struct {
	svc   *Service
	store *InMemory
	jobs  *catalog.InMemory
	users *identity.InMemory
}

var (
	admin    = identity.Subject{UserID: "adm-1", Role: identity.RoleAdmin}
	stranger = identity.Subject{UserID: "other-1", Role: identity.RoleUser}
)

func newFixture(t *testing.T) (*fixture, identity.Subject, identity.Subject, *catalog.Job) {
	t.Helper()
	ctx := context.Background()
	jobs := catalog.NewInMemory()
	users := identity.NewInMemory()
	store := NewInMemory()
	f := &fixture{
		svc:   NewService(store, jobs, users),
		store: store,
		jobs:  jobs,
		users: users,
	}

	poster := &identity.User{FirstName: "Dana", LastName: "Kim", Email: "dana@acme.test", Role: identity.RoleEmployer}
	if err := users.Create(ctx, poster); err != nil {
		t.Fatalf("create poster: %v", err)
	}
	applicant := &identity.User{FirstName: "Ali", LastName: "Ahmed", Email: "ali@mail.test", Role: identity.RoleUser}
	if err := users.Create(ctx, applicant); err != nil {
		t.Fatalf("create applicant: %v", err)
	}

	job := &catalog.Job{
		Title: "Backend Engineer", Description: "Build APIs", Type: "full-time",
		Location: "Almaty", Company: "Acme", IsActive: true, PostedBy: poster.ID,
	}
	if err := jobs.CreateJob(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	posterSub := identity.Subject{UserID: poster.ID, Role: identity.RoleEmployer}
	applicantSub := identity.Subject{UserID: applicant.ID, Role: identity.RoleUser}
	return f, posterSub, applicantSub, job
}

func TestApplyFlow(t *testing.T) {
	f, _, applicant, job := newFixture(t)
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, applicant, job.ID, ApplyInput{CoverLetter: "  hello  ", ResumeURL: "https://cv.test/ali"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if app.Status != StatusPending {
		t.Fatalf("Status=%q, want pending", app.Status)
	}
	if app.CoverLetter != "hello" {
		t.Fatalf("CoverLetter=%q", app.CoverLetter)
	}
	if app.ApplicantID != applicant.UserID || app.JobID != job.ID {
		t.Fatalf("app=%+v", app)
	}

	if _, err := f.svc.Apply(ctx, applicant, job.ID, ApplyInput{}); !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("duplicate apply: err=%v, want ErrAlreadyApplied", err)
	}
	if _, err := f.svc.Apply(ctx, applicant, "missing", ApplyInput{}); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("missing job: err=%v, want catalog.ErrNotFound", err)
	}
}

func TestApplyToOwnJobAllowed(t *testing.T) {
	f, poster, _, job := newFixture(t)
	if _, err := f.svc.Apply(context.Background(), poster, job.ID, ApplyInput{}); err != nil {
		t.Fatalf("owner applying to own job should be allowed: %v", err)
	}
}

// The isActive flag and application deadline are advisory attributes of the
// posting; neither gates submission.
func TestApplyIgnoresActivityFlags(t *testing.T) {
	f, _, applicant, job := newFixture(t)
	ctx := context.Background()

	inactive := false
	past := time.Now().UTC().Add(-time.Hour)
	if _, err := f.jobs.UpdateJob(ctx, job.ID, catalog.JobPatch{IsActive: &inactive, ApplicationDeadline: &past}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	app, err := f.svc.Apply(ctx, applicant, job.ID, ApplyInput{})
	if err != nil {
		t.Fatalf("apply to inactive past-deadline job: %v", err)
	}
	if app.Status != StatusPending {
		t.Fatalf("Status=%q, want pending", app.Status)
	}
}

func TestListForJob(t *testing.T) {
	f, poster, applicant, job := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Apply(ctx, applicant, job.ID, ApplyInput{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, err := f.svc.ListForJob(ctx, stranger, job.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger list: err=%v, want ErrForbidden", err)
	}
	// A missing job is not-found even for a subject with no standing.
	if _, err := f.svc.ListForJob(ctx, stranger, "missing"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("missing job: err=%v, want catalog.ErrNotFound", err)
	}

	for _, sub := range []identity.Subject{poster, admin} {
		applications, err := f.svc.ListForJob(ctx, sub, job.ID)
		if err != nil {
			t.Fatalf("list as %s: %v", sub.Role, err)
		}
		if len(applications) != 1 {
			t.Fatalf("len=%d, want 1", len(applications))
		}
		got := applications[0]
		if got.Applicant == nil || got.Applicant.Email != "ali@mail.test" || got.Applicant.FirstName != "Ali" {
			t.Fatalf("applicant summary=%+v", got.Applicant)
		}
	}
}

func TestUpdateStatus(t *testing.T) {
	f, poster, applicant, job := newFixture(t)
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, applicant, job.ID, ApplyInput{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, stranger, job.ID, app.ID, StatusAccepted); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger update: err=%v, want ErrForbidden", err)
	}
	// "reviewed" belongs to the report pipeline, not applications.
	for _, bad := range []Status{"shortlisted", "reviewed", ""} {
		if _, err := f.svc.UpdateStatus(ctx, poster, job.ID, app.ID, bad); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("status %q: err=%v, want ErrInvalidInput", bad, err)
		}
	}

	updated, err := f.svc.UpdateStatus(ctx, poster, job.ID, app.ID, StatusAccepted)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Status != StatusAccepted {
		t.Fatalf("Status=%q, want accepted", updated.Status)
	}

	// Any status may follow any other.
	if _, err := f.svc.UpdateStatus(ctx, admin, job.ID, app.ID, StatusPending); err != nil {
		t.Fatalf("admin rollback: %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, poster, job.ID, "missing", StatusAccepted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing app: err=%v, want ErrNotFound", err)
	}
}

func TestApplicationJobMismatchIsNotFound(t *testing.T) {
	f, poster, applicant, job := newFixture(t)
	ctx := context.Background()

	other := &catalog.Job{
		Title: "Designer", Description: "Design", Type: "contract",
		Location: "Astana", Company: "Acme", IsActive: true, PostedBy: poster.UserID,
	}
	if err := f.jobs.CreateJob(ctx, other); err != nil {
		t.Fatalf("create job: %v", err)
	}
	app, err := f.svc.Apply(ctx, applicant, job.ID, ApplyInput{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, poster, other.ID, app.ID, StatusAccepted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("mismatched update: err=%v, want ErrNotFound", err)
	}
	if err := f.svc.Delete(ctx, poster, other.ID, app.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("mismatched delete: err=%v, want ErrNotFound", err)
	}
}

func TestDeleteApplication(t *testing.T) {
	f, poster, applicant, job := newFixture(t)
	ctx := context.Background()

	apply := func() *Application {
		t.Helper()
		app, err := f.svc.Apply(ctx, applicant, job.ID, ApplyInput{})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		return app
	}

	app := apply()
	if err := f.svc.Delete(ctx, stranger, job.ID, app.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete: err=%v, want ErrForbidden", err)
	}
	// The applicant may withdraw their own application.
	if err := f.svc.Delete(ctx, applicant, job.ID, app.ID); err != nil {
		t.Fatalf("applicant delete: %v", err)
	}

	app = apply()
	if err := f.svc.Delete(ctx, poster, job.ID, app.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	app = apply()
	if err := f.svc.Delete(ctx, admin, job.ID, app.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}

	if err := f.svc.Delete(ctx, admin, job.ID, app.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: err=%v, want ErrNotFound", err)
	}
}

func TestDeleteForJobRemovesAllApplications(t *testing.T) {
	f, poster, applicant, job := newFixture(t)
	ctx := context.Background()

	other := &catalog.Job{
		Title: "Designer", Description: "Design", Type: "contract",
		Location: "Astana", Company: "Acme", IsActive: true, PostedBy: poster.UserID,
	}
	if err := f.jobs.CreateJob(ctx, other); err != nil {
		t.Fatalf("create job: %v", err)
	}
	doomed, err := f.svc.Apply(ctx, applicant, job.ID, ApplyInput{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	kept, err := f.svc.Apply(ctx, applicant, other.ID, ApplyInput{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if err := f.svc.DeleteForJob(ctx, job.ID); err != nil {
		t.Fatalf("DeleteForJob: %v", err)
	}

	if _, err := f.store.Get(ctx, doomed.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("application survived job deletion: err=%v", err)
	}
	remaining, err := f.store.ListByApplicant(ctx, applicant.UserID)
	if err != nil {
		t.Fatalf("ListByApplicant: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != kept.ID {
		t.Fatalf("remaining=%+v, want only the other job's application", remaining)
	}
}
