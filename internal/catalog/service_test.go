package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"jobdesk.org/internal/identity"
)

var (
	employer = identity.Subject{UserID: "emp-1", Role: identity.RoleEmployer}
	seeker   = identity.Subject{UserID: "user-1", Role: identity.RoleUser}
	admin    = identity.Subject{UserID: "adm-1", Role: identity.RoleAdmin}
)

func newTestService() *Service {
	return NewService(NewInMemory())
}

func mustCreate(t *testing.T, svc *Service, sub identity.Subject, in CreateJobInput) *Job {
	t.Helper()
	job, err := svc.Create(context.Background(), sub, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return job
}

func baseInput() CreateJobInput {
	return CreateJobInput{
		Title:       "Backend Engineer",
		Description: "Build APIs",
		Type:        "full-time",
		Location:    "Almaty",
		Company:     "Acme",
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	fields := []func(*CreateJobInput){
		func(in *CreateJobInput) { in.Title = "  " },
		func(in *CreateJobInput) { in.Description = "" },
		func(in *CreateJobInput) { in.Type = "" },
		func(in *CreateJobInput) { in.Location = "" },
		func(in *CreateJobInput) { in.Company = "" },
	}
	for i, mutate := range fields {
		in := baseInput()
		mutate(&in)
		if _, err := svc.Create(ctx, employer, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: err=%v, want ErrInvalidInput", i, err)
		}
	}

	in := baseInput()
	negative := int64(-1)
	in.Salary = &negative
	if _, err := svc.Create(ctx, employer, in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative salary: err=%v, want ErrInvalidInput", err)
	}
}

func TestCreateSetsOwnershipAndDefaults(t *testing.T) {
	svc := newTestService()
	job := mustCreate(t, svc, employer, baseInput())

	if job.ID == "" {
		t.Fatal("job ID not assigned")
	}
	if job.PostedBy != employer.UserID {
		t.Fatalf("PostedBy=%q, want %q", job.PostedBy, employer.UserID)
	}
	if !job.IsActive {
		t.Fatal("new job should be active")
	}
	if job.ViewsCount != 0 {
		t.Fatalf("ViewsCount=%d, want 0", job.ViewsCount)
	}
}

func TestGetIncrementsViews(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	job := mustCreate(t, svc, employer, baseInput())

	for want := int64(1); want <= 3; want++ {
		got, err := svc.Get(ctx, job.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ViewsCount != want {
			t.Fatalf("ViewsCount=%d, want %d", got.ViewsCount, want)
		}
	}

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: err=%v, want ErrNotFound", err)
	}
}

func TestListPagination(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		in := baseInput()
		in.Title = fmt.Sprintf("Job %02d", i)
		mustCreate(t, svc, employer, in)
	}

	jobs, page, err := svc.List(ctx, ListFilter{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 5 {
		t.Fatalf("page 3 len=%d, want 5", len(jobs))
	}
	if page.TotalJobs != 25 || page.TotalPages != 3 || page.CurrentPage != 3 {
		t.Fatalf("page=%+v", page)
	}

	// Out-of-range pages come back empty but keep the totals.
	jobs, page, err = svc.List(ctx, ListFilter{Page: 9, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 0 || page.TotalJobs != 25 {
		t.Fatalf("out-of-range: len=%d page=%+v", len(jobs), page)
	}

	// Invalid paging params fall back to defaults.
	jobs, page, err = svc.List(ctx, ListFilter{Page: -2, Limit: 0})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.CurrentPage != 1 || page.Limit != 10 || len(jobs) != 10 {
		t.Fatalf("defaults: len=%d page=%+v", len(jobs), page)
	}
}

func TestListFilters(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := baseInput()
	in.Type = "part-time"
	mustCreate(t, svc, employer, in)
	in = baseInput()
	in.Location = "Astana"
	mustCreate(t, svc, employer, in)
	mustCreate(t, svc, employer, baseInput())

	jobs, page, err := svc.List(ctx, ListFilter{Type: "part-time"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalJobs != 1 || jobs[0].Type != "part-time" {
		t.Fatalf("type filter: page=%+v", page)
	}

	_, page, err = svc.List(ctx, ListFilter{Location: "Astana"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalJobs != 1 {
		t.Fatalf("location filter: page=%+v", page)
	}
}

func TestSearchSalaryRange(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	salaries := []int64{50000, 80000, 120000}
	for _, sal := range salaries {
		in := baseInput()
		v := sal
		in.Salary = &v
		in.Title = fmt.Sprintf("Paid %d", sal)
		mustCreate(t, svc, employer, in)
	}
	// No declared salary: excluded whenever a salary bound is set.
	mustCreate(t, svc, employer, baseInput())

	min, max := int64(50000), int64(80000)
	jobs, page, err := svc.Search(ctx, SearchCriteria{MinSalary: &min, MaxSalary: &max})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.TotalJobs != 2 {
		t.Fatalf("TotalJobs=%d, want 2 (bounds inclusive, null salary excluded)", page.TotalJobs)
	}
	for _, j := range jobs {
		if j.Salary == nil || *j.Salary < min || *j.Salary > max {
			t.Fatalf("job %q outside range", j.Title)
		}
	}

	if _, _, err := svc.Search(ctx, SearchCriteria{MinSalary: &max, MaxSalary: &min}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("inverted range: err=%v, want ErrInvalidInput", err)
	}
}

func TestSearchKeywordAndSort(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	titles := []string{"Go Developer", "Python Developer", "Designer"}
	salaries := []int64{90000, 70000, 60000}
	for i, title := range titles {
		in := baseInput()
		in.Title = title
		v := salaries[i]
		in.Salary = &v
		mustCreate(t, svc, employer, in)
	}

	jobs, page, err := svc.Search(ctx, SearchCriteria{Keyword: "developer"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if page.TotalJobs != 2 {
		t.Fatalf("keyword: TotalJobs=%d, want 2", page.TotalJobs)
	}

	jobs, _, err = svc.Search(ctx, SearchCriteria{SortBy: SortBySalary, SortOrder: SortAsc})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := 1; i < len(jobs); i++ {
		if *jobs[i-1].Salary > *jobs[i].Salary {
			t.Fatalf("salary asc violated at %d", i)
		}
	}

	// Unknown sort params fall back to newest-first without error.
	if _, _, err := svc.Search(ctx, SearchCriteria{SortBy: "bogus", SortOrder: "sideways"}); err != nil {
		t.Fatalf("lenient sort fallback: %v", err)
	}
}

func TestUpdateAuthorization(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	job := mustCreate(t, svc, employer, baseInput())

	title := "Senior Backend Engineer"
	if _, err := svc.Update(ctx, seeker, job.ID, JobPatch{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger update: err=%v, want ErrForbidden", err)
	}

	updated, err := svc.Update(ctx, employer, job.ID, JobPatch{Title: &title})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("Title=%q, want %q", updated.Title, title)
	}
	if updated.PostedBy != employer.UserID {
		t.Fatalf("PostedBy changed to %q", updated.PostedBy)
	}

	inactive := false
	if _, err := svc.Update(ctx, admin, job.ID, JobPatch{IsActive: &inactive}); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	// A missing job is not-found even for subjects who could not manage it.
	if _, err := svc.Update(ctx, seeker, "missing", JobPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing job: err=%v, want ErrNotFound", err)
	}

	blank := "   "
	if _, err := svc.Update(ctx, employer, job.ID, JobPatch{Title: &blank}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank title: err=%v, want ErrInvalidInput", err)
	}
}

func TestDeleteAuthorization(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	job := mustCreate(t, svc, employer, baseInput())

	if err := svc.Delete(ctx, seeker, job.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete: err=%v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, employer, job.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(ctx, job.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete: err=%v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, seeker, job.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: err=%v, want ErrNotFound", err)
	}
}

func TestFeaturedAndRecent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		in := baseInput()
		in.Featured = i%2 == 0
		mustCreate(t, svc, employer, in)
	}

	featured, err := svc.Featured(ctx)
	if err != nil {
		t.Fatalf("Featured: %v", err)
	}
	if len(featured) != 4 {
		t.Fatalf("featured len=%d, want 4", len(featured))
	}
	for _, j := range featured {
		if !j.Featured {
			t.Fatal("non-featured job in featured list")
		}
	}

	for i := 0; i < 8; i++ {
		mustCreate(t, svc, employer, baseInput())
	}
	recent, err := svc.Recent(ctx)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != recentLimit {
		t.Fatalf("recent len=%d, want %d", len(recent), recentLimit)
	}
}

func TestMyJobs(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	mustCreate(t, svc, employer, baseInput())
	mustCreate(t, svc, employer, baseInput())
	other := identity.Subject{UserID: "emp-2", Role: identity.RoleEmployer}
	mustCreate(t, svc, other, baseInput())

	mine, err := svc.MyJobs(ctx, employer)
	if err != nil {
		t.Fatalf("MyJobs: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("MyJobs len=%d, want 2", len(mine))
	}
	for _, j := range mine {
		if j.PostedBy != employer.UserID {
			t.Fatalf("foreign job %q in MyJobs", j.ID)
		}
	}
}

func TestStatsExcludesNullSalaries(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, sal := range []int64{60000, 100000} {
		in := baseInput()
		v := sal
		in.Salary = &v
		mustCreate(t, svc, employer, in)
	}
	in := baseInput()
	in.Type = "contract"
	in.Location = "Remote"
	mustCreate(t, svc, employer, in)

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalJobs != 3 {
		t.Fatalf("TotalJobs=%d, want 3", stats.TotalJobs)
	}
	if stats.RecentJobsCount != 3 {
		t.Fatalf("RecentJobsCount=%d, want 3", stats.RecentJobsCount)
	}
	if stats.SalaryStats.MinSalary != 60000 || stats.SalaryStats.MaxSalary != 100000 {
		t.Fatalf("salary bounds=%+v", stats.SalaryStats)
	}
	if stats.SalaryStats.AverageSalary != 80000 {
		t.Fatalf("AverageSalary=%v, want 80000 (null salaries excluded)", stats.SalaryStats.AverageSalary)
	}
	if len(stats.JobsByType) != 2 {
		t.Fatalf("JobsByType=%+v", stats.JobsByType)
	}
	if stats.JobsByType[0].Type != "full-time" || stats.JobsByType[0].Count != 2 {
		t.Fatalf("top type=%+v", stats.JobsByType[0])
	}
}

func TestPopularCategories(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	types := []string{"full-time", "full-time", "full-time", "contract", "contract", "internship"}
	for _, typ := range types {
		in := baseInput()
		in.Type = typ
		mustCreate(t, svc, employer, in)
	}

	popular, err := svc.PopularCategories(ctx)
	if err != nil {
		t.Fatalf("PopularCategories: %v", err)
	}
	want := []TypeCount{{"full-time", 3}, {"contract", 2}, {"internship", 1}}
	if len(popular) != len(want) {
		t.Fatalf("len=%d, want %d", len(popular), len(want))
	}
	for i := range want {
		if popular[i] != want[i] {
			t.Fatalf("popular[%d]=%+v, want %+v", i, popular[i], want[i])
		}
	}
}

func TestSaveUnsaveFlow(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	job := mustCreate(t, svc, employer, baseInput())

	if err := svc.Save(ctx, seeker, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("save missing: err=%v, want ErrNotFound", err)
	}
	if err := svc.Save(ctx, seeker, job.ID); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.Save(ctx, seeker, job.ID); !errors.Is(err, ErrAlreadySaved) {
		t.Fatalf("duplicate save: err=%v, want ErrAlreadySaved", err)
	}

	saved, err := svc.Saved(ctx, seeker)
	if err != nil {
		t.Fatalf("Saved: %v", err)
	}
	if len(saved) != 1 || saved[0].ID != job.ID {
		t.Fatalf("saved=%+v", saved)
	}

	if err := svc.Unsave(ctx, seeker, job.ID); err != nil {
		t.Fatalf("Unsave: %v", err)
	}
	// Unsave is idempotent.
	if err := svc.Unsave(ctx, seeker, job.ID); err != nil {
		t.Fatalf("repeat Unsave: %v", err)
	}
	saved, err = svc.Saved(ctx, seeker)
	if err != nil {
		t.Fatalf("Saved: %v", err)
	}
	if len(saved) != 0 {
		t.Fatalf("saved after unsave=%d, want 0", len(saved))
	}
}

func TestDeleteJobRemovesSavedEntries(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	job := mustCreate(t, svc, employer, baseInput())

	if err := svc.Save(ctx, seeker, job.ID); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := svc.Delete(ctx, employer, job.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	saved, err := svc.Saved(ctx, seeker)
	if err != nil {
		t.Fatalf("Saved: %v", err)
	}
	if len(saved) != 0 {
		t.Fatalf("saved after job delete=%d, want 0", len(saved))
	}
}

func TestReportJob(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	job := mustCreate(t, svc, employer, baseInput())

	if _, err := svc.Report(ctx, seeker, job.ID, "  ", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty reason: err=%v, want ErrInvalidInput", err)
	}
	if _, err := svc.Report(ctx, seeker, "missing", "spam", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing job: err=%v, want ErrNotFound", err)
	}

	report, err := svc.Report(ctx, seeker, job.ID, "spam", "reposted daily")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.Status != ReportPending || report.ReportedBy != seeker.UserID {
		t.Fatalf("report=%+v", report)
	}

	got, err := svc.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Reports) != 1 || got.Reports[0].Reason != "spam" {
		t.Fatalf("reports=%+v", got.Reports)
	}
}

func TestRecentOrdering(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		in := baseInput()
		in.Title = fmt.Sprintf("Job %d", i)
		ids = append(ids, mustCreate(t, svc, employer, in).ID)
		time.Sleep(2 * time.Millisecond)
	}

	recent, err := svc.Recent(ctx)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("len=%d, want 3", len(recent))
	}
	for i := range ids {
		if recent[i].ID != ids[len(ids)-1-i] {
			t.Fatalf("recent[%d]=%s, want %s", i, recent[i].ID, ids[len(ids)-1-i])
		}
	}
}
