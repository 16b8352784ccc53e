package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobdesk.org/internal/catalog"
	"jobdesk.org/internal/ids"
)

// Jobs implements catalog.Store. The saved-jobs primary key and the
// cascading foreign keys carry the compound invariants, so every write here
// is a single statement.
type Jobs struct {
	*Store
}

var _ catalog.Store = (*Jobs)(nil)

func (s *Store) Jobs() *Jobs { return &Jobs{Store: s} }

const jobCols = `id, title, description, type, location, company, salary, featured, is_active,
	views_count, categories, tags, requirements, benefits, contact_email, contact_phone,
	application_deadline, posted_by, created_at, updated_at`

func (j *Jobs) CreateJob(ctx context.Context, job *catalog.Job) error {
	if job.ID == "" {
		job.ID = ids.New()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	categories, tags, requirements, benefits, err := marshalLists(job)
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx, `
		insert into jobs(id, title, description, type, location, company, salary, featured, is_active,
			views_count, categories, tags, requirements, benefits, contact_email, contact_phone,
			application_deadline, posted_by, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,0,$10,$11,$12,$13,$14,$15,$16,$17,$18,$18)
	`, job.ID, job.Title, job.Description, job.Type, job.Location, job.Company, job.Salary,
		job.Featured, job.IsActive, categories, tags, requirements, benefits,
		job.ContactEmail, job.ContactPhone, job.ApplicationDeadline, job.PostedBy, now)
	return err
}

func (j *Jobs) GetJob(ctx context.Context, id string) (*catalog.Job, error) {
	row := j.db.QueryRowContext(ctx, `select `+jobCols+` from jobs where id=$1`, id)
	job, err := scanJob(row)
	if err != nil {
		return nil, err
	}
	reports, err := j.reportsForJob(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Reports = reports
	return job, nil
}

func (j *Jobs) IncrementViews(ctx context.Context, id string) error {
	res, err := j.db.ExecContext(ctx, `update jobs set views_count = views_count + 1 where id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (j *Jobs) UpdateJob(ctx context.Context, id string, patch catalog.JobPatch) (*catalog.Job, error) {
	set := []string{"updated_at = now()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	addJSON := func(col string, v []string) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		add(col, raw)
		return nil
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Company != nil {
		add("company", *patch.Company)
	}
	if patch.Salary != nil {
		add("salary", *patch.Salary)
	}
	if patch.Featured != nil {
		add("featured", *patch.Featured)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if patch.Categories != nil {
		if err := addJSON("categories", patch.Categories); err != nil {
			return nil, err
		}
	}
	if patch.Tags != nil {
		if err := addJSON("tags", patch.Tags); err != nil {
			return nil, err
		}
	}
	if patch.Requirements != nil {
		if err := addJSON("requirements", patch.Requirements); err != nil {
			return nil, err
		}
	}
	if patch.Benefits != nil {
		if err := addJSON("benefits", patch.Benefits); err != nil {
			return nil, err
		}
	}
	if patch.ContactEmail != nil {
		add("contact_email", *patch.ContactEmail)
	}
	if patch.ContactPhone != nil {
		add("contact_phone", *patch.ContactPhone)
	}
	if patch.ApplicationDeadline != nil {
		add("application_deadline", *patch.ApplicationDeadline)
	}

	row := j.db.QueryRowContext(ctx,
		`update jobs set `+strings.Join(set, ", ")+` where id=$1 returning `+jobCols, args...)
	return scanJob(row)
}

func (j *Jobs) DeleteJob(ctx context.Context, id string) error {
	// Applications, saved-job rows and reports go with the cascade.
	res, err := j.db.ExecContext(ctx, `delete from jobs where id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (j *Jobs) ListJobs(ctx context.Context, f catalog.ListFilter) ([]catalog.Job, int, error) {
	where := []string{"true"}
	args := []any{}
	if f.Type != "" {
		args = append(args, f.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Location != "" {
		args = append(args, f.Location)
		where = append(where, fmt.Sprintf("location = $%d", len(args)))
	}
	return j.pagedQuery(ctx, strings.Join(where, " and "), "created_at desc, id desc", args, f.Page, f.Limit)
}

func (j *Jobs) SearchJobs(ctx context.Context, c catalog.SearchCriteria) ([]catalog.Job, int, error) {
	where := []string{"true"}
	args := []any{}
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if kw := strings.TrimSpace(c.Keyword); kw != "" {
		add("(title ilike '%%' || $%[1]d || '%%' or description ilike '%%' || $%[1]d || '%%')", kw)
	}
	if loc := strings.TrimSpace(c.Location); loc != "" {
		add("location ilike '%%' || $%d || '%%'", loc)
	}
	if co := strings.TrimSpace(c.Company); co != "" {
		add("company ilike '%%' || $%d || '%%'", co)
	}
	if c.Type != "" {
		add("type = $%d", c.Type)
	}
	if c.MinSalary != nil {
		add("salary >= $%d", *c.MinSalary)
	}
	if c.MaxSalary != nil {
		add("salary <= $%d", *c.MaxSalary)
	}

	return j.pagedQuery(ctx, strings.Join(where, " and "), searchOrder(c.SortBy, c.SortOrder), args, c.Page, c.Limit)
}

// searchOrder maps validated sort params onto a SQL order clause. The
// service validates SortBy/SortOrder, so unknown values only reach here in
// direct store use and fall back to newest first.
func searchOrder(sortBy, sortOrder string) string {
	col := "created_at"
	switch sortBy {
	case catalog.SortBySalary:
		col = "salary"
	case catalog.SortByTitle:
		col = "lower(title)"
	case catalog.SortByCompany:
		col = "lower(company)"
	}
	dir := "desc"
	if sortOrder == catalog.SortAsc {
		dir = "asc"
	}
	return fmt.Sprintf("%s %s, id %s", col, dir, dir)
}

func (j *Jobs) pagedQuery(ctx context.Context, where, order string, args []any, page, limit int) ([]catalog.Job, int, error) {
	var total int
	if err := j.db.QueryRowContext(ctx, `select count(*) from jobs where `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`select %s from jobs where %s order by %s limit $%d offset $%d`,
		jobCols, where, order, len(args)-1, len(args))
	jobs, err := j.queryJobs(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (j *Jobs) FeaturedJobs(ctx context.Context, limit int) ([]catalog.Job, error) {
	return j.queryJobs(ctx,
		`select `+jobCols+` from jobs where featured order by created_at desc, id desc limit $1`, limit)
}

func (j *Jobs) RecentJobs(ctx context.Context, limit int) ([]catalog.Job, error) {
	return j.queryJobs(ctx,
		`select `+jobCols+` from jobs order by created_at desc, id desc limit $1`, limit)
}

func (j *Jobs) JobsByPoster(ctx context.Context, userID string) ([]catalog.Job, error) {
	return j.queryJobs(ctx,
		`select `+jobCols+` from jobs where posted_by=$1 order by created_at desc, id desc`, userID)
}

func (j *Jobs) PopularCategories(ctx context.Context, limit int) ([]catalog.TypeCount, error) {
	rows, err := j.db.QueryContext(ctx, `
		select type, count(*) from jobs group by type order by count(*) desc, type asc limit $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []catalog.TypeCount{}
	for rows.Next() {
		var tc catalog.TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, err
		}
		result = append(result, tc)
	}
	return result, rows.Err()
}

func (j *Jobs) MatchingJobs(ctx context.Context, types, locations, excludeIDs []string, limit int) ([]catalog.Job, error) {
	if len(types) == 0 && len(locations) == 0 {
		return []catalog.Job{}, nil
	}
	typesJSON, err := json.Marshal(types)
	if err != nil {
		return nil, err
	}
	locationsJSON, err := json.Marshal(locations)
	if err != nil {
		return nil, err
	}
	excludeJSON, err := json.Marshal(excludeIDs)
	if err != nil {
		return nil, err
	}
	return j.queryJobs(ctx, `
		select `+jobCols+` from jobs
		where is_active
		  and (type in (select jsonb_array_elements_text($1::jsonb))
		       or location in (select jsonb_array_elements_text($2::jsonb)))
		  and id not in (select jsonb_array_elements_text($3::jsonb))
		order by created_at desc, id desc
		limit $4
	`, typesJSON, locationsJSON, excludeJSON, limit)
}

func (j *Jobs) Stats(ctx context.Context, recentSince time.Time) (catalog.Stats, error) {
	var stats catalog.Stats
	err := j.db.QueryRowContext(ctx, `
		select count(*),
		       count(*) filter (where created_at >= $1),
		       coalesce(avg(salary), 0),
		       coalesce(min(salary), 0),
		       coalesce(max(salary), 0)
		from jobs
	`, recentSince).Scan(&stats.TotalJobs, &stats.RecentJobsCount,
		&stats.SalaryStats.AverageSalary, &stats.SalaryStats.MinSalary, &stats.SalaryStats.MaxSalary)
	if err != nil {
		return catalog.Stats{}, err
	}

	byType, err := j.PopularCategories(ctx, 1<<30)
	if err != nil {
		return catalog.Stats{}, err
	}
	stats.JobsByType = byType

	rows, err := j.db.QueryContext(ctx, `
		select location, count(*) from jobs group by location order by count(*) desc, location asc limit 10
	`)
	if err != nil {
		return catalog.Stats{}, err
	}
	defer rows.Close()
	stats.JobsByLocation = []catalog.LocationCount{}
	for rows.Next() {
		var lc catalog.LocationCount
		if err := rows.Scan(&lc.Location, &lc.Count); err != nil {
			return catalog.Stats{}, err
		}
		stats.JobsByLocation = append(stats.JobsByLocation, lc)
	}
	return stats, rows.Err()
}

func (j *Jobs) SaveJob(ctx context.Context, userID, jobID string) error {
	_, err := j.db.ExecContext(ctx, `
		insert into saved_jobs(user_id, job_id, saved_at) values ($1,$2,now())
	`, userID, jobID)
	if isUniqueViolation(err) {
		return catalog.ErrAlreadySaved
	}
	if isForeignKeyViolation(err) {
		// The job is gone.
		return catalog.ErrNotFound
	}
	return err
}

func (j *Jobs) UnsaveJob(ctx context.Context, userID, jobID string) error {
	_, err := j.db.ExecContext(ctx, `delete from saved_jobs where user_id=$1 and job_id=$2`, userID, jobID)
	return err
}

func (j *Jobs) SavedJobs(ctx context.Context, userID string) ([]catalog.Job, error) {
	return j.queryJobs(ctx, `
		select `+jobCols+` from jobs
		join saved_jobs s on s.job_id = jobs.id
		where s.user_id=$1
		order by s.saved_at desc
	`, userID)
}

func (j *Jobs) AddReport(ctx context.Context, jobID string, report *catalog.Report) error {
	if report.ID == "" {
		report.ID = ids.New()
	}
	report.CreatedAt = time.Now().UTC()
	_, err := j.db.ExecContext(ctx, `
		insert into job_reports(id, job_id, reported_by, reason, details, status, created_at)
		values ($1,$2,$3,$4,$5,$6,$7)
	`, report.ID, jobID, report.ReportedBy, report.Reason, report.Details, report.Status, report.CreatedAt)
	if isForeignKeyViolation(err) {
		return catalog.ErrNotFound
	}
	return err
}

func (j *Jobs) reportsForJob(ctx context.Context, jobID string) ([]catalog.Report, error) {
	rows, err := j.db.QueryContext(ctx, `
		select id, reported_by, reason, details, status, created_at
		from job_reports where job_id=$1 order by created_at asc
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []catalog.Report
	for rows.Next() {
		var r catalog.Report
		if err := rows.Scan(&r.ID, &r.ReportedBy, &r.Reason, &r.Details, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (j *Jobs) queryJobs(ctx context.Context, query string, args ...any) ([]catalog.Job, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []catalog.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*catalog.Job, error) {
	var job catalog.Job
	var categories, tags, requirements, benefits []byte
	err := row.Scan(&job.ID, &job.Title, &job.Description, &job.Type, &job.Location, &job.Company,
		&job.Salary, &job.Featured, &job.IsActive, &job.ViewsCount,
		&categories, &tags, &requirements, &benefits,
		&job.ContactEmail, &job.ContactPhone, &job.ApplicationDeadline,
		&job.PostedBy, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		raw []byte
		out *[]string
	}{
		{categories, &job.Categories},
		{tags, &job.Tags},
		{requirements, &job.Requirements},
		{benefits, &job.Benefits},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.out); err != nil {
				return nil, err
			}
		}
	}
	return &job, nil
}

func marshalLists(job *catalog.Job) (categories, tags, requirements, benefits []byte, err error) {
	if categories, err = json.Marshal(job.Categories); err != nil {
		return
	}
	if tags, err = json.Marshal(job.Tags); err != nil {
		return
	}
	if requirements, err = json.Marshal(job.Requirements); err != nil {
		return
	}
	benefits, err = json.Marshal(job.Benefits)
	return
}
