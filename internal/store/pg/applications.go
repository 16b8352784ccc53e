package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jobdesk.org/internal/apps"
	"jobdesk.org/internal/ids"
)

// Applications implements apps.Store. The unique (job_id, applicant_id)
// index makes duplicate detection a single atomic insert.
type Applications struct {
	*Store
}

var _ apps.Store = (*Applications)(nil)

func (s *Store) Applications() *Applications { return &Applications{Store: s} }

const appCols = `id, job_id, applicant_id, cover_letter, resume_url, status, notes, created_at, updated_at`

func (a *Applications) Create(ctx context.Context, app *apps.Application) error {
	if app.ID == "" {
		app.ID = ids.New()
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := a.db.ExecContext(ctx, `
		insert into applications(id, job_id, applicant_id, cover_letter, resume_url, status, notes, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$8)
	`, app.ID, app.JobID, app.ApplicantID, app.CoverLetter, app.ResumeURL, app.Status, app.Notes, now)
	if isUniqueViolation(err) {
		return apps.ErrAlreadyApplied
	}
	return err
}

func (a *Applications) Get(ctx context.Context, id string) (*apps.Application, error) {
	row := a.db.QueryRowContext(ctx, `select `+appCols+` from applications where id=$1`, id)
	return scanApplication(row)
}

func (a *Applications) ListByJob(ctx context.Context, jobID string) ([]apps.Application, error) {
	return a.query(ctx, `
		select `+appCols+` from applications
		where job_id=$1 order by created_at desc, id desc
	`, jobID)
}

func (a *Applications) ListByApplicant(ctx context.Context, applicantID string) ([]apps.Application, error) {
	return a.query(ctx, `
		select `+appCols+` from applications
		where applicant_id=$1 order by created_at desc, id desc
	`, applicantID)
}

func (a *Applications) UpdateStatus(ctx context.Context, id string, status apps.Status) (*apps.Application, error) {
	row := a.db.QueryRowContext(ctx, `
		update applications set status=$2, updated_at=now() where id=$1 returning `+appCols,
		id, status)
	return scanApplication(row)
}

func (a *Applications) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, `delete from applications where id=$1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apps.ErrNotFound
	}
	return nil
}

func (a *Applications) DeleteByJob(ctx context.Context, jobID string) error {
	_, err := a.db.ExecContext(ctx, `delete from applications where job_id=$1`, jobID)
	return err
}

func (a *Applications) query(ctx context.Context, query string, args ...any) ([]apps.Application, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []apps.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}

func scanApplication(row rowScanner) (*apps.Application, error) {
	var app apps.Application
	err := row.Scan(&app.ID, &app.JobID, &app.ApplicantID, &app.CoverLetter, &app.ResumeURL,
		&app.Status, &app.Notes, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apps.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}
