package httpapi

import (
	"net/http"
	"strings"
	"time"

	"jobdesk.org/internal/apps"
	"jobdesk.org/internal/audit"
	"jobdesk.org/internal/catalog"
)

type createJobRequest struct {
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Type                string     `json:"type"`
	Location            string     `json:"location"`
	Company             string     `json:"company"`
	Salary              *int64     `json:"salary"`
	Featured            bool       `json:"featured"`
	Categories          []string   `json:"categories"`
	Tags                []string   `json:"tags"`
	Requirements        []string   `json:"requirements"`
	Benefits            []string   `json:"benefits"`
	ContactEmail        string     `json:"contactEmail"`
	ContactPhone        string     `json:"contactPhone"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
}

type updateJobRequest struct {
	Title               *string    `json:"title"`
	Description         *string    `json:"description"`
	Type                *string    `json:"type"`
	Location            *string    `json:"location"`
	Company             *string    `json:"company"`
	Salary              *int64     `json:"salary"`
	Featured            *bool      `json:"featured"`
	IsActive            *bool      `json:"isActive"`
	Categories          []string   `json:"categories"`
	Tags                []string   `json:"tags"`
	Requirements        []string   `json:"requirements"`
	Benefits            []string   `json:"benefits"`
	ContactEmail        *string    `json:"contactEmail"`
	ContactPhone        *string    `json:"contactPhone"`
	ApplicationDeadline *time.Time `json:"applicationDeadline"`
}

type applyRequest struct {
	CoverLetter string `json:"coverLetter"`
	ResumeURL   string `json:"resumeUrl"`
}

type applicationStatusRequest struct {
	Status string `json:"status"`
}

type reportJobRequest struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

type jobListResponse struct {
	Jobs []catalog.Job `json:"jobs"`
	catalog.Page
}

func (a *API) handleJobsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listJobs(w, r)
	case http.MethodPost:
		a.createJob(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleJobResource dispatches everything under /api/jobs/. The my-jobs
// segment is matched before treating the segment as a job id so a job can
// never shadow the literal route.
func (a *API) handleJobResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if rest == "" || strings.HasSuffix(rest, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	segments := strings.Split(rest, "/")

	if segments[0] == "my-jobs" {
		if len(segments) != 1 {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}
		a.listMyJobs(w, r)
		return
	}

	id := segments[0]
	switch {
	case len(segments) == 1:
		switch r.Method {
		case http.MethodGet:
			a.getJob(w, r, id)
		case http.MethodPut:
			a.updateJob(w, r, id)
		case http.MethodDelete:
			a.deleteJob(w, r, id)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	case len(segments) == 2 && segments[1] == "apply":
		a.applyToJob(w, r, id)
	case len(segments) == 2 && segments[1] == "applications":
		a.listApplications(w, r, id)
	case len(segments) == 3 && segments[1] == "applications":
		a.handleApplicationResource(w, r, id, segments[2])
	case len(segments) == 2 && segments[1] == "save":
		a.saveJob(w, r, id)
	case len(segments) == 2 && segments[1] == "report":
		a.reportJob(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) listJobs(w http.ResponseWriter, r *http.Request) {
	page, err := parsePositiveInt(r.URL.Query().Get("page"), 1, 1, 1<<30)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 10, 1, 100)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}
	jobs, pageInfo, err := a.catalog.List(r.Context(), catalog.ListFilter{
		Type:     strings.TrimSpace(r.URL.Query().Get("type")),
		Location: strings.TrimSpace(r.URL.Query().Get("location")),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobListResponse{Jobs: jobs, Page: pageInfo})
}

func (a *API) createJob(w http.ResponseWriter, r *http.Request) {
	sub, ok := a.requireSubject(w, r)
	if !ok {
		return
	}
	var req createJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	job, err := a.catalog.Create(r.Context(), sub, catalog.CreateJobInput{
		Title:               req.Title,
		Description:         req.Description,
		Type:                req.Type,
		Location:            req.Location,
		Company:             req.Company,
		Salary:              req.Salary,
		Featured:            req.Featured,
		Categories:          req.Categories,
		Tags:                req.Tags,
		Requirements:        req.Requirements,
		Benefits:            req.Benefits,
		ContactEmail:        req.ContactEmail,
		ContactPhone:        req.ContactPhone,
		ApplicationDeadline: req.ApplicationDeadline,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.job.create", map[string]any{
		"job_id": job.ID,
	})
	w.Header().Set("Location", "/api/jobs/"+job.ID)
	writeJSON(w, http.StatusCreated, job)
}

func (a *API) getJob(w http.ResponseWriter, r *http.Request, id string) {
	job, err := a.catalog.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (a *API) updateJob(w http.ResponseWriter, r *http.Request, id string) {
	sub, ok := a.requireSubject(w, r)
	if !ok {
		return
	}
	var req updateJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	job, err := a.catalog.Update(r.Context(), sub, id, catalog.JobPatch{
		Title:               req.Title,
		Description:         req.Description,
		Type:                req.Type,
		Location:            req.Location,
		Company:             req.Company,
		Salary:              req.Salary,
		Featured:            req.Featured,
		IsActive:            req.IsActive,
		Categories:          req.Categories,
		Tags:                req.Tags,
		Requirements:        req.Requirements,
		Benefits:            req.Benefits,
		ContactEmail:        req.ContactEmail,
		ContactPhone:        req.ContactPhone,
		ApplicationDeadline: req.ApplicationDeadline,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.job.update", map[string]any{
		"job_id": id,
	})
	writeJSON(w, http.StatusOK, job)
}

func (a *API) deleteJob(w http.ResponseWriter, r *http.Request, id string) {
	sub, ok := a.requireSubject(w, r)
	if !ok {
		return
	}
	if err := a.catalog.Delete(r.Context(), sub, id); err != nil {
		handleDomainError(w, r, err)
		return
	}
	// The posting is gone; its applications go with it.
	if err := a.apps.DeleteForJob(r.Context(), id); err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.job.delete", map[string]any{
		"job_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listMyJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	sub, ok := a.requireSubject(w, r)
	if !ok {
		return
	}
	jobs, err := a.catalog.MyJobs(r.Context(), sub)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (a *API) applyToJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	sub, ok := a.requireSubject(w, r)
	if !ok {
		return
	}
	var req applyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	app, err := a.apps.Apply(r.Context(), sub, jobID, apps.ApplyInput{
		CoverLetter: req.CoverLetter,
		ResumeURL:   req.ResumeURL,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "apps.application.submit", map[string]any{
		"job_id":         jobID,
		"application_id": app.ID,
	})
	writeJSON(w, http.StatusCreated, app)
}

func (a *API) listApplications(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	sub, ok := a.requireSubject(w, r)
	if !ok {
		return
	}
	applications, err := a.apps.ListForJob(r.Context(), sub, jobID)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": applications})
}

func (a *API) handleApplicationResource(w http.ResponseWriter, r *http.Request, jobID, appID string) {
	sub, ok := a.requireSubject(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPut:
		var req applicationStatusRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		app, err := a.apps.UpdateStatus(r.Context(), sub, jobID, appID, apps.Status(req.Status))
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "apps.application.status", map[string]any{
			"job_id":         jobID,
			"application_id": appID,
			"status":         req.Status,
		})
		writeJSON(w, http.StatusOK, app)
	case http.MethodDelete:
		if err := a.apps.Delete(r.Context(), sub, jobID, appID); err != nil {
			handleDomainError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "apps.application.delete", map[string]any{
			"job_id":         jobID,
			"application_id": appID,
		})
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) saveJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	sub, ok := a.requireSubject(w, r)
	if !ok {
		return
	}
	if err := a.catalog.Save(r.Context(), sub, jobID); err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.job.save", map[string]any{
		"job_id": jobID,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"message": "job saved"})
}

func (a *API) reportJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	sub, ok := a.requireSubject(w, r)
	if !ok {
		return
	}
	var req reportJobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	report, err := a.catalog.Report(r.Context(), sub, jobID, req.Reason, req.Details)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.job.report", map[string]any{
		"job_id":    jobID,
		"report_id": report.ID,
	})
	writeJSON(w, http.StatusCreated, report)
}
