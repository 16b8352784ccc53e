package httpapi

import (
	"net/http"
	"strings"

	"jobdesk.org/internal/audit"
	"jobdesk.org/internal/catalog"
)

func (a *API) handleFeaturedJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	jobs, err := a.catalog.Featured(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (a *API) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	q := r.URL.Query()
	page, err := parsePositiveInt(q.Get("page"), 1, 1, 1<<30)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	limit, err := parsePositiveInt(q.Get("limit"), 10, 1, 100)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}
	minSalary, err := queryInt64(r, "minSalary")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	maxSalary, err := queryInt64(r, "maxSalary")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	jobs, pageInfo, err := a.catalog.Search(r.Context(), catalog.SearchCriteria{
		Keyword:   q.Get("keyword"),
		Location:  q.Get("location"),
		Type:      strings.TrimSpace(q.Get("type")),
		Company:   q.Get("company"),
		MinSalary: minSalary,
		MaxSalary: maxSalary,
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
		SortOrder: strings.TrimSpace(q.Get("sortOrder")),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobListResponse{Jobs: jobs, Page: pageInfo})
}

func (a *API) handleRecentJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	jobs, err := a.catalog.Recent(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (a *API) handlePopularCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	categories, err := a.catalog.PopularCategories(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (a *API) handleJobStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	stats, err := a.catalog.Stats(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	jobs, err := a.recommend.ForUser(r.Context(), sub)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (a *API) handleSavedJobsCollection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	jobs, err := a.catalog.Saved(r.Context(), sub)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (a *API) handleSavedJobResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/saved-jobs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	if err := a.catalog.Unsave(r.Context(), sub, id); err != nil {
		handleDomainError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "catalog.job.unsave", map[string]any{
		"job_id": id,
	})
	w.WriteHeader(http.StatusNoContent)
}
