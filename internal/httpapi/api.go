// Package httpapi exposes the job board over JSON REST.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"jobdesk.org/internal/apps"
	"jobdesk.org/internal/catalog"
	"jobdesk.org/internal/identity"
	"jobdesk.org/internal/obs"
	"jobdesk.org/internal/recommend"
)

// ReadyProbe reports readiness; with a DB configured it pings it.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the domain services.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	identity  *identity.Service
	catalog   *catalog.Service
	apps      *apps.Service
	recommend *recommend.Service

	// Externally-backed limiter; nil means the in-process token buckets.
	limiter RequestLimiter

	rateBurst  int
	ratePerSec int
}

// New wires the routes. The mux stays method-agnostic; handlers dispatch on
// method themselves so unknown methods get a proper Allow header.
func New(rp ReadyProbe, version string,
	ident *identity.Service, cat *catalog.Service, app *apps.Service, rec *recommend.Service) *API {

	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		identity:   ident,
		catalog:    cat,
		apps:       app,
		recommend:  rec,
		rateBurst:  20,
		ratePerSec: 10,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/api/auth/me", a.handleMe)
	a.mux.HandleFunc("/api/auth/forgot-password", a.handleForgotPassword)
	a.mux.HandleFunc("/api/auth/reset-password", a.handleResetPassword)

	a.mux.HandleFunc("/api/jobs", a.handleJobsCollection)
	a.mux.HandleFunc("/api/jobs/", a.handleJobResource)

	a.mux.HandleFunc("/api/featured-jobs", a.handleFeaturedJobs)
	a.mux.HandleFunc("/api/search-jobs", a.handleSearchJobs)
	a.mux.HandleFunc("/api/recent-jobs", a.handleRecentJobs)
	a.mux.HandleFunc("/api/popular-categories", a.handlePopularCategories)
	a.mux.HandleFunc("/api/job-stats", a.handleJobStats)
	a.mux.HandleFunc("/api/job-recommendations", a.handleRecommendations)

	a.mux.HandleFunc("/api/saved-jobs", a.handleSavedJobsCollection)
	a.mux.HandleFunc("/api/saved-jobs/", a.handleSavedJobResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.withAuth(a.mux)
	h = obs.Instrument(h)
	h = LoggingJSON(h)
	if a.limiter != nil {
		h = LimitWith(h, a.limiter)
	} else {
		h = RateLimit(h, a.rateBurst, a.ratePerSec)
	}
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = RequestID(h)
	return h
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "jobdesk-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
