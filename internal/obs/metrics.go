package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	jobsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobdesk_jobs_created_total",
		Help: "Job postings created since process start.",
	})

	applicationsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jobdesk_applications_submitted_total",
		Help: "Job applications submitted since process start.",
	})
)

// Init registers all metrics in the default registry. Call once at startup.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		jobsCreatedTotal,
		applicationsSubmittedTotal,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// JobCreated increments the job creation counter.
func JobCreated() { jobsCreatedTotal.Inc() }

// ApplicationSubmitted increments the application counter.
func ApplicationSubmitted() { applicationsSubmittedTotal.Inc() }

// Instrument measures request count, latency and in-flight requests.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses resource identifiers in request paths so metric
// label cardinality stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(segments) >= 2 && segments[0] == "api" && segments[1] == "jobs":
		// /api/jobs/:id{,/apply,/save,/report,/applications{,/:aid}}
		if len(segments) >= 3 && segments[2] != "my-jobs" {
			segments[2] = ":id"
			if len(segments) == 5 && segments[3] == "applications" {
				segments[4] = ":aid"
			}
		}
	case len(segments) == 3 && segments[0] == "api" && segments[1] == "saved-jobs":
		segments[2] = ":id"
	}
	return "/" + strings.Join(segments, "/")
}

// statusWriter captures the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
