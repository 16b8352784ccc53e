package catalog

import "time"

// Job is a posting in the catalog. PostedBy references the creating user
// and is immutable after creation.
type Job struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Type                string     `json:"type"`
	Location            string     `json:"location"`
	Company             string     `json:"company"`
	Salary              *int64     `json:"salary,omitempty"`
	Featured            bool       `json:"featured"`
	IsActive            bool       `json:"isActive"`
	ViewsCount          int64      `json:"viewsCount"`
	Categories          []string   `json:"categories,omitempty"`
	Tags                []string   `json:"tags,omitempty"`
	Requirements        []string   `json:"requirements,omitempty"`
	Benefits            []string   `json:"benefits,omitempty"`
	ContactEmail        string     `json:"contactEmail,omitempty"`
	ContactPhone        string     `json:"contactPhone,omitempty"`
	ApplicationDeadline *time.Time `json:"applicationDeadline,omitempty"`
	Reports             []Report   `json:"reports,omitempty"`
	PostedBy            string     `json:"postedBy"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// ReportStatus tracks review progress of a report. Reports are append-only;
// there is no resolution endpoint yet.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
)

// Report flags a problematic job posting.
type Report struct {
	ID         string       `json:"id"`
	ReportedBy string       `json:"reportedBy"`
	Reason     string       `json:"reason"`
	Details    string       `json:"details,omitempty"`
	Status     ReportStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// CreateJobInput carries the fields accepted when posting a job.
type CreateJobInput struct {
	Title               string
	Description         string
	Type                string
	Location            string
	Company             string
	Salary              *int64
	Featured            bool
	Categories          []string
	Tags                []string
	Requirements        []string
	Benefits            []string
	ContactEmail        string
	ContactPhone        string
	ApplicationDeadline *time.Time
}

// JobPatch is a partial update. Nil fields are left untouched; PostedBy is
// deliberately absent.
type JobPatch struct {
	Title               *string
	Description         *string
	Type                *string
	Location            *string
	Company             *string
	Salary              *int64
	Featured            *bool
	IsActive            *bool
	Categories          []string
	Tags                []string
	Requirements        []string
	Benefits            []string
	ContactEmail        *string
	ContactPhone        *string
	ApplicationDeadline *time.Time
}

// ListFilter selects jobs by exact type/location match with pagination.
type ListFilter struct {
	Type     string
	Location string
	Page     int
	Limit    int
}

// Sort directions and fields accepted by Search. Unknown values fall back
// to the defaults, matching the original API's lenient query handling.
const (
	SortByCreatedAt = "createdAt"
	SortBySalary    = "salary"
	SortByTitle     = "title"
	SortByCompany   = "company"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// SearchCriteria drives the advanced search. Keyword matches title OR
// description case-insensitively; location and company are case-insensitive
// substring matches; salary bounds are inclusive and exclude jobs without a
// salary.
type SearchCriteria struct {
	Keyword   string
	Location  string
	Type      string
	Company   string
	MinSalary *int64
	MaxSalary *int64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// Page is the pagination envelope returned with job listings.
type Page struct {
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
	TotalPages  int `json:"totalPages"`
	TotalJobs   int `json:"totalJobs"`
}

// TypeCount pairs a job type with how many postings carry it.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// LocationCount pairs a location with how many postings carry it.
type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// SalaryStats aggregates only jobs with a declared salary.
type SalaryStats struct {
	AverageSalary float64 `json:"averageSalary"`
	MinSalary     int64   `json:"minSalary"`
	MaxSalary     int64   `json:"maxSalary"`
}

// Stats is the catalog-wide aggregate snapshot.
type Stats struct {
	TotalJobs       int             `json:"totalJobs"`
	JobsByType      []TypeCount     `json:"jobsByType"`
	JobsByLocation  []LocationCount `json:"jobsByLocation"`
	SalaryStats     SalaryStats     `json:"salaryStats"`
	RecentJobsCount int             `json:"recentJobsCount"`
}
