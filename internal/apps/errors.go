package apps

import "errors"

var (
	// ErrNotFound signals the referenced application does not exist or does
	// not belong to the addressed job.
	ErrNotFound = errors.New("apps: application not found")
	// ErrAlreadyApplied signals a duplicate (job, applicant) pair.
	ErrAlreadyApplied = errors.New("apps: already applied")
	// ErrInvalidInput signals missing or malformed application fields.
	ErrInvalidInput = errors.New("apps: invalid input")
	// ErrForbidden signals the subject may not act on the application.
	ErrForbidden = errors.New("apps: forbidden")
)
