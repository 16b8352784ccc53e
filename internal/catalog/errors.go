package catalog

import "errors"

var (
	// ErrNotFound signals the referenced job does not exist.
	ErrNotFound = errors.New("catalog: job not found")
	// ErrInvalidInput signals missing or malformed job fields.
	ErrInvalidInput = errors.New("catalog: invalid input")
	// ErrAlreadySaved signals a duplicate saved-job entry.
	ErrAlreadySaved = errors.New("catalog: job already saved")
	// ErrForbidden signals the subject may not act on the job.
	ErrForbidden = errors.New("catalog: forbidden")
)
