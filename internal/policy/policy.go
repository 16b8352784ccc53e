// Package policy holds the ownership and role rules that decide who may
// read, mutate or delete jobs and applications. Every rule is a pure
// function over the verified subject and the owning-user references of the
// resource, so the rules are trivially table-testable.
//
// Callers load the resource before consulting the policy: a missing
// resource is reported as not-found and never as forbidden.
package policy

import "jobdesk.org/internal/identity"

// CanManageJob reports whether the subject may update or delete a job.
// Allowed for the posting owner and for admins.
func CanManageJob(sub identity.Subject, postedBy string) bool {
	return sub.UserID == postedBy || sub.IsAdmin()
}

// CanViewApplications reports whether the subject may list the applications
// submitted for a job. Same rule as managing the job.
func CanViewApplications(sub identity.Subject, postedBy string) bool {
	return CanManageJob(sub, postedBy)
}

// CanUpdateApplicationStatus reports whether the subject may transition an
// application's status. Same rule as managing the job.
func CanUpdateApplicationStatus(sub identity.Subject, postedBy string) bool {
	return CanManageJob(sub, postedBy)
}

// CanDeleteApplication reports whether the subject may delete an
// application: the job owner, the applicant themself, or an admin.
func CanDeleteApplication(sub identity.Subject, postedBy, applicant string) bool {
	return sub.UserID == postedBy || sub.UserID == applicant || sub.IsAdmin()
}

// CanApply reports whether the subject may apply to a job. Any
// authenticated subject qualifies; notably the job owner is not excluded
// from applying to their own posting.
func CanApply(sub identity.Subject, postedBy string) bool {
	return sub.UserID != ""
}
