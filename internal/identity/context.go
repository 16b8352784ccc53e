package identity

import "context"

type ctxKey string

const subjectKey ctxKey = "identity_subject"

// ContextWithSubject stores the verified caller identity in the context.
func ContextWithSubject(ctx context.Context, sub Subject) context.Context {
	return context.WithValue(ctx, subjectKey, sub)
}

// SubjectFromContext extracts the authenticated subject from the context.
func SubjectFromContext(ctx context.Context) (Subject, bool) {
	sub, ok := ctx.Value(subjectKey).(Subject)
	if !ok || sub.UserID == "" {
		return Subject{}, false
	}
	return sub, true
}
