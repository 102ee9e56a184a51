package httpapi

import (
	"context"

	"github.com/Overland-East-Bay/club-registry/internal/domain"
)

type subjectKey struct{}

func WithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subjectID)
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(subjectKey{}).(string)
	return v, ok && v != ""
}

// originFor turns an authenticated subject into a registry origin.
func originFor(sub string, root domain.SubjectID) domain.Origin {
	if root != "" && domain.SubjectID(sub) == root {
		return domain.RootOrigin()
	}
	return domain.SignedOrigin(domain.SubjectID(sub))
}
