package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/fkhayef/splitease/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// MemberIDKey is the context key for the acting group member
	MemberIDKey ContextKey = "member_id"

	// MemberHeader carries the acting member until a real identity provider sits in front of the API.
	MemberHeader = "X-Member-ID"
)

// MemberIdentity reads the acting member from the X-Member-ID header.
// Requests without the header pass through anonymously; a malformed ID is rejected.
func MemberIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(MemberHeader)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		memberID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid "+MemberHeader+" header")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithMemberID(r.Context(), memberID)))
	})
}

// RequireMember rejects anonymous requests.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetMemberID(r.Context()); !ok {
			response.Unauthorized(w, MemberHeader+" header required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithMemberID stores the acting member in ctx.
func WithMemberID(ctx context.Context, memberID uuid.UUID) context.Context {
	return context.WithValue(ctx, MemberIDKey, memberID)
}

// GetMemberID extracts the acting member from the request context
func GetMemberID(ctx context.Context) (uuid.UUID, bool) {
	memberID, ok := ctx.Value(MemberIDKey).(uuid.UUID)
	return memberID, ok
}
