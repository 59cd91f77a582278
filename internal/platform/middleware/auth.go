package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"leadflow/internal/identity"
)

// RevocationChecker reports whether a token's JTI has been revoked (logout).
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JTIExtractor pulls the JTI out of an already-valid credential. The JWT
// service implements it alongside identity.Verifier.
type JTIExtractor interface {
	ParseClaims(credential string) (*identity.Claims, error)
}

// Context key for the authenticated identity.
type contextKeyIdentity struct{}

// ContextKeyIdentity is exported for use in handlers and tests.
var ContextKeyIdentity = contextKeyIdentity{}

// GetIdentity retrieves the authenticated identity from the context.
func GetIdentity(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(ContextKeyIdentity).(identity.Identity)
	return id, ok
}

// WithIdentity returns a context carrying the identity, for tests and the
// realtime gate which authenticates outside this middleware.
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}

// RequireAuth authenticates the request's bearer credential and stores the
// resulting identity in context. The revocation checker is optional; when nil,
// logout is purely client-side.
func RequireAuth(verifier identity.Verifier, jtis JTIExtractor, revocations RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			id, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			if revocations != nil && jtis != nil {
				claims, err := jtis.ParseClaims(token)
				if err != nil || claims.ID == "" {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
					return
				}
				revoked, err := revocations.IsRevoked(ctx, claims.ID)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation",
						"error", err,
						"request_id", GetRequestID(ctx),
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate token")
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked",
						"jti", claims.ID,
						"request_id", GetRequestID(ctx),
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token has been revoked")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}

// RequireRoles gates a subtree on the authenticated identity's role. Must run
// after RequireAuth.
func RequireRoles(roles ...identity.Role) func(http.Handler) http.Handler {
	allowed := make(map[identity.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing authentication")
				return
			}
			if _, ok := allowed[id.Role]; !ok {
				writeJSONError(w, http.StatusForbidden, "forbidden", "Access denied: insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
