package httpx

import (
	"net/http"
	"strings"

	"github.com/decoder-44/vehicle-service-super-app/internal/auth"
)

// Authenticate verifies the bearer token and stores the principal on the
// request context. Everything behind it can assume a valid identity.
func Authenticate(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			p, err := tokens.Verify(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFrom(r.Context())
	return p
}

// requireRole writes a 403 and returns false when the caller's role is not
// in the allowed set.
func requireRole(w http.ResponseWriter, r *http.Request, roles ...string) (auth.Principal, bool) {
	p := principal(r)
	for _, role := range roles {
		if p.Role == role {
			return p, true
		}
	}
	writeError(w, http.StatusForbidden, "insufficient role")
	return p, false
}
