package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/frmai/coin-ledger/pkg/auth"
)

// AdminAuth guards privileged routes behind a shared key. Requests must
// send the key in X-Admin-Key and identify the operator in X-Admin-Id; the
// operator id ends up on the request context for audit trails.
func AdminAuth(adminKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" {
				http.Error(w, "Admin API is not configured", http.StatusForbidden)
				return
			}

			provided := r.Header.Get("X-Admin-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			adminID := r.Header.Get("X-Admin-Id")
			if adminID == "" {
				http.Error(w, "X-Admin-Id header is required", http.StatusBadRequest)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithAdmin(r.Context(), adminID)))
		}
		return http.HandlerFunc(fn)
	}
}
