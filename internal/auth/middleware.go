package auth

import (
	"errors"
	"net/http"

	"postboard/internal/httpx"
	"postboard/internal/storage"
	"postboard/pkg/jwt"
)

// Response details for authentication failures. Expiry gets its own message;
// everything else collapses into a generic one.
const (
	detailExpiredToken       = "Token has expired."
	detailInvalidCredentials = "Could not validate credentials"
	detailUserNotFound       = "Could not find user for this token"
)

// RequireUser guards a route with bearer token authentication. On success
// the resolved user is stored in the request context; every failure is a 401
// with a WWW-Authenticate hint.
func (s *Service) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := jwt.BearerToken(r)
		if err != nil {
			unauthorized(w, detailInvalidCredentials)
			return
		}

		emailAddr, err := s.tokens.ResolveSubject(token, TokenTypeAccess)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				unauthorized(w, detailExpiredToken)
				return
			}
			unauthorized(w, detailInvalidCredentials)
			return
		}

		user, err := s.users.FindByEmail(r.Context(), emailAddr)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				unauthorized(w, detailUserNotFound)
				return
			}
			httpx.Detail(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	httpx.Detail(w, http.StatusUnauthorized, detail)
}
