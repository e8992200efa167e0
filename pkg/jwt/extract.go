package jwt

import (
	"net/http"
	"strings"
)

// BearerToken extracts a token from an "Authorization: Bearer <token>"
// header per RFC 6750. Returns ErrMissingAuthHeader when the header is
// absent or malformed.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", ErrMissingAuthHeader
	}

	return parts[1], nil
}
