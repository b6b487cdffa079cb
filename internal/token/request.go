package token

import (
	"net/http"
	"strings"
)

// FromRequest extracts the bearer credential from the Authorization
// header. A raw token without the "Bearer " prefix is also accepted.
func FromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
