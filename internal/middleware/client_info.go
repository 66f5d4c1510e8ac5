package middleware

import (
	"net/http"

	"cloudfiles/internal/httputil"
)

// ClientInfo records the caller's address and user agent for the activity log
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, httputil.WithClientInfo(r))
	})
}
