package httputil

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey string

const (
	userIDKey     contextKey = "userID"
	clientInfoKey contextKey = "clientInfo"
)

// ClientInfo identifies the caller for the activity log
type ClientInfo struct {
	IP        string
	UserAgent string
}

// WithUserID adds userID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// UserIDFrom returns the authenticated user ID, empty when auth is off
func UserIDFrom(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// WithClientInfo adds the caller's address and user agent to the request context
func WithClientInfo(r *http.Request) *http.Request {
	info := ClientInfo{IP: clientIP(r), UserAgent: r.UserAgent()}
	return r.WithContext(context.WithValue(r.Context(), clientInfoKey, info))
}

// ClientInfoFrom returns the caller info; unknown fields read "unknown"
func ClientInfoFrom(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientInfoKey).(ClientInfo)
	if info.IP == "" {
		info.IP = "unknown"
	}
	if info.UserAgent == "" {
		info.UserAgent = "unknown"
	}
	return info
}

// clientIP prefers the first X-Forwarded-For hop, as the server usually
// runs behind a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
