package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/httputil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticVerifier accepts exactly one token
type staticVerifier struct {
	token   string
	subject string
}

func (v staticVerifier) VerifyToken(token string) (*models.Claims, error) {
	if token != v.token {
		return nil, domain.ErrUnauthorized
	}
	return &models.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: v.subject}}, nil
}

func (v staticVerifier) Close() error { return nil }

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(httputil.UserIDFrom(r.Context())))
}

func TestAuth(t *testing.T) {
	h := Auth(staticVerifier{token: "good", subject: "user-7"}, discardLogger())(http.HandlerFunc(echoUser))

	tests := []struct {
		name       string
		target     string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"bearer header", "/api/folders", "Bearer good", http.StatusOK, "user-7"},
		{"query token", "/api/events?access_token=good", "", http.StatusOK, "user-7"},
		{"bad token", "/api/folders", "Bearer bad", http.StatusUnauthorized, ""},
		{"missing token", "/api/folders", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/api/folders", "Basic good", http.StatusUnauthorized, ""},
		{"public health", "/health", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuth_NilVerifierDisablesAuth(t *testing.T) {
	h := Auth(nil, discardLogger())(http.HandlerFunc(echoUser))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/folders", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestClientInfo(t *testing.T) {
	var got httputil.ClientInfo
	h := ClientInfo(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = httputil.ClientInfoFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	req.RemoteAddr = "192.0.2.10:5123"
	req.Header.Set("User-Agent", "curl/8")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.10", got.IP)
	assert.Equal(t, "curl/8", got.UserAgent)
}
