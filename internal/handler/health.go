package handler

import (
	"net/http"
	"time"

	"cloudfiles/internal/httputil"
)

// SubscriberCounter reports the number of live event subscriptions
type SubscriberCounter interface {
	Count() int
}

// HealthCheck reports liveness and the current subscriber count
// GET /health
func HealthCheck(subscribers SubscriberCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"subscribers": subscribers.Count(),
		})
	}
}
