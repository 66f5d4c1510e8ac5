package services

import (
	"context"

	"cloudfiles/internal/domain/models"
)

// ActivityRecorder reports user activity to the external activity log.
// Record must not block on the network and never fails the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, action string, attrs models.ActivityAttributes)
}

// ActivityLogReader reads back the external activity log
type ActivityLogReader interface {
	// Enabled reports whether the external log is configured
	Enabled() bool

	// QueryLogs returns the raw JSON log listing from the external function
	QueryLogs(ctx context.Context, q models.LogQuery) ([]byte, error)

	// Stats counts one day of activity per action
	Stats(ctx context.Context, date string) (*models.LogStats, error)

	// Submit records a client-supplied entry synchronously and returns the function's reply
	Submit(ctx context.Context, entry models.ActivityAttributes) ([]byte, error)
}
