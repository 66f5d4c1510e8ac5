// Package activity talks to the external activity-log function: it sends
// activity records in the background and proxies log queries.
package activity

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goccy/go-json"

	"cloudfiles/internal/config"
	"cloudfiles/internal/domain"
	"cloudfiles/internal/domain/models"
	"cloudfiles/internal/domain/services"
	"cloudfiles/internal/httputil"
)

const (
	// DefaultTimeout bounds every call to the external function
	DefaultTimeout = 5 * time.Second
	// maxInFlight bounds background deliveries; extra records are dropped
	maxInFlight = 64
	// statsLimit is the number of records read to compute daily stats
	statsLimit = 1000

	logActivityPath = "/api/logActivity"
	getLogsPath     = "/api/getlogs"
)

// UpstreamError carries a non-2xx status returned by the external function
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("activity function returned %d: %s", e.Status, e.Body)
}

// StatusCode implements domain.HTTPError
func (e *UpstreamError) StatusCode() int { return e.Status }

// Client implements services.ActivityRecorder and services.ActivityLogReader
type Client struct {
	baseURL    string
	key        string
	enabled    bool
	httpClient *http.Client
	logger     *slog.Logger

	slots chan struct{}
	wg    sync.WaitGroup
	now   func() time.Time
}

var (
	_ services.ActivityRecorder  = (*Client)(nil)
	_ services.ActivityLogReader = (*Client)(nil)
)

// NewClient creates an activity client. With logging disabled or no URL,
// Record only logs locally and the reader methods return ErrUnavailable.
func NewClient(cfg config.ActivityConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    cfg.FunctionURL,
		key:        cfg.FunctionKey,
		enabled:    cfg.Enabled && cfg.FunctionURL != "",
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
		slots:      make(chan struct{}, maxInFlight),
		now:        time.Now,
	}
}

// Enabled reports whether the external log is configured
func (c *Client) Enabled() bool { return c.enabled }

// Record sends one activity record in the background. The caller's
// identity is read from ctx before returning; the request itself is not
// tied to ctx so it survives the end of the HTTP request.
func (c *Client) Record(ctx context.Context, action string, attrs models.ActivityAttributes) {
	c.logger.Debug("activity", "action", action, "file_id", attrs["fileId"], "folder_id", attrs["folderId"])
	if !c.enabled {
		return
	}

	entry := c.stamp(ctx, action, attrs)

	select {
	case c.slots <- struct{}{}:
	default:
		c.logger.Warn("activity log backlog full, dropping record", "action", action)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() { <-c.slots }()

		sendCtx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		if _, err := c.post(sendCtx, entry); err != nil {
			c.logger.Warn("failed to send activity record", "action", action, "error", err)
		}
	}()
}

// Close waits for background deliveries, or until ctx is done
func (c *Client) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueryLogs forwards a log query and returns the function's JSON reply
func (c *Client) QueryLogs(ctx context.Context, q models.LogQuery) ([]byte, error) {
	if !c.enabled {
		return nil, fmt.Errorf("activity log: %w", domain.ErrUnavailable)
	}
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	params := url.Values{}
	if q.Date != "" {
		params.Set("date", q.Date)
	}
	if q.Action != "" {
		params.Set("action", q.Action)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	return c.get(ctx, params)
}

func validateQuery(q models.LogQuery) error {
	err := validation.ValidateStruct(&q,
		validation.Field(&q.Date, validation.Date(time.DateOnly)),
		validation.Field(&q.Limit, validation.Min(0), validation.Max(statsLimit)),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// Stats counts one day of activity per action (today when date is empty)
func (c *Client) Stats(ctx context.Context, date string) (*models.LogStats, error) {
	if date == "" {
		date = c.now().UTC().Format(time.DateOnly)
	}

	body, err := c.QueryLogs(ctx, models.LogQuery{Date: date, Limit: statsLimit})
	if err != nil {
		return nil, err
	}

	var listing struct {
		Logs []struct {
			Action string `json:"action"`
		} `json:"logs"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("parse activity logs: %w", err)
	}

	stats := &models.LogStats{
		Total:    len(listing.Logs),
		ByAction: make(map[string]int, len(models.StatsActions)),
		Date:     date,
	}
	for _, action := range models.StatsActions {
		stats.ByAction[action] = 0
	}
	for _, l := range listing.Logs {
		if _, counted := stats.ByAction[l.Action]; counted {
			stats.ByAction[l.Action]++
		}
	}

	return stats, nil
}

// Submit records a client-supplied entry synchronously
func (c *Client) Submit(ctx context.Context, entry models.ActivityAttributes) ([]byte, error) {
	if !c.enabled {
		return nil, fmt.Errorf("activity log: %w", domain.ErrUnavailable)
	}
	action, _ := entry["action"].(string)
	return c.post(ctx, c.stamp(ctx, action, entry))
}

// stamp copies attrs and adds the action, caller identity and timestamp
func (c *Client) stamp(ctx context.Context, action string, attrs models.ActivityAttributes) models.ActivityAttributes {
	info := httputil.ClientInfoFrom(ctx)

	entry := make(models.ActivityAttributes, len(attrs)+5)
	for k, v := range attrs {
		entry[k] = v
	}
	entry["action"] = action
	entry["userIp"] = info.IP
	entry["userAgent"] = info.UserAgent
	entry["timestamp"] = c.now().UTC().Format(time.RFC3339Nano)
	if userID := httputil.UserIDFrom(ctx); userID != "" {
		entry["userId"] = userID
	}
	return entry
}

func (c *Client) post(ctx context.Context, entry models.ActivityAttributes) ([]byte, error) {
	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode activity record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(logActivityPath, nil), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(getLogsPath, params), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	return body, nil
}

// endpoint builds "<base><path>?<params>&code=<key>"
func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	if c.key != "" {
		params.Set("code", c.key)
	}
	u := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}
