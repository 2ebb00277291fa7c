package biometric

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrSourceUnavailable marks a vendor outage: network failure, 429 or 5xx
// that survived the retry budget. The ingest orchestrator halts the backfill
// loop on this error instead of skipping a date.
var ErrSourceUnavailable = errors.New("biometric source unavailable")

const (
	defaultPageSize   = 200
	defaultMaxRetries = 3
	backoffBase       = 500 * time.Millisecond
)

type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	MaxRetries  int
	// DurationsInSeconds: vendor duration fields are seconds instead of the
	// default minutes.
	DurationsInSeconds bool
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger ...*zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	l := zap.L().Named("biometric.client")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("biometric.client")
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     l,
	}
}

func (c *Client) DurationsInSeconds() bool {
	return c.cfg.DurationsInSeconds
}

// FetchReport pulls all pages of the attendance report for the query window.
func (c *Client) FetchReport(ctx context.Context, q ReportQuery) ([]ReportRecord, error) {
	var records []ReportRecord

	for pageNo := 1; ; pageNo++ {
		body := map[string]any{
			"beginTime": q.Begin.Format(vendorTimeLayout),
			"endTime":   q.End.Format(vendorTimeLayout),
			"pageNo":    pageNo,
			"pageSize":  defaultPageSize,
		}
		if len(q.ScopeCodes) > 0 {
			body["deptCodes"] = q.ScopeCodes
		}
		if q.PersonCode != "" {
			body["personCode"] = q.PersonCode
		}

		env, err := c.postPage(ctx, "/api/report/attendance", body)
		if err != nil {
			return nil, err
		}

		for _, raw := range env.Data.rows() {
			var rec ReportRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				c.logger.Warn("skip malformed report row", zap.Int("page", pageNo), zap.Error(err))
				continue
			}
			records = append(records, rec)
		}

		if !env.Data.hasNext() {
			return records, nil
		}
	}
}

// FetchPersons pulls the full vendor directory.
func (c *Client) FetchPersons(ctx context.Context) ([]Person, error) {
	var persons []Person

	for pageNo := 1; ; pageNo++ {
		body := map[string]any{
			"pageNo":   pageNo,
			"pageSize": defaultPageSize,
		}

		env, err := c.postPage(ctx, "/api/person/list", body)
		if err != nil {
			return nil, err
		}

		for _, raw := range env.Data.rows() {
			var p Person
			if err := json.Unmarshal(raw, &p); err != nil {
				c.logger.Warn("skip malformed person row", zap.Int("page", pageNo), zap.Error(err))
				continue
			}
			persons = append(persons, p)
		}

		if !env.Data.hasNext() {
			return persons, nil
		}
	}
}

// postPage performs one paginated call with bounded retry. 429 and 5xx get
// exponential backoff; exhausting the budget surfaces ErrSourceUnavailable.
func (c *Client) postPage(ctx context.Context, path string, body map[string]any) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := backoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("vendor request failed", zap.String("path", path), zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			lastErr = fmt.Errorf("vendor returned status %d", resp.StatusCode)
			c.logger.Warn("vendor request retriable status",
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("vendor returned status %d for %s", resp.StatusCode, path)
		}

		var env envelope
		decodeErr := json.NewDecoder(resp.Body).Decode(&env)
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("decode vendor response for %s: %w", path, decodeErr)
		}
		if env.Code != 0 {
			return nil, fmt.Errorf("vendor error code %d for %s: %s", env.Code, path, env.Msg)
		}
		return &env, nil
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, lastErr)
}
