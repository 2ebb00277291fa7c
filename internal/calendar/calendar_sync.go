package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSyncSource pulls day statuses from the external calendar system. The
// feed answers one (date, day type) pair per day in the requested window.
type HTTPSyncSource struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPSyncSource(baseURL string, timeout time.Duration) *HTTPSyncSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPSyncSource{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type dayStatusPayload struct {
	Date    string `json:"date"`
	DayType int    `json:"day_type"`
}

func (s *HTTPSyncSource) FetchDayStatuses(ctx context.Context, from, to time.Time) ([]DayStatus, error) {
	url := fmt.Sprintf("%s/day-types?from=%s&to=%s",
		s.baseURL,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar feed returned status %d", resp.StatusCode)
	}

	var payload []dayStatusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode calendar feed response: %w", err)
	}

	days := make([]DayStatus, 0, len(payload))
	for _, p := range payload {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			continue
		}
		days = append(days, DayStatus{Date: date, Working: p.DayType == 1})
	}
	return days, nil
}
