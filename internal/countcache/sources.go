package countcache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Counter is anything that can produce the current signup count; the sheets
// ledger backend satisfies it with its row count.
type Counter interface {
	RowCount(ctx context.Context) (int, error)
}

// FromCounter adapts a Counter into a FetchFunc.
func FromCounter(c Counter) FetchFunc {
	return func(ctx context.Context) (int, error) {
		return c.RowCount(ctx)
	}
}

// HTTPSource delegates counting to a separately hosted endpoint returning
// {"count": n}.
func HTTPSource(endpoint string, client *http.Client) FetchFunc {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return func(ctx context.Context) (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return 0, fmt.Errorf("count request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return 0, fmt.Errorf("count fetch: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return 0, fmt.Errorf("count fetch: unexpected status %d", resp.StatusCode)
		}
		var body struct {
			Count int `json:"count"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return 0, fmt.Errorf("count decode: %w", err)
		}
		return body.Count, nil
	}
}
