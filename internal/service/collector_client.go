package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/noah-isme/erp-access-api/internal/models"
)

// CollectorClient forwards audit records to a remote collector over HTTP.
// Delivery is best-effort: the collector deduplicates on the record id and
// overwrites the client-reported IP address with the one it observed, since
// the client-side value is only a placeholder.
type CollectorClient struct {
	url    string
	client *http.Client
}

// NewCollectorClient builds a collector sink for the given endpoint.
func NewCollectorClient(url string, timeout time.Duration) *CollectorClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CollectorClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name identifies this sink in diagnostics and metrics.
func (c *CollectorClient) Name() string {
	return "collector"
}

// Store posts one audit record to the collector.
func (c *CollectorClient) Store(ctx context.Context, log *models.AuditLog) error {
	payload, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build collector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post audit record: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		return fmt.Errorf("collector rejected audit record: status %d", resp.StatusCode)
	}
	return nil
}
