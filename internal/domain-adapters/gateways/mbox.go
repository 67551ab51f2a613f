package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rbowen/verify-release/internal/domain/interfaces"
)

// mbox responses for a busy month can run large; cap reads anyway
const maxMboxSize = 64 * 1024 * 1024

// MailingListGateway fetches monthly mbox archives from the Apache
// mailing-list API.
type MailingListGateway struct {
	httpClient *http.Client
	baseURL    string
	log        interfaces.Logger
}

// NewMailingListGateway creates a gateway against lists.apache.org
func NewMailingListGateway(log interfaces.Logger) *MailingListGateway {
	return &MailingListGateway{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		baseURL:    "https://lists.apache.org/api/mbox.lua",
		log:        log,
	}
}

// FetchMbox returns the raw mbox content of dev@<project>.apache.org
// for the given YYYY-MM month.
func (g *MailingListGateway) FetchMbox(ctx context.Context, project, month string) (string, error) {
	url := fmt.Sprintf("%s?list=dev@%s.apache.org&date=%s", g.baseURL, project, month)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMboxSize))
	if err != nil {
		return "", fmt.Errorf("failed to read mbox: %w", err)
	}
	return string(data), nil
}
