package riskapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the risk service over HTTP. One invocation issues at
// most one batched query regardless of how many packages it carries.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client for the given service base URL. The token may
// be empty; the service then answers with public data only.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// component is one entry in the batched request body.
type component struct {
	Purl string `json:"purl"`
}

// row is one NDJSON line of the batched response.
type row struct {
	Purl   string  `json:"purl"`
	Alerts []Alert `json:"alerts"`
}

// Query sends the full PURL set in a single request and decodes the
// alerts in service response order. The actions list is forwarded as a
// request-side filter so non-blocking alerts are not even returned;
// it is advisory, so callers must still re-apply their policy locally.
func (c *Client) Query(ctx context.Context, purls, actions []string) (*AlertsMap, error) {
	body := struct {
		Components []component `json:"components"`
	}{Components: make([]component, len(purls))}
	for i, p := range purls {
		body.Components[i] = component{Purl: p}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("riskapi: marshal request: %w", err)
	}

	endpoint := c.baseURL + "/purl"
	if len(actions) > 0 {
		endpoint += "?actions=" + url.QueryEscape(strings.Join(actions, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("riskapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("riskapi: query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("riskapi: query: unexpected status %d", resp.StatusCode)
	}

	// The service streams one JSON object per line (NDJSON) so large
	// batches do not buffer server-side.
	out := NewAlertsMap()
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var r row
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("riskapi: decode response row: %w", err)
		}
		for _, a := range r.Alerts {
			out.Add(r.Purl, a)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("riskapi: read response: %w", err)
	}

	return out, nil
}
