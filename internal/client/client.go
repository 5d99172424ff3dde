// Package client provides an HTTP client for the policy engine API, used by
// the policyctl command-line tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/strideiq/policyengine/internal/audit"
	"github.com/strideiq/policyengine/internal/engine"
	"github.com/strideiq/policyengine/internal/rules"
)

// Client is an HTTP client for the policy engine API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Evaluate submits an expense for evaluation.
func (c *Client) Evaluate(ctx context.Context, orgID string, expense engine.Expense) (*engine.Result, error) {
	var result engine.Result
	path := fmt.Sprintf("/orgs/%s/policy/evaluate", url.PathEscape(orgID))
	if err := c.do(ctx, http.MethodPost, path, expense, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecentAudits retrieves the last limit audit entries for an org.
func (c *Client) RecentAudits(ctx context.Context, orgID string, limit int) ([]audit.Entry, error) {
	var resp struct {
		Entries []audit.Entry `json:"entries"`
	}
	path := fmt.Sprintf("/orgs/%s/policy/audit?limit=%s", url.PathEscape(orgID), strconv.Itoa(limit))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// ListRules retrieves every rule for an org.
func (c *Client) ListRules(ctx context.Context, orgID string) ([]rules.Rule, error) {
	var resp struct {
		Rules []rules.Rule `json:"rules"`
	}
	path := fmt.Sprintf("/orgs/%s/policy/rules", url.PathEscape(orgID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rules, nil
}

// UpsertRule creates or updates a rule.
func (c *Client) UpsertRule(ctx context.Context, orgID string, rule rules.Rule) error {
	path := fmt.Sprintf("/orgs/%s/policy/rules", url.PathEscape(orgID))
	return c.do(ctx, http.MethodPost, path, rule, nil)
}

// DeleteRule removes a rule by id.
func (c *Client) DeleteRule(ctx context.Context, orgID, id string) error {
	path := fmt.Sprintf("/orgs/%s/policy/rules/%s", url.PathEscape(orgID), url.PathEscape(id))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
