package threatintel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trustmon/pkg/models"
)

// FeedConfig configures one external reputation feed.
type FeedConfig struct {
	Name    string
	URL     string
	APIKey  string
	Timeout time.Duration
}

// feedResponse is the wire shape a reputation feed answers with. A
// status other than malicious/suspicious is the "no data" sentinel.
type feedResponse struct {
	Status     string `json:"status"`
	Category   string `json:"category,omitempty"`
	Confidence int    `json:"confidence,omitempty"`
}

// FeedChecker queries a remote reputation feed by host. Failures return
// an error so the aggregator can degrade them to no opinion.
type FeedChecker struct {
	name   models.ThreatSource
	url    string
	apiKey string
	client *http.Client
	now    func() time.Time
}

// NewFeedChecker creates a feed client with an abort-on-timeout HTTP client.
func NewFeedChecker(cfg FeedConfig) (*FeedChecker, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("feed URL is empty")
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "feed"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FeedChecker{
		name:   models.ThreatSource(name),
		url:    strings.TrimRight(cfg.URL, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}, nil
}

// Name identifies this source in merged results.
func (c *FeedChecker) Name() models.ThreatSource {
	return c.name
}

// Check looks the host up in the remote feed.
func (c *FeedChecker) Check(ctx context.Context, indicator string) (*models.ThreatCheckResult, error) {
	domain := strings.ToLower(strings.TrimSpace(indicator))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/lookup?host="+url.QueryEscape(domain), nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("feed request failed with status %s", resp.Status)
	}

	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	var severity models.Severity
	switch strings.ToLower(body.Status) {
	case "malicious":
		severity = models.SeverityHigh
	case "suspicious":
		severity = models.SeverityMedium
	default:
		return nil, nil
	}

	category := models.ThreatCategory(strings.ToLower(strings.TrimSpace(body.Category)))
	if category == "" {
		category = models.CategorySuspicious
	}
	confidence := body.Confidence
	if confidence <= 0 || confidence > 100 {
		confidence = 50
	}

	return &models.ThreatCheckResult{
		Indicator:     domain,
		IndicatorType: models.IndicatorDomain,
		IsThreat:      true,
		Severity:      severity,
		Categories:    []models.ThreatCategory{category},
		Sources:       []models.ThreatSource{c.name},
		Confidence:    confidence,
		CheckedAt:     c.now(),
	}, nil
}
