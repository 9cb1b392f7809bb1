package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RegistrationEvent is one life-cycle event from a registration record.
type RegistrationEvent struct {
	Action string    `json:"eventAction"`
	Date   time.Time `json:"eventDate"`
}

// RegistrationRecord is the structured registration data for a domain.
// A record with no events means the registry had no data, which is not
// an error.
type RegistrationRecord struct {
	Domain string              `json:"ldhName,omitempty"`
	Events []RegistrationEvent `json:"events,omitempty"`
}

// RegistrationDate returns the earliest registration-typed event.
func (r *RegistrationRecord) RegistrationDate() (time.Time, bool) {
	if r == nil {
		return time.Time{}, false
	}
	for _, ev := range r.Events {
		if strings.EqualFold(strings.TrimSpace(ev.Action), "registration") && !ev.Date.IsZero() {
			return ev.Date, true
		}
	}
	return time.Time{}, false
}

// RegistrationSource looks up registration data for a domain.
type RegistrationSource interface {
	Lookup(ctx context.Context, domain string) (*RegistrationRecord, error)
}

// RDAPConfig configures the RDAP client.
type RDAPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RDAPClient queries an RDAP bootstrap service for registration events.
type RDAPClient struct {
	baseURL string
	client  *http.Client
}

// NewRDAPClient creates an RDAP client with an abort-on-timeout HTTP
// client so lookups are never left pending.
func NewRDAPClient(cfg RDAPConfig) *RDAPClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://rdap.org"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RDAPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Lookup fetches the registration record for a domain. An unknown domain
// returns an empty record; transport and server failures return an error.
func (c *RDAPClient) Lookup(ctx context.Context, domain string) (*RegistrationRecord, error) {
	url := c.baseURL + "/domain/" + domain
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create rdap request: %w", err)
	}
	req.Header.Set("Accept", "application/rdap+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rdap request failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return &RegistrationRecord{Domain: domain}, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("rdap request failed with status %s", resp.Status)
	}

	var record RegistrationRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode rdap response: %w", err)
	}
	if record.Domain == "" {
		record.Domain = domain
	}
	return &record, nil
}
