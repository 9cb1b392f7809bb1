package threatintel

import (
	"context"
	"strings"
	"sync"
	"time"

	"trustmon/pkg/models"
)

type blockEntry struct {
	category models.ThreatCategory
	severity models.Severity
}

// BlocklistChecker answers membership queries against a local blocklist.
// A listed domain also matches every subdomain beneath it.
type BlocklistChecker struct {
	mu      sync.RWMutex
	domains map[string]blockEntry
	now     func() time.Time
}

// NewBlocklistChecker builds a checker over the given domains, which are
// treated as high-severity malware entries.
func NewBlocklistChecker(domains []string) *BlocklistChecker {
	c := &BlocklistChecker{
		domains: make(map[string]blockEntry, len(domains)),
		now:     time.Now,
	}
	for _, d := range domains {
		c.Add(d, models.CategoryMalware, models.SeverityHigh)
	}
	return c
}

// Add lists a domain with its category and severity.
func (c *BlocklistChecker) Add(domain string, category models.ThreatCategory, severity models.Severity) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.domains[domain] = blockEntry{category: category, severity: severity}
}

// Len returns the number of listed domains.
func (c *BlocklistChecker) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.domains)
}

// Name identifies this source in merged results.
func (c *BlocklistChecker) Name() models.ThreatSource {
	return models.SourceBlocklist
}

// Check walks the domain and each dot-delimited parent suffix against
// the list, so "a.b.evil.example" matches an entry for "evil.example".
func (c *BlocklistChecker) Check(ctx context.Context, indicator string) (*models.ThreatCheckResult, error) {
	domain := strings.ToLower(strings.TrimSpace(indicator))
	if domain == "" {
		return nil, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	parts := strings.Split(domain, ".")
	for i := 0; i < len(parts)-1; i++ {
		candidate := strings.Join(parts[i:], ".")
		entry, ok := c.domains[candidate]
		if !ok {
			continue
		}
		return &models.ThreatCheckResult{
			Indicator:     domain,
			IndicatorType: models.IndicatorDomain,
			IsThreat:      true,
			Severity:      entry.severity,
			Categories:    []models.ThreatCategory{entry.category},
			Sources:       []models.ThreatSource{c.Name()},
			Confidence:    90,
			CheckedAt:     c.now(),
		}, nil
	}
	return nil, nil
}
