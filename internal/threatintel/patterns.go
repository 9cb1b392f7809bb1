package threatintel

import (
	"context"
	"regexp"
	"strings"
	"time"

	"trustmon/pkg/models"
)

type domainPattern struct {
	re         *regexp.Regexp
	category   models.ThreatCategory
	severity   models.Severity
	confidence int
}

var defaultDomainPatterns = []domainPattern{
	{re: regexp.MustCompile(`(^|\.)([a-z0-9-]*-)?(secure|verify|confirm)-?(login|account|signin)[a-z0-9-]*\.`), category: models.CategoryPhishing, severity: models.SeverityHigh, confidence: 70},
	{re: regexp.MustCompile(`(^|\.)[a-z]{16,}\.(xyz|top|tk|ml|ga|cf|gq|icu)$`), category: models.CategorySuspicious, severity: models.SeverityMedium, confidence: 55},
	{re: regexp.MustCompile(`webscr|paypal.*-(secure|verify)|-paypal`), category: models.CategoryPhishing, severity: models.SeverityHigh, confidence: 75},
	{re: regexp.MustCompile(`(^|\.)(duckdns\.org|no-ip\.(com|org)|ddns\.net|hopto\.org|zapto\.org)$`), category: models.CategoryDDNS, severity: models.SeverityMedium, confidence: 60},
	{re: regexp.MustCompile(`(^|\.)xn--`), category: models.CategorySuspicious, severity: models.SeverityMedium, confidence: 50},
}

// Domains the fast matcher always skips.
var defaultAllowlist = []string{
	"google.com", "youtube.com", "facebook.com", "microsoft.com", "apple.com",
	"amazon.com", "github.com", "cloudflare.com", "wikipedia.org", "mozilla.org",
}

// PatternChecker is the fast local matcher against known-malicious
// domain shapes.
type PatternChecker struct {
	patterns  []domainPattern
	allowlist map[string]struct{}
	now       func() time.Time
}

// NewPatternChecker builds the matcher; extra allowlist entries extend
// the built-in safe set.
func NewPatternChecker(allowlist []string) *PatternChecker {
	allow := make(map[string]struct{}, len(defaultAllowlist)+len(allowlist))
	for _, d := range defaultAllowlist {
		allow[d] = struct{}{}
	}
	for _, d := range allowlist {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			allow[d] = struct{}{}
		}
	}
	return &PatternChecker{
		patterns:  defaultDomainPatterns,
		allowlist: allow,
		now:       time.Now,
	}
}

// Name identifies this source in merged results.
func (c *PatternChecker) Name() models.ThreatSource {
	return models.SourcePatterns
}

// Check matches the domain against the pattern set.
func (c *PatternChecker) Check(ctx context.Context, indicator string) (*models.ThreatCheckResult, error) {
	domain := strings.ToLower(strings.TrimSpace(indicator))
	if _, ok := c.allowlist[domain]; ok {
		return nil, nil
	}

	var (
		categories []models.ThreatCategory
		severity   models.Severity
		confidence int
	)
	for _, p := range c.patterns {
		if !p.re.MatchString(domain) {
			continue
		}
		categories = appendCategory(categories, p.category)
		severity = models.MaxSeverity(severity, p.severity)
		if p.confidence > confidence {
			confidence = p.confidence
		}
	}
	if len(categories) == 0 {
		return nil, nil
	}

	return &models.ThreatCheckResult{
		Indicator:     domain,
		IndicatorType: models.IndicatorDomain,
		IsThreat:      true,
		Severity:      severity,
		Categories:    categories,
		Sources:       []models.ThreatSource{c.Name()},
		Confidence:    confidence,
		CheckedAt:     c.now(),
	}, nil
}

func appendCategory(list []models.ThreatCategory, c models.ThreatCategory) []models.ThreatCategory {
	for _, existing := range list {
		if existing == c {
			return list
		}
	}
	return append(list, c)
}
