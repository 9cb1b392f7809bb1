package reputation

import (
	"math"
	"regexp"
	"strings"

	"trustmon/pkg/models"
)

// High-risk TLDs seen disproportionately in phishing campaigns.
var highRiskTLDs = map[string]struct{}{
	"xyz": {}, "top": {}, "tk": {}, "ml": {}, "ga": {}, "cf": {}, "gq": {},
	"icu": {}, "club": {}, "work": {}, "click": {}, "link": {}, "rest": {},
	"fit": {}, "loan": {}, "men": {}, "monster": {},
}

// Dynamic DNS zones frequently abused for command-and-control.
var ddnsZones = []string{
	"duckdns.org",
	"no-ip.com",
	"no-ip.org",
	"ddns.net",
	"dyndns.org",
	"hopto.org",
	"zapto.org",
	"myftp.org",
	"serveftp.com",
	"webhop.me",
}

type threatPattern struct {
	name  string
	score int
	re    *regexp.Regexp
}

var suspiciousPatterns = []threatPattern{
	{name: "secure-login-keyword", score: 3, re: regexp.MustCompile(`secure[-_]?login`)},
	{name: "account-verify-keyword", score: 3, re: regexp.MustCompile(`(verify|confirm)[-_]?(account|identity)|account[-_]?(verify|update|confirm)`)},
	{name: "signin-keyword", score: 2, re: regexp.MustCompile(`sign[-_]?in|log[-_]?in[-_]`)},
	{name: "payment-keyword", score: 2, re: regexp.MustCompile(`(billing|invoice|payment|wallet)[-_]`)},
	{name: "support-impersonation", score: 2, re: regexp.MustCompile(`(helpdesk|support|service)[-_]?(center|desk|portal)`)},
	{name: "webscr-keyword", score: 3, re: regexp.MustCompile(`webscr`)},
	{name: "punycode-label", score: 2, re: regexp.MustCompile(`(^|\.)xn--`)},
	{name: "ip-like-label", score: 2, re: regexp.MustCompile(`^\d{1,3}[-.]\d{1,3}[-.]\d{1,3}[-.]\d{1,3}`)},
}

// Well-known domains the pattern analyzer never flags.
var wellKnownSafe = map[string]struct{}{
	"google.com": {}, "youtube.com": {}, "facebook.com": {}, "microsoft.com": {},
	"apple.com": {}, "amazon.com": {}, "github.com": {}, "cloudflare.com": {},
	"wikipedia.org": {}, "mozilla.org": {}, "linkedin.com": {}, "netflix.com": {},
}

// AnalyzeDomain computes the heuristic sub-scores for a domain without any
// network access. The total is informational; it never gates an NRD verdict.
func AnalyzeDomain(domain string) models.ScoreBreakdown {
	domain = normalizeDomain(domain)
	sld, tld := splitDomain(domain)

	var b models.ScoreBreakdown
	b.Entropy = shannonEntropy(sld)
	if len(sld) >= 8 && b.Entropy > 3.5 {
		b.EntropyScore = 2
	}
	if _, ok := highRiskTLDs[tld]; ok {
		b.TLDScore = 3
	}
	if n := strings.Count(sld, "-"); n >= 3 {
		b.HyphenScore = 2
	} else if n == 2 {
		b.HyphenScore = 1
	}
	if digitRatio(sld) > 0.3 {
		b.DigitScore = 2
	}
	if randomLooking(sld) {
		b.RandomScore = 2
	}
	if provider := matchDDNSZone(domain); provider != "" {
		b.DDNSScore = 3
		b.DDNSProvider = provider
	}

	b.TotalScore = b.EntropyScore + b.TLDScore + b.HyphenScore + b.DigitScore + b.RandomScore + b.DDNSScore
	return b
}

// AnalyzeThreat runs the pattern-based analyzer over a domain and grades
// the combined score into a risk level. Well-known safe domains short-circuit
// to a zero result.
func AnalyzeThreat(domain string) models.ThreatAnalysis {
	domain = normalizeDomain(domain)
	analysis := models.ThreatAnalysis{Domain: domain, RiskLevel: models.RiskNone}
	if _, ok := wellKnownSafe[domain]; ok {
		return analysis
	}

	for _, p := range suspiciousPatterns {
		if p.re.MatchString(domain) {
			analysis.Matches = append(analysis.Matches, models.PatternMatch{Name: p.name, Score: p.score})
			analysis.ThreatScore += p.score
		}
	}

	_, tld := splitDomain(domain)
	if _, ok := highRiskTLDs[tld]; ok {
		analysis.Matches = append(analysis.Matches, models.PatternMatch{Name: "high-risk-tld", Score: 2})
		analysis.ThreatScore += 2
	}
	if provider := matchDDNSZone(domain); provider != "" {
		analysis.Matches = append(analysis.Matches, models.PatternMatch{Name: "ddns-zone", Score: 2})
		analysis.ThreatScore += 2
	}

	switch {
	case analysis.ThreatScore == 0:
		analysis.RiskLevel = models.RiskNone
	case analysis.ThreatScore < 4:
		analysis.RiskLevel = models.RiskLow
	case analysis.ThreatScore < 7:
		analysis.RiskLevel = models.RiskMedium
	default:
		analysis.RiskLevel = models.RiskHigh
	}
	return analysis
}

// matchDDNSZone returns the DDNS zone the domain equals or sits under.
func matchDDNSZone(domain string) string {
	for _, zone := range ddnsZones {
		if domain == zone || strings.HasSuffix(domain, "."+zone) {
			return zone
		}
	}
	return ""
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(domain), "."))
}

// splitDomain returns the second-level label and the TLD.
func splitDomain(domain string) (string, string) {
	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return domain, ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int, len(s))
	for _, r := range s {
		freq[r]++
	}
	entropy := 0.0
	n := float64(len([]rune(s)))
	for _, count := range freq {
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func digitRatio(s string) float64 {
	if s == "" {
		return 0
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(s))
}

// randomLooking flags labels with no vowels or long consonant runs,
// a cheap stand-in for dictionary-free generated names.
func randomLooking(s string) bool {
	letters := 0
	vowels := 0
	run := 0
	maxRun := 0
	for _, r := range s {
		if r < 'a' || r > 'z' {
			run = 0
			continue
		}
		letters++
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			vowels++
			run = 0
		default:
			run++
			if run > maxRun {
				maxRun = run
			}
		}
	}
	if letters < 6 {
		return false
	}
	return vowels == 0 || maxRun >= 5
}
