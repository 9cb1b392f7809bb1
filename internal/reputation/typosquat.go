package reputation

import (
	"strings"
	"time"
	"unicode"

	"trustmon/pkg/models"
)

// TyposquatConfig tunes the impersonation detector.
type TyposquatConfig struct {
	// Brands are reference domains (e.g. "paypal.com") candidate domains
	// are compared against. Empty uses the built-in list.
	Brands []string
}

// Reference domains most often imitated in credential phishing.
var defaultBrands = []string{
	"google.com",
	"facebook.com",
	"apple.com",
	"microsoft.com",
	"amazon.com",
	"paypal.com",
	"netflix.com",
	"instagram.com",
	"whatsapp.com",
	"github.com",
	"linkedin.com",
	"coinbase.com",
	"binance.com",
	"chase.com",
	"wellsfargo.com",
	"dropbox.com",
	"adobe.com",
}

type brandRef struct {
	name   string // second-level label
	domain string // full reference domain
}

// TyposquatDetector flags domains crafted to resemble a trusted brand.
// Pure heuristics, no network access.
type TyposquatDetector struct {
	brands []brandRef
	now    func() time.Time
}

// NewTyposquatDetector builds a detector over the given brand list.
func NewTyposquatDetector(cfg TyposquatConfig) *TyposquatDetector {
	list := cfg.Brands
	if len(list) == 0 {
		list = defaultBrands
	}
	brands := make([]brandRef, 0, len(list))
	for _, raw := range list {
		d := normalizeDomain(raw)
		if d == "" {
			continue
		}
		sld, _ := splitDomain(d)
		brands = append(brands, brandRef{name: sld, domain: d})
	}
	return &TyposquatDetector{brands: brands, now: time.Now}
}

// CheckDomain scores a domain against the brand list. A result with an
// empty MatchedBrand and unknown confidence is the no-match sentinel,
// distinct from a real low-confidence match.
func (d *TyposquatDetector) CheckDomain(domain string) models.DomainReputationResult {
	domain = normalizeDomain(domain)
	res := models.DomainReputationResult{
		Domain:     domain,
		Method:     models.MethodHeuristic,
		Confidence: models.ConfidenceUnknown,
		CheckedAt:  d.now(),
	}

	sld, _ := splitDomain(domain)
	normalized := foldHomoglyphs(sld)
	mixed := hasMixedScript(sld)

	best := 0
	matched := ""
	for _, b := range d.brands {
		if domain == b.domain || strings.HasSuffix(domain, "."+b.domain) {
			// The brand's own domain or a real subdomain of it.
			return res
		}
		score := d.scoreAgainst(domain, sld, normalized, b)
		if score > best {
			best = score
			matched = b.domain
		}
	}

	if matched == "" {
		return res
	}
	if mixed {
		best += 3
		res.MixedScript = true
	}

	switch {
	case best >= 8:
		res.Confidence = models.ConfidenceHigh
	case best >= 5:
		res.Confidence = models.ConfidenceMedium
	case best >= 3:
		res.Confidence = models.ConfidenceLow
	default:
		return res
	}
	res.Verdict = true
	res.MatchedBrand = matched
	return res
}

func (d *TyposquatDetector) scoreAgainst(domain, sld, normalized string, b brandRef) int {
	score := 0

	// "paypal.com.evil.xyz" style prefix impersonation.
	if strings.HasPrefix(domain, b.domain+".") || strings.HasPrefix(domain, b.name+".com-") {
		score += 5
	}

	switch {
	case sld == b.name:
		// Brand label on the wrong TLD.
		score += 3
	case normalized == b.name:
		// Identical after homoglyph folding: a substitution attack.
		score += 6
	case len(b.name) >= 4 && levenshtein(normalized, b.name) == 1:
		score += 4
	case len(b.name) >= 8 && levenshtein(normalized, b.name) == 2:
		score += 2
	}

	// Brand embedded in a longer label ("paypal-secure", "login-github").
	if sld != b.name && len(b.name) >= 4 && strings.Contains(normalized, b.name) {
		score += 3
	}

	return score
}

// foldHomoglyphs maps common visual substitutes back to their ASCII base.
func foldHomoglyphs(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for _, r := range s {
		if m, ok := homoglyphs[r]; ok {
			out.WriteRune(m)
			continue
		}
		out.WriteRune(r)
	}
	folded := out.String()
	folded = strings.ReplaceAll(folded, "rn", "m")
	folded = strings.ReplaceAll(folded, "vv", "w")
	return folded
}

var homoglyphs = map[rune]rune{
	'0': 'o', '1': 'l', '3': 'e', '4': 'a', '5': 's', '7': 't', '8': 'b', '9': 'g',
	// Cyrillic lookalikes.
	'а': 'a', 'е': 'e', 'о': 'o', 'р': 'p', 'с': 'c', 'х': 'x', 'у': 'y',
	'і': 'i', 'ѕ': 's', 'ԁ': 'd', 'ј': 'j', 'һ': 'h',
	// Greek lookalikes.
	'ο': 'o', 'α': 'a', 'ν': 'v', 'τ': 't',
}

// hasMixedScript reports Latin mixed with Cyrillic or Greek in one label.
func hasMixedScript(s string) bool {
	var latin, other bool
	for _, r := range s {
		switch {
		case unicode.In(r, unicode.Latin):
			latin = true
		case unicode.In(r, unicode.Cyrillic, unicode.Greek):
			other = true
		}
	}
	return latin && other
}

func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
