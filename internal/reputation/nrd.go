package reputation

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"trustmon/internal/cache"
	"trustmon/internal/logger"
	"trustmon/pkg/models"
)

const nrdKeyPrefix = "nrd:"

// NRDConfig tunes the newly-registered-domain detector.
type NRDConfig struct {
	// ThresholdDays is inclusive: a domain exactly this old is still NRD.
	ThresholdDays int
	CacheTTL      time.Duration
}

// NRDDetector decides whether a domain is newly registered, combining a
// registration-data lookup with always-available heuristics. Lookups for
// the same uncached domain are coalesced so concurrent callers share one
// network request.
type NRDDetector struct {
	src   RegistrationSource
	cache cache.Store
	cfg   NRDConfig
	group singleflight.Group
	now   func() time.Time
}

// NewNRDDetector creates a detector with its own injected cache.
func NewNRDDetector(src RegistrationSource, store cache.Store, cfg NRDConfig) *NRDDetector {
	if cfg.ThresholdDays <= 0 {
		cfg.ThresholdDays = 30
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return &NRDDetector{
		src:   src,
		cache: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// CheckDomain returns the NRD verdict for a domain. Network and timeout
// failures come back as method=error with unknown confidence; the call
// itself never fails.
func (d *NRDDetector) CheckDomain(ctx context.Context, domain string) models.DomainReputationResult {
	domain = normalizeDomain(domain)

	if cached, ok := d.fromCache(ctx, domain); ok {
		cached.Method = models.MethodCache
		return cached
	}

	v, _, _ := d.group.Do(domain, func() (interface{}, error) {
		res := d.lookup(ctx, domain)
		d.store(ctx, domain, res)
		return res, nil
	})
	return v.(models.DomainReputationResult)
}

// CheckDomainSync computes the heuristic sub-scores only. Pure and always
// available, with no cache or network involvement.
func (d *NRDDetector) CheckDomainSync(domain string) models.ScoreBreakdown {
	return AnalyzeDomain(normalizeDomain(domain))
}

func (d *NRDDetector) lookup(ctx context.Context, domain string) models.DomainReputationResult {
	now := d.now()
	scores := AnalyzeDomain(domain)
	res := models.DomainReputationResult{
		Domain:     domain,
		Method:     models.MethodNetwork,
		Confidence: models.ConfidenceUnknown,
		Scores:     &scores,
		CheckedAt:  now,
	}

	record, err := d.src.Lookup(ctx, domain)
	if err != nil {
		logger.Debugf("registration lookup failed for %s: %v", domain, err)
		res.Method = models.MethodError
		return res
	}

	regDate, ok := record.RegistrationDate()
	if !ok {
		// Registry had no registration event; stays a non-verdict.
		return res
	}

	age := int(now.Sub(regDate).Hours() / 24)
	res.RegistrationDate = &regDate
	res.DomainAgeDays = &age
	res.Verdict = age <= d.cfg.ThresholdDays
	res.Confidence = models.ConfidenceHigh
	return res
}

func (d *NRDDetector) fromCache(ctx context.Context, domain string) (models.DomainReputationResult, bool) {
	entry, err := d.cache.Get(ctx, nrdKeyPrefix+domain)
	if err != nil {
		logger.Warnf("nrd cache read failed for %s: %v", domain, err)
		return models.DomainReputationResult{}, false
	}
	if entry == nil {
		return models.DomainReputationResult{}, false
	}
	if entry.Expired(d.cfg.CacheTTL, d.now()) {
		d.cache.Delete(ctx, nrdKeyPrefix+domain)
		return models.DomainReputationResult{}, false
	}

	var res models.DomainReputationResult
	if err := cache.DecodeEntry(entry, &res); err != nil {
		logger.Warnf("nrd cache entry corrupt for %s: %v", domain, err)
		return models.DomainReputationResult{}, false
	}
	return res, true
}

// store caches the result regardless of lookup outcome, so repeated
// failures are not retried within the TTL.
func (d *NRDDetector) store(ctx context.Context, domain string, res models.DomainReputationResult) {
	entry, err := cache.EncodeEntry(res, res.CheckedAt)
	if err != nil {
		logger.Warnf("nrd cache encode failed for %s: %v", domain, err)
		return
	}
	if err := d.cache.Set(ctx, nrdKeyPrefix+domain, entry); err != nil {
		logger.Warnf("nrd cache write failed for %s: %v", domain, err)
	}
}
