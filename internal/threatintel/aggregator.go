package threatintel

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"trustmon/internal/cache"
	"trustmon/internal/logger"
	"trustmon/pkg/models"
)

const domainKeyPrefix = "domain:"

// Config tunes the aggregator.
type Config struct {
	CacheTTL time.Duration
	// CorroborationBonus is added to the best individual confidence for
	// each additional agreeing source, capped at 100.
	CorroborationBonus int
	// BatchWindow caps concurrent checks in CheckDomains.
	BatchWindow int
}

// Aggregator runs the configured checks for an indicator and merges
// their verdicts under one confidence model.
type Aggregator struct {
	checkers []Checker
	cache    cache.Store
	cfg      Config
	now      func() time.Time
}

// NewAggregator wires the aggregator with its cache and ordered checks.
func NewAggregator(store cache.Store, cfg Config, checkers ...Checker) *Aggregator {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	if cfg.CorroborationBonus <= 0 {
		cfg.CorroborationBonus = 5
	}
	if cfg.BatchWindow <= 0 {
		cfg.BatchWindow = 10
	}
	return &Aggregator{
		checkers: checkers,
		cache:    store,
		cfg:      cfg,
		now:      time.Now,
	}
}

// CheckDomain returns the merged threat verdict for one domain. Checker
// failures degrade to no opinion and never escape this call.
func (a *Aggregator) CheckDomain(ctx context.Context, domain string) models.ThreatCheckResult {
	key := domainKeyPrefix + domain
	if cached, ok := a.fromCache(ctx, key); ok {
		cached.Cached = true
		return cached
	}

	var threats []*models.ThreatCheckResult
	for _, checker := range a.checkers {
		res, err := checker.Check(ctx, domain)
		if err != nil {
			logger.Debugf("threat check %s failed for %s: %v", checker.Name(), domain, err)
			continue
		}
		if res != nil && res.IsThreat {
			threats = append(threats, res)
		}
	}

	merged := a.merge(domain, threats)
	a.store(ctx, key, merged)
	return merged
}

// CheckDomains checks a batch, capping in-flight checks at the configured
// window size.
func (a *Aggregator) CheckDomains(ctx context.Context, domains []string) map[string]models.ThreatCheckResult {
	results := make(map[string]models.ThreatCheckResult, len(domains))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.BatchWindow)
	for _, domain := range domains {
		domain := domain
		g.Go(func() error {
			res := a.CheckDomain(ctx, domain)
			mu.Lock()
			results[domain] = res
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return results
}

// GetThreatSummary counts check outcomes by severity and category over a
// set of domains.
func (a *Aggregator) GetThreatSummary(ctx context.Context, domains []string) models.ThreatSummary {
	summary := models.ThreatSummary{
		Total:      len(domains),
		BySeverity: make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, res := range a.CheckDomains(ctx, domains) {
		if !res.IsThreat {
			continue
		}
		summary.Threats++
		summary.BySeverity[res.Severity.String()]++
		for _, cat := range res.Categories {
			summary.ByCategory[string(cat)]++
		}
	}
	return summary
}

// ClearCache drops every cached verdict.
func (a *Aggregator) ClearCache(ctx context.Context) error {
	return a.cache.Clear(ctx)
}

// merge unions categories and sources across the reporting checks, keeps
// the single highest severity, and boosts confidence per corroborating
// source up to the cap.
func (a *Aggregator) merge(domain string, threats []*models.ThreatCheckResult) models.ThreatCheckResult {
	merged := models.ThreatCheckResult{
		Indicator:     domain,
		IndicatorType: models.IndicatorDomain,
		CheckedAt:     a.now(),
	}
	if len(threats) == 0 {
		return merged
	}

	merged.IsThreat = true
	maxConfidence := 0
	for _, t := range threats {
		merged.Severity = models.MaxSeverity(merged.Severity, t.Severity)
		for _, cat := range t.Categories {
			merged.Categories = appendCategory(merged.Categories, cat)
		}
		for _, src := range t.Sources {
			merged.Sources = appendSource(merged.Sources, src)
		}
		if t.Confidence > maxConfidence {
			maxConfidence = t.Confidence
		}
	}

	confidence := maxConfidence + a.cfg.CorroborationBonus*(len(merged.Sources)-1)
	if confidence > 100 {
		confidence = 100
	}
	merged.Confidence = confidence
	return merged
}

func (a *Aggregator) fromCache(ctx context.Context, key string) (models.ThreatCheckResult, bool) {
	entry, err := a.cache.Get(ctx, key)
	if err != nil {
		logger.Warnf("threat cache read failed for %s: %v", key, err)
		return models.ThreatCheckResult{}, false
	}
	if entry == nil {
		return models.ThreatCheckResult{}, false
	}
	if entry.Expired(a.cfg.CacheTTL, a.now()) {
		a.cache.Delete(ctx, key)
		return models.ThreatCheckResult{}, false
	}

	var res models.ThreatCheckResult
	if err := cache.DecodeEntry(entry, &res); err != nil {
		logger.Warnf("threat cache entry corrupt for %s: %v", key, err)
		return models.ThreatCheckResult{}, false
	}
	return res, true
}

func (a *Aggregator) store(ctx context.Context, key string, res models.ThreatCheckResult) {
	entry, err := cache.EncodeEntry(res, res.CheckedAt)
	if err != nil {
		logger.Warnf("threat cache encode failed for %s: %v", key, err)
		return
	}
	if err := a.cache.Set(ctx, key, entry); err != nil {
		logger.Warnf("threat cache write failed for %s: %v", key, err)
	}
}

func appendSource(list []models.ThreatSource, s models.ThreatSource) []models.ThreatSource {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
