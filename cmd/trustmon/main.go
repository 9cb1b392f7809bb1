package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trustmon/config"
	"trustmon/internal/alerts"
	"trustmon/internal/cache"
	inputredis "trustmon/internal/input/redis"
	"trustmon/internal/logger"
	"trustmon/internal/output/alerthttp"
	"trustmon/internal/output/alertjson"
	"trustmon/internal/pipeline"
	"trustmon/internal/policy"
	"trustmon/internal/reputation"
	"trustmon/internal/threatintel"
	"trustmon/pkg/models"
)

func findConfigFile(configArg string) string {
	if configArg != "" {
		path := configArg
		if _, err := os.Stat(path); err == nil {
			return path
		}
		log.Printf("Warning: config file not found at %s, trying default locations", path)
	}

	if _, err := os.Stat("trustmon.yml"); err == nil {
		return "trustmon.yml"
	}

	exePath, err := os.Executable()
	if err == nil {
		exeDir := filepath.Dir(exePath)
		path := filepath.Join(exeDir, "trustmon.yml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "trustmon.yml"
}

func applyDefaults(cfg *config.Config) {
	if cfg.Trustmon.Input.Redis.Addr == "" {
		cfg.Trustmon.Input.Redis.Addr = "127.0.0.1:6379"
	}
	if cfg.Trustmon.Input.Redis.Key == "" {
		cfg.Trustmon.Input.Redis.Key = "page_events"
	}
	if cfg.Trustmon.Input.Redis.BlockTimeout == 0 {
		cfg.Trustmon.Input.Redis.BlockTimeout = 5 * time.Second
	}

	if cfg.Trustmon.Pipeline.Workers <= 0 {
		cfg.Trustmon.Pipeline.Workers = 4
	}
	if cfg.Trustmon.Pipeline.BatchSize <= 0 {
		cfg.Trustmon.Pipeline.BatchSize = 100
	}
	if cfg.Trustmon.Pipeline.FlushInterval <= 0 {
		cfg.Trustmon.Pipeline.FlushInterval = 2 * time.Second
	}

	if cfg.Trustmon.Cache.Backend == "" {
		cfg.Trustmon.Cache.Backend = "memory"
	}

	if cfg.Trustmon.Alerts.Cooldown <= 0 {
		cfg.Trustmon.Alerts.Cooldown = 2 * time.Minute
	}
	if cfg.Trustmon.Alerts.Output.Mode == "" {
		cfg.Trustmon.Alerts.Output.Mode = "file"
	}
	if cfg.Trustmon.Alerts.Output.File.Path == "" {
		cfg.Trustmon.Alerts.Output.File.Path = "output/alerts.jsonl"
	}

	if cfg.Trustmon.Metrics.Addr == "" {
		cfg.Trustmon.Metrics.Addr = "127.0.0.1:9187"
	}

	if cfg.Trustmon.Logging.Level == "" {
		cfg.Trustmon.Logging.Level = "info"
	}
}

func newCacheStores(cfg config.CacheConfig) (reputationStore, threatStore cache.Store, closer func(), err error) {
	switch cfg.Backend {
	case "redis":
		store, err := cache.NewRedisStore(cache.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			HardTTL:   cfg.Redis.HardTTL,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, func() { store.Close() }, nil
	default:
		return cache.NewMemoryStore(), cache.NewMemoryStore(), func() {}, nil
	}
}

func loadPolicyRules(cfg config.PolicyConfig) []*models.PolicyRule {
	var rules []*models.PolicyRule
	if !cfg.DisableDefaults {
		rules = policy.DefaultRules()
	}

	if strings.TrimSpace(cfg.RulesPath) != "" {
		loaded, err := policy.LoadRuleFile(cfg.RulesPath)
		if err != nil {
			logger.Errorf("Failed to load policy rules from %s: %v", cfg.RulesPath, err)
			log.Fatalf("Failed to load policy rules: %v", err)
		}
		rules = append(rules, loaded...)
		logger.Infof("Policy rules loaded from %s: %d", cfg.RulesPath, len(loaded))
	}

	if strings.TrimSpace(cfg.SigmaPath) != "" {
		converted, stats, err := policy.LoadSigmaRules(cfg.SigmaPath)
		if err != nil {
			logger.Errorf("Failed to load Sigma rules from %s: %v", cfg.SigmaPath, err)
			log.Fatalf("Failed to load Sigma rules: %v", err)
		}
		rules = append(rules, converted...)
		logger.Infof("Sigma rules converted: loaded=%d skipped_complex=%d skipped_invalid=%d files=%d",
			stats.Loaded,
			stats.SkippedComplex,
			stats.SkippedInvalid,
			stats.TotalFiles,
		)
		if stats.Loaded == 0 {
			logger.Warnf("No compatible Sigma rules loaded from %s", cfg.SigmaPath)
		}
	}

	return rules
}

func newThreatCheckers(cfg config.ThreatIntelConfig) []threatintel.Checker {
	checkers := []threatintel.Checker{
		threatintel.NewPatternChecker(cfg.Allowlist),
	}

	blocklist := threatintel.NewBlocklistChecker(nil)
	for _, entry := range cfg.Blocklist {
		category := models.ThreatCategory(entry.Category)
		if category == "" {
			category = models.CategoryMalware
		}
		severity := models.ParseSeverity(entry.Severity)
		if severity == models.SeverityUnknown {
			severity = models.SeverityHigh
		}
		blocklist.Add(entry.Domain, category, severity)
	}
	if blocklist.Len() > 0 {
		checkers = append(checkers, blocklist)
	}

	for _, feedCfg := range cfg.Feeds {
		feed, err := threatintel.NewFeedChecker(threatintel.FeedConfig{
			Name:    feedCfg.Name,
			URL:     feedCfg.URL,
			APIKey:  feedCfg.APIKey,
			Timeout: feedCfg.Timeout,
		})
		if err != nil {
			logger.Warnf("Skipping threat feed %s: %v", feedCfg.Name, err)
			continue
		}
		checkers = append(checkers, feed)
	}

	return checkers
}

func main() {
	configArg := ""
	if len(os.Args) > 1 {
		configArg = os.Args[1]
	}

	configPath := findConfigFile(configArg)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyDefaults(cfg)

	if err := logger.Init(cfg.Trustmon.Logging.Enabled, cfg.Trustmon.Logging.Level, cfg.Trustmon.Logging.File, cfg.Trustmon.Logging.Console); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Infof("Trustmon starting")
	logger.Infof("Config loaded from: %s", configPath)

	consumer, err := inputredis.NewConsumer(inputredis.Config{
		Addr:         cfg.Trustmon.Input.Redis.Addr,
		Password:     cfg.Trustmon.Input.Redis.Password,
		DB:           cfg.Trustmon.Input.Redis.DB,
		Key:          cfg.Trustmon.Input.Redis.Key,
		BlockTimeout: cfg.Trustmon.Input.Redis.BlockTimeout,
	})
	if err != nil {
		logger.Errorf("Failed to create Redis consumer: %v", err)
		log.Fatalf("Failed to create Redis consumer: %v", err)
	}

	repCache, threatCache, closeCaches, err := newCacheStores(cfg.Trustmon.Cache)
	if err != nil {
		logger.Errorf("Failed to create lookup cache: %v", err)
		log.Fatalf("Failed to create lookup cache: %v", err)
	}
	defer closeCaches()
	logger.Infof("Lookup cache backend: %s", cfg.Trustmon.Cache.Backend)

	rdap := reputation.NewRDAPClient(reputation.RDAPConfig{
		BaseURL: cfg.Trustmon.Reputation.RDAP.BaseURL,
		Timeout: cfg.Trustmon.Reputation.RDAP.Timeout,
	})
	nrd := reputation.NewNRDDetector(rdap, repCache, reputation.NRDConfig{
		ThresholdDays: cfg.Trustmon.Reputation.ThresholdDays,
		CacheTTL:      cfg.Trustmon.Reputation.CacheTTL,
	})
	typosquat := reputation.NewTyposquatDetector(reputation.TyposquatConfig{
		Brands: cfg.Trustmon.Typosquat.Brands,
	})

	threats := threatintel.NewAggregator(threatCache, threatintel.Config{
		CacheTTL:           cfg.Trustmon.ThreatIntel.CacheTTL,
		CorroborationBonus: cfg.Trustmon.ThreatIntel.CorroborationBonus,
		BatchWindow:        cfg.Trustmon.ThreatIntel.BatchWindow,
	}, newThreatCheckers(cfg.Trustmon.ThreatIntel)...)

	engine := policy.NewEngine(loadPolicyRules(cfg.Trustmon.Policy)...)
	logger.Infof("Policy engine loaded with %d rules", len(engine.Rules()))

	manager := alerts.NewManager(alerts.NewMemoryStore(), alerts.Config{
		MinSeverities: cfg.Trustmon.Alerts.MinSeverities,
		Cooldown:      cfg.Trustmon.Alerts.Cooldown,
	})

	var alertWriter pipeline.AlertWriter
	switch cfg.Trustmon.Alerts.Output.Mode {
	case "file":
		w, err := alertjson.NewWriter(cfg.Trustmon.Alerts.Output.File.Path)
		if err != nil {
			logger.Errorf("Failed to create alert file writer: %v", err)
			log.Fatalf("Failed to create alert file writer: %v", err)
		}
		alertWriter = w
		logger.Infof("Alert output mode: file (%s)", cfg.Trustmon.Alerts.Output.File.Path)
	case "http":
		w, err := alerthttp.NewWriter(alerthttp.Config{
			URL:     cfg.Trustmon.Alerts.Output.HTTP.URL,
			Timeout: cfg.Trustmon.Alerts.Output.HTTP.Timeout,
			Headers: cfg.Trustmon.Alerts.Output.HTTP.Headers,
		})
		if err != nil {
			logger.Errorf("Failed to create alert HTTP writer: %v", err)
			log.Fatalf("Failed to create alert HTTP writer: %v", err)
		}
		alertWriter = w
		logger.Infof("Alert output mode: http (%s)", cfg.Trustmon.Alerts.Output.HTTP.URL)
	default:
		log.Fatalf("Unknown alert output mode: %s", cfg.Trustmon.Alerts.Output.Mode)
	}

	registry := prometheus.NewRegistry()
	metrics := pipeline.NewMetrics(registry)
	if cfg.Trustmon.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			logger.Infof("Metrics endpoint listening on %s", cfg.Trustmon.Metrics.Addr)
			if err := http.ListenAndServe(cfg.Trustmon.Metrics.Addr, mux); err != nil {
				logger.Errorf("Metrics endpoint failed: %v", err)
			}
		}()
	}

	pipe := pipeline.New(pipeline.Options{
		Consumer:      consumer,
		NRD:           nrd,
		Typosquat:     typosquat,
		Threats:       threats,
		Engine:        engine,
		Manager:       manager,
		Writer:        alertWriter,
		Metrics:       metrics,
		Workers:       cfg.Trustmon.Pipeline.Workers,
		BatchSize:     cfg.Trustmon.Pipeline.BatchSize,
		FlushInterval: cfg.Trustmon.Pipeline.FlushInterval,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := pipe.Run(ctx); err != nil && err != context.Canceled {
			logger.Errorf("Pipeline error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Infof("Shutting down")
	cancel()
	time.Sleep(1 * time.Second)

	if err := pipe.Close(); err != nil {
		logger.Errorf("Error closing pipeline: %v", err)
	}

	logger.Infof("Trustmon stopped")
}
