package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"trustmon/pkg/models"
)

// Config is the root configuration.
type Config struct {
	Trustmon TrustmonConfig `yaml:"trustmon"`
}

// TrustmonConfig is the project configuration.
type TrustmonConfig struct {
	Input       InputConfig       `yaml:"input"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Cache       CacheConfig       `yaml:"cache"`
	Reputation  ReputationConfig  `yaml:"reputation"`
	Typosquat   TyposquatConfig   `yaml:"typosquat"`
	ThreatIntel ThreatIntelConfig `yaml:"threat_intel"`
	Policy      PolicyConfig      `yaml:"policy"`
	Alerts      AlertsConfig      `yaml:"alerts"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// InputConfig controls the input reader.
type InputConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig controls Redis input.
type RedisConfig struct {
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	Key          string        `yaml:"key"`
	BlockTimeout time.Duration `yaml:"block_timeout"`
}

// PipelineConfig controls pipeline behavior.
type PipelineConfig struct {
	Workers       int           `yaml:"workers"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// CacheConfig selects the lookup cache backend.
type CacheConfig struct {
	Backend string           `yaml:"backend"` // memory|redis
	Redis   RedisCacheConfig `yaml:"redis"`
}

// RedisCacheConfig controls the Redis-backed lookup cache.
type RedisCacheConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	HardTTL   time.Duration `yaml:"hard_ttl"`
}

// ReputationConfig controls newly registered domain detection.
type ReputationConfig struct {
	ThresholdDays int           `yaml:"threshold_days"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	RDAP          RDAPConfig    `yaml:"rdap"`
}

// RDAPConfig controls the registration data lookup client.
type RDAPConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// TyposquatConfig controls brand impersonation detection.
type TyposquatConfig struct {
	Brands []string `yaml:"brands"`
}

// ThreatIntelConfig controls the threat intelligence aggregator.
type ThreatIntelConfig struct {
	CacheTTL           time.Duration    `yaml:"cache_ttl"`
	CorroborationBonus int              `yaml:"corroboration_bonus"`
	BatchWindow        int              `yaml:"batch_window"`
	Blocklist          []BlocklistEntry `yaml:"blocklist"`
	Allowlist          []string         `yaml:"allowlist"`
	Feeds              []FeedConfig     `yaml:"feeds"`
}

// BlocklistEntry is one locally pinned malicious domain.
type BlocklistEntry struct {
	Domain   string `yaml:"domain"`
	Category string `yaml:"category"`
	Severity string `yaml:"severity"`
}

// FeedConfig controls one external threat feed.
type FeedConfig struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// PolicyConfig controls the policy engine rule sources.
type PolicyConfig struct {
	RulesPath       string `yaml:"rules_path"`
	SigmaPath       string `yaml:"sigma_path"`
	DisableDefaults bool   `yaml:"disable_defaults"`
}

// AlertsConfig controls the alert manager and its output sink.
type AlertsConfig struct {
	MinSeverities []models.Severity `yaml:"min_severities"`
	Cooldown      time.Duration     `yaml:"cooldown"`
	Output        OutputConfig      `yaml:"output"`
}

// OutputConfig controls the alert sink.
type OutputConfig struct {
	Mode string           `yaml:"mode"` // file|http
	File FileOutputConfig `yaml:"file"`
	HTTP HTTPOutputConfig `yaml:"http"`
}

// FileOutputConfig config for local JSON output.
type FileOutputConfig struct {
	Path string `yaml:"path"`
}

// HTTPOutputConfig config for remote output.
type HTTPOutputConfig struct {
	URL     string            `yaml:"url"`
	Timeout time.Duration     `yaml:"timeout"`
	Headers map[string]string `yaml:"headers"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig controls logging output.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
