package models

import "time"

// IndicatorType classifies the thing a threat check inspected.
type IndicatorType string

const (
	IndicatorDomain IndicatorType = "domain"
	IndicatorURL    IndicatorType = "url"
	IndicatorIP     IndicatorType = "ip"
	IndicatorHash   IndicatorType = "hash"
	IndicatorEmail  IndicatorType = "email"
)

// ThreatCategory labels the kind of threat a source reported.
type ThreatCategory string

const (
	CategoryPhishing     ThreatCategory = "phishing"
	CategoryMalware      ThreatCategory = "malware"
	CategoryC2           ThreatCategory = "c2"
	CategorySpamDomain   ThreatCategory = "spam"
	CategoryDDNS         ThreatCategory = "ddns"
	CategoryTyposquatted ThreatCategory = "typosquat"
	CategorySuspicious   ThreatCategory = "suspicious"
)

// ThreatSource identifies which check contributed a verdict.
type ThreatSource string

const (
	SourcePatterns  ThreatSource = "patterns"
	SourceBlocklist ThreatSource = "blocklist"
)

// ThreatCheckResult is the merged threat verdict for one indicator.
type ThreatCheckResult struct {
	Indicator     string           `json:"indicator"`
	IndicatorType IndicatorType    `json:"indicator_type"`
	IsThreat      bool             `json:"is_threat"`
	Severity      Severity         `json:"severity"`
	Categories    []ThreatCategory `json:"categories,omitempty"`
	Sources       []ThreatSource   `json:"sources,omitempty"`
	Confidence    int              `json:"confidence"`
	CheckedAt     time.Time        `json:"checked_at"`
	Cached        bool             `json:"cached"`
}

// ThreatSummary aggregates check outcomes over a set of domains.
type ThreatSummary struct {
	Total      int            `json:"total"`
	Threats    int            `json:"threats"`
	BySeverity map[string]int `json:"by_severity"`
	ByCategory map[string]int `json:"by_category"`
}
