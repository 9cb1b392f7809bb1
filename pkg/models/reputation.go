package models

import "time"

// Confidence grades how much weight a detector verdict carries.
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

// Method records how a reputation verdict was produced.
type Method string

const (
	MethodNetwork   Method = "network"
	MethodCache     Method = "cache"
	MethodHeuristic Method = "heuristic"
	MethodError     Method = "error"
)

// RiskLevel is the coarse outcome of the pure heuristic analyzers.
type RiskLevel string

const (
	RiskNone   RiskLevel = "none"
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ScoreBreakdown is the per-signal heuristic evidence computed for a
// domain independent of any network lookup.
type ScoreBreakdown struct {
	Entropy       float64 `json:"entropy"`
	EntropyScore  int     `json:"entropy_score"`
	TLDScore      int     `json:"tld_score"`
	HyphenScore   int     `json:"hyphen_score"`
	DigitScore    int     `json:"digit_score"`
	RandomScore   int     `json:"random_score"`
	DDNSScore     int     `json:"ddns_score"`
	DDNSProvider  string  `json:"ddns_provider,omitempty"`
	TotalScore    int     `json:"total_score"`
}

// PatternMatch names one suspicious shape found in a domain.
type PatternMatch struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ThreatAnalysis is the pattern-based analyzer output for a domain.
type ThreatAnalysis struct {
	Domain      string         `json:"domain"`
	ThreatScore int            `json:"threat_score"`
	RiskLevel   RiskLevel      `json:"risk_level"`
	Matches     []PatternMatch `json:"matches,omitempty"`
}

// DomainReputationResult is one detector's verdict for a domain.
type DomainReputationResult struct {
	Domain           string          `json:"domain"`
	Verdict          bool            `json:"verdict"`
	Confidence       Confidence      `json:"confidence"`
	Method           Method          `json:"method"`
	RegistrationDate *time.Time      `json:"registration_date,omitempty"`
	DomainAgeDays    *int            `json:"domain_age_days,omitempty"`
	Scores           *ScoreBreakdown `json:"scores,omitempty"`
	MatchedBrand     string          `json:"matched_brand,omitempty"`
	MixedScript      bool            `json:"mixed_script,omitempty"`
	CheckedAt        time.Time       `json:"checked_at"`
}
