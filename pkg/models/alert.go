package models

import "time"

// AlertCategory names the detection surface an alert came from.
type AlertCategory string

const (
	AlertNRD                AlertCategory = "nrd"
	AlertTyposquat          AlertCategory = "typosquat"
	AlertAISensitiveData    AlertCategory = "ai_sensitive_data"
	AlertShadowAI           AlertCategory = "shadow_ai"
	AlertMaliciousExtension AlertCategory = "malicious_extension"
	AlertDataExfiltration   AlertCategory = "data_exfiltration"
	AlertCredentialTheft    AlertCategory = "credential_theft"
	AlertSupplyChain        AlertCategory = "supply_chain"
	AlertCompliance         AlertCategory = "compliance"
	AlertPolicyViolation    AlertCategory = "policy_violation"
	AlertTrackingBeacon     AlertCategory = "tracking_beacon"
	AlertClipboardHijack    AlertCategory = "clipboard_hijack"
	AlertCookieAccess       AlertCategory = "cookie_access"
	AlertXSS                AlertCategory = "xss"
	AlertDOMScraping        AlertCategory = "dom_scraping"
	AlertSuspiciousDownload AlertCategory = "suspicious_download"
)

// AlertStatus is the lifecycle state of an alert.
type AlertStatus string

const (
	StatusNew          AlertStatus = "new"
	StatusAcknowledged AlertStatus = "acknowledged"
	StatusResolved     AlertStatus = "resolved"
	StatusDismissed    AlertStatus = "dismissed"
)

// AlertAction is a remediation offered alongside an alert.
type AlertAction struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SecurityAlert is a deduplicated, severity-filtered finding owned by the
// alert manager. Status transitions happen only through the manager.
type SecurityAlert struct {
	ID          string                 `json:"id"`
	Category    AlertCategory          `json:"category"`
	Severity    Severity               `json:"severity"`
	Status      AlertStatus            `json:"status"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Domain      string                 `json:"domain,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Details     map[string]interface{} `json:"details,omitempty"`
	Actions     []AlertAction          `json:"actions,omitempty"`
}

// CreateAlertInput is the builder output handed to the alert manager.
// Builders are pure; the manager assigns identity, status, and actions.
type CreateAlertInput struct {
	Category    AlertCategory
	Severity    Severity
	Title       string
	Description string
	Domain      string
	Details     map[string]interface{}
}
