package alerts

import (
	"fmt"
	"strings"
	"time"

	"trustmon/pkg/models"
)

// Builders are pure functions from detector evidence to a CreateAlertInput.
// The second return value is false when the input does not warrant an
// alert; the manager treats that as "no alert created", not an error.

// severityCase pairs a condition with the severity it selects. Cases are
// scanned in priority order; the first true condition wins, otherwise the
// caller-supplied default applies.
type severityCase struct {
	when     bool
	severity models.Severity
}

func resolveSeverity(def models.Severity, cases ...severityCase) models.Severity {
	for _, c := range cases {
		if c.when {
			return c.severity
		}
	}
	return def
}

// NRDAlertParams carries the age detector's evidence.
type NRDAlertParams struct {
	Domain           string
	Confidence       models.Confidence
	DomainAgeDays    *int
	RegistrationDate *time.Time
}

// BuildNRDAlert reports a newly registered domain.
func BuildNRDAlert(p NRDAlertParams) (models.CreateAlertInput, bool) {
	age := -1
	if p.DomainAgeDays != nil {
		age = *p.DomainAgeDays
	}
	severity := resolveSeverity(models.SeverityMedium,
		severityCase{p.Confidence == models.ConfidenceHigh && age >= 0 && age <= 3, models.SeverityCritical},
		severityCase{p.Confidence == models.ConfidenceHigh, models.SeverityHigh},
	)

	details := map[string]interface{}{"confidence": string(p.Confidence)}
	if p.DomainAgeDays != nil {
		details["domain_age_days"] = *p.DomainAgeDays
	}
	if p.RegistrationDate != nil {
		details["registration_date"] = p.RegistrationDate.Format(time.RFC3339)
	}

	return models.CreateAlertInput{
		Category:    models.AlertNRD,
		Severity:    severity,
		Title:       fmt.Sprintf("Newly registered domain: %s", p.Domain),
		Description: fmt.Sprintf("%s was registered recently, a common phishing indicator.", p.Domain),
		Domain:      p.Domain,
		Details:     details,
	}, true
}

// TyposquatAlertParams carries the impersonation detector's evidence.
type TyposquatAlertParams struct {
	Domain       string
	MatchedBrand string
	Confidence   models.Confidence
	MixedScript  bool
}

// BuildTyposquatAlert reports a brand-impersonating domain. No match or
// unknown confidence produces no alert.
func BuildTyposquatAlert(p TyposquatAlertParams) (models.CreateAlertInput, bool) {
	if p.MatchedBrand == "" || p.Confidence == models.ConfidenceUnknown {
		return models.CreateAlertInput{}, false
	}
	severity := resolveSeverity(models.SeverityMedium,
		severityCase{p.MixedScript, models.SeverityCritical},
		severityCase{p.Confidence == models.ConfidenceHigh, models.SeverityCritical},
		severityCase{p.Confidence == models.ConfidenceMedium, models.SeverityHigh},
	)
	return models.CreateAlertInput{
		Category:    models.AlertTyposquat,
		Severity:    severity,
		Title:       fmt.Sprintf("Possible typosquat: %s", p.Domain),
		Description: fmt.Sprintf("%s resembles %s.", p.Domain, p.MatchedBrand),
		Domain:      p.Domain,
		Details: map[string]interface{}{
			"matched_brand": p.MatchedBrand,
			"confidence":    string(p.Confidence),
			"mixed_script":  p.MixedScript,
		},
	}, true
}

// AISensitiveDataParams describes sensitive content in an AI prompt.
type AISensitiveDataParams struct {
	Domain    string
	Provider  string
	DataKinds []string
}

// BuildAISensitiveDataAlert reports sensitive data leaving for an AI provider.
func BuildAISensitiveDataAlert(p AISensitiveDataParams) (models.CreateAlertInput, bool) {
	severity := resolveSeverity(models.SeverityHigh,
		severityCase{containsAny(p.DataKinds, "credential", "financial", "api_key"), models.SeverityCritical},
	)
	return models.CreateAlertInput{
		Category:    models.AlertAISensitiveData,
		Severity:    severity,
		Title:       fmt.Sprintf("Sensitive data sent to %s", p.Provider),
		Description: fmt.Sprintf("A prompt on %s contained: %s.", p.Domain, strings.Join(p.DataKinds, ", ")),
		Domain:      p.Domain,
		Details: map[string]interface{}{
			"provider":   p.Provider,
			"data_kinds": p.DataKinds,
		},
	}, true
}

// ShadowAIParams describes use of an unsanctioned AI service.
type ShadowAIParams struct {
	Domain           string
	Provider         string
	Sanctioned       bool
	HasSensitiveData bool
}

// BuildShadowAIAlert reports unsanctioned AI usage; sanctioned providers
// produce no alert.
func BuildShadowAIAlert(p ShadowAIParams) (models.CreateAlertInput, bool) {
	if p.Sanctioned {
		return models.CreateAlertInput{}, false
	}
	severity := resolveSeverity(models.SeverityMedium,
		severityCase{p.HasSensitiveData, models.SeverityHigh},
	)
	return models.CreateAlertInput{
		Category:    models.AlertShadowAI,
		Severity:    severity,
		Title:       fmt.Sprintf("Unsanctioned AI service: %s", p.Provider),
		Description: fmt.Sprintf("%s is not on the approved AI provider list.", p.Provider),
		Domain:      p.Domain,
		Details: map[string]interface{}{
			"provider":           p.Provider,
			"has_sensitive_data": p.HasSensitiveData,
		},
	}, true
}

// MaliciousExtensionParams describes a flagged browser extension.
type MaliciousExtensionParams struct {
	ExtensionID string
	Name        string
	RiskScore   int
	Reasons     []string
}

// BuildMaliciousExtensionAlert reports a risky extension.
func BuildMaliciousExtensionAlert(p MaliciousExtensionParams) (models.CreateAlertInput, bool) {
	severity := resolveSeverity(models.SeverityMedium,
		severityCase{p.RiskScore >= 80, models.SeverityCritical},
		severityCase{p.RiskScore >= 50, models.SeverityHigh},
	)
	return models.CreateAlertInput{
		Category:    models.AlertMaliciousExtension,
		Severity:    severity,
		Title:       fmt.Sprintf("Malicious extension: %s", p.Name),
		Description: strings.Join(p.Reasons, "; "),
		Details: map[string]interface{}{
			"extension_id": p.ExtensionID,
			"risk_score":   p.RiskScore,
			"reasons":      p.Reasons,
		},
	}, true
}

// DataExfiltrationParams describes an unusual outbound transfer.
type DataExfiltrationParams struct {
	Domain    string
	Endpoint  string
	BytesSent int64
}

// BuildDataExfiltrationAlert reports a suspicious outbound transfer.
func BuildDataExfiltrationAlert(p DataExfiltrationParams) (models.CreateAlertInput, bool) {
	severity := resolveSeverity(models.SeverityHigh,
		severityCase{p.BytesSent >= 10<<20, models.SeverityCritical},
	)
	return models.CreateAlertInput{
		Category:    models.AlertDataExfiltration,
		Severity:    severity,
		Title:       fmt.Sprintf("Possible data exfiltration to %s", p.Domain),
		Description: fmt.Sprintf("%d bytes sent to %s.", p.BytesSent, p.Endpoint),
		Domain:      p.Domain,
		Details: map[string]interface{}{
			"endpoint":   p.Endpoint,
			"bytes_sent": p.BytesSent,
		},
	}, true
}

// CredentialTheftParams describes a credential form posting somewhere risky.
type CredentialTheftParams struct {
	Domain      string
	FormAction  string
	CrossOrigin bool
	OverHTTP    bool
}

// BuildCredentialTheftAlert reports a credential form with a risky target.
func BuildCredentialTheftAlert(p CredentialTheftParams) (models.CreateAlertInput, bool) {
	severity := resolveSeverity(models.SeverityHigh,
		severityCase{p.OverHTTP, models.SeverityCritical},
		severityCase{p.CrossOrigin, models.SeverityCritical},
	)
	return models.CreateAlertInput{
		Category:    models.AlertCredentialTheft,
		Severity:    severity,
		Title:       fmt.Sprintf("Credential form risk on %s", p.Domain),
		Description: fmt.Sprintf("Login form posts to %s.", p.FormAction),
		Domain:      p.Domain,
		Details: map[string]interface{}{
			"form_action":  p.FormAction,
			"cross_origin": p.CrossOrigin,
			"over_http":    p.OverHTTP,
		},
	}, true
}

// SupplyChainParams describes a third-party script risk.
type SupplyChainParams struct {
	Domain    string
	ScriptURL string
	Integrity bool
}

// BuildSupplyChainAlert reports a third-party script loaded without
// integrity protection.
func BuildSupplyChainAlert(p SupplyChainParams) (models.CreateAlertInput, bool) {
	severity := resolveSeverity(models.SeverityMedium,
		severityCase{!p.Integrity, models.SeverityHigh},
	)
	return models.CreateAlertInput{
		Category:    models.AlertSupplyChain,
		Severity:    severity,
		Title:       fmt.Sprintf("Supply-chain risk on %s", p.Domain),
		Description: fmt.Sprintf("Third-party script %s loaded without subresource integrity.", p.ScriptURL),
		Domain:      p.Domain,
		Details: map[string]interface{}{
			"script_url": p.ScriptURL,
			"integrity":  p.Integrity,
		},
	}, true
}

// ComplianceParams describes findings from a compliance scan.
type ComplianceParams struct {
	Domain     string
	Framework  string
	Violations []string
}

// BuildComplianceAlert reports compliance gaps; zero findings produce no
// alert.
func BuildComplianceAlert(p ComplianceParams) (models.CreateAlertInput, bool) {
	if len(p.Violations) == 0 {
		return models.CreateAlertInput{}, false
	}
	severity := resolveSeverity(models.SeverityMedium,
		severityCase{len(p.Violations) >= 5, models.SeverityHigh},
	)
	return models.CreateAlertInput{
		Category:    models.AlertCompliance,
		Severity:    severity,
		Title:       fmt.Sprintf("Compliance gaps on %s", p.Domain),
		Description: fmt.Sprintf("%d %s findings.", len(p.Violations), p.Framework),
		Domain:      p.Domain,
		Details: map[string]interface{}{
			"framework":  p.Framework,
			"violations": p.Violations,
		},
	}, true
}

// PolicyViolationParams wraps a policy engine violation and the action
// the policy resolved to.
type PolicyViolationParams struct {
	Violation models.PolicyViolation
	Action    string
}

// BuildPolicyViolationAlert converts a violation into an alert; an
// "allow" action produces no alert.
func BuildPolicyViolationAlert(p PolicyViolationParams) (models.CreateAlertInput, bool) {
	if p.Action == "allow" {
		return models.CreateAlertInput{}, false
	}
	return models.CreateAlertInput{
		Category:    models.AlertPolicyViolation,
		Severity:    p.Violation.Severity,
		Title:       fmt.Sprintf("Policy violation: %s", p.Violation.RuleName),
		Description: p.Violation.Description,
		Domain:      p.Violation.Domain,
		Details: map[string]interface{}{
			"rule_id":      p.Violation.RuleID,
			"violation_id": p.Violation.ID,
			"category":     p.Violation.Category,
			"remediation":  p.Violation.Remediation,
		},
	}, true
}

// TrackingBeaconParams describes tracker activity on a page.
type TrackingBeaconParams struct {
	Domain   string
	Trackers []string
}

// BuildTrackingBeaconAlert reports tracking beacons.
func BuildTrackingBeaconAlert(p TrackingBeaconParams) (models.CreateAlertInput, bool) {
	severity := resolveSeverity(models.SeverityLow,
		severityCase{len(p.Trackers) > 10, models.SeverityMedium},
	)
	return models.CreateAlertInput{
		Category:    models.AlertTrackingBeacon,
		Severity:    severity,
		Title:       fmt.Sprintf("Tracking beacons on %s", p.Domain),
		Description: fmt.Sprintf("%d trackers detected.", len(p.Trackers)),
		Domain:      p.Domain,
		Details:     map[string]interface{}{"trackers": p.Trackers},
	}, true
}

// ClipboardHijackParams describes clipboard interception.
type ClipboardHijackParams struct {
	Domain string
	Kind   string
}

// BuildClipboardHijackAlert reports clipboard interception.
func BuildClipboardHijackAlert(p ClipboardHijackParams) (models.CreateAlertInput, bool) {
	return models.CreateAlertInput{
		Category:    models.AlertClipboardHijack,
		Severity:    models.SeverityHigh,
		Title:       fmt.Sprintf("Clipboard access on %s", p.Domain),
		Description: fmt.Sprintf("Page script intercepted the clipboard (%s).", p.Kind),
		Domain:      p.Domain,
		Details:     map[string]interface{}{"kind": p.Kind},
	}, true
}

// CookieAccessParams describes cookie enumeration by page scripts.
type CookieAccessParams struct {
	Domain     string
	Count      int
	ThirdParty bool
}

// BuildCookieAccessAlert reports heavy cookie access.
func BuildCookieAccessAlert(p CookieAccessParams) (models.CreateAlertInput, bool) {
	severity := resolveSeverity(models.SeverityInfo,
		severityCase{p.ThirdParty && p.Count > 20, models.SeverityMedium},
		severityCase{p.ThirdParty, models.SeverityLow},
	)
	return models.CreateAlertInput{
		Category:    models.AlertCookieAccess,
		Severity:    severity,
		Title:       fmt.Sprintf("Cookie access on %s", p.Domain),
		Description: fmt.Sprintf("%d cookies read.", p.Count),
		Domain:      p.Domain,
		Details: map[string]interface{}{
			"count":       p.Count,
			"third_party": p.ThirdParty,
		},
	}, true
}

// XSSParams describes an injection attempt.
type XSSParams struct {
	Domain string
	Vector string
}

// BuildXSSAlert reports a cross-site scripting attempt.
func BuildXSSAlert(p XSSParams) (models.CreateAlertInput, bool) {
	return models.CreateAlertInput{
		Category:    models.AlertXSS,
		Severity:    models.SeverityCritical,
		Title:       fmt.Sprintf("XSS attempt on %s", p.Domain),
		Description: fmt.Sprintf("Injection vector: %s.", p.Vector),
		Domain:      p.Domain,
		Details:     map[string]interface{}{"vector": p.Vector},
	}, true
}

// DOMScrapingParams describes bulk DOM field harvesting.
type DOMScrapingParams struct {
	Domain     string
	FieldCount int
}

// BuildDOMScrapingAlert reports bulk harvesting of page fields.
func BuildDOMScrapingAlert(p DOMScrapingParams) (models.CreateAlertInput, bool) {
	severity := resolveSeverity(models.SeverityMedium,
		severityCase{p.FieldCount >= 50, models.SeverityHigh},
	)
	return models.CreateAlertInput{
		Category:    models.AlertDOMScraping,
		Severity:    severity,
		Title:       fmt.Sprintf("DOM scraping on %s", p.Domain),
		Description: fmt.Sprintf("%d fields read by page script.", p.FieldCount),
		Domain:      p.Domain,
		Details:     map[string]interface{}{"field_count": p.FieldCount},
	}, true
}

// SuspiciousDownloadParams describes a risky download.
type SuspiciousDownloadParams struct {
	Domain   string
	Filename string
}

var executableExtensions = []string{".exe", ".msi", ".bat", ".cmd", ".scr", ".js", ".vbs", ".jar", ".ps1"}

// BuildSuspiciousDownloadAlert reports a download of a risky file type.
func BuildSuspiciousDownloadAlert(p SuspiciousDownloadParams) (models.CreateAlertInput, bool) {
	executable := false
	lower := strings.ToLower(p.Filename)
	for _, ext := range executableExtensions {
		if strings.HasSuffix(lower, ext) {
			executable = true
			break
		}
	}
	severity := resolveSeverity(models.SeverityMedium,
		severityCase{executable, models.SeverityHigh},
	)
	return models.CreateAlertInput{
		Category:    models.AlertSuspiciousDownload,
		Severity:    severity,
		Title:       fmt.Sprintf("Suspicious download from %s", p.Domain),
		Description: fmt.Sprintf("Downloaded %s.", p.Filename),
		Domain:      p.Domain,
		Details: map[string]interface{}{
			"filename":   p.Filename,
			"executable": executable,
		},
	}, true
}

func containsAny(haystack []string, needles ...string) bool {
	for _, h := range haystack {
		for _, n := range needles {
			if strings.EqualFold(h, n) {
				return true
			}
		}
	}
	return false
}
