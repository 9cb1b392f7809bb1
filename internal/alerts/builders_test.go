package alerts

import (
	"testing"
	"time"

	"trustmon/pkg/models"
)

func intPtr(v int) *int { return &v }

func TestBuildNRDAlertSeverityLadder(t *testing.T) {
	cases := []struct {
		name   string
		params NRDAlertParams
		want   models.Severity
	}{
		{"high confidence brand new", NRDAlertParams{Domain: "a.example", Confidence: models.ConfidenceHigh, DomainAgeDays: intPtr(2)}, models.SeverityCritical},
		{"high confidence older", NRDAlertParams{Domain: "a.example", Confidence: models.ConfidenceHigh, DomainAgeDays: intPtr(20)}, models.SeverityHigh},
		{"low confidence", NRDAlertParams{Domain: "a.example", Confidence: models.ConfidenceLow}, models.SeverityMedium},
	}
	for _, c := range cases {
		input, ok := BuildNRDAlert(c.params)
		if !ok {
			t.Fatalf("%s: NRD builder must always produce an alert", c.name)
		}
		if input.Severity != c.want {
			t.Fatalf("%s: got %s, want %s", c.name, input.Severity, c.want)
		}
		if input.Category != models.AlertNRD || input.Domain != "a.example" {
			t.Fatalf("%s: unexpected input %+v", c.name, input)
		}
	}
}

func TestBuildNRDAlertDetails(t *testing.T) {
	reg := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	input, _ := BuildNRDAlert(NRDAlertParams{
		Domain:           "a.example",
		Confidence:       models.ConfidenceHigh,
		DomainAgeDays:    intPtr(5),
		RegistrationDate: &reg,
	})
	if input.Details["domain_age_days"] != 5 {
		t.Fatalf("unexpected age detail: %v", input.Details)
	}
	if input.Details["registration_date"] != "2026-02-20T00:00:00Z" {
		t.Fatalf("unexpected registration detail: %v", input.Details)
	}
}

func TestBuildTyposquatAlertRequiresRealMatch(t *testing.T) {
	if _, ok := BuildTyposquatAlert(TyposquatAlertParams{Domain: "a.example"}); ok {
		t.Fatalf("no matched brand must produce no alert")
	}
	if _, ok := BuildTyposquatAlert(TyposquatAlertParams{Domain: "a.example", MatchedBrand: "paypal.com", Confidence: models.ConfidenceUnknown}); ok {
		t.Fatalf("unknown confidence must produce no alert")
	}

	input, ok := BuildTyposquatAlert(TyposquatAlertParams{
		Domain:       "paypa1.com",
		MatchedBrand: "paypal.com",
		Confidence:   models.ConfidenceMedium,
		MixedScript:  true,
	})
	if !ok {
		t.Fatalf("expected alert")
	}
	if input.Severity != models.SeverityCritical {
		t.Fatalf("mixed script must escalate to critical, got %s", input.Severity)
	}
}

func TestBuildShadowAIAlertSanctionedProviderIsSilent(t *testing.T) {
	if _, ok := BuildShadowAIAlert(ShadowAIParams{Provider: "approved", Sanctioned: true}); ok {
		t.Fatalf("sanctioned provider must produce no alert")
	}
	input, ok := BuildShadowAIAlert(ShadowAIParams{Provider: "rogue", HasSensitiveData: true})
	if !ok || input.Severity != models.SeverityHigh {
		t.Fatalf("unexpected shadow AI result: ok=%v input=%+v", ok, input)
	}
}

func TestBuildComplianceAlertNeedsFindings(t *testing.T) {
	if _, ok := BuildComplianceAlert(ComplianceParams{Domain: "a.example", Framework: "gdpr"}); ok {
		t.Fatalf("zero findings must produce no alert")
	}
	input, ok := BuildComplianceAlert(ComplianceParams{
		Domain:     "a.example",
		Framework:  "gdpr",
		Violations: []string{"v1", "v2", "v3", "v4", "v5"},
	})
	if !ok || input.Severity != models.SeverityHigh {
		t.Fatalf("five findings must escalate: ok=%v input=%+v", ok, input)
	}
}

func TestBuildPolicyViolationAlertAllowActionIsSilent(t *testing.T) {
	violation := models.PolicyViolation{
		ID:       "v-1",
		RuleID:   "r-1",
		RuleName: "test rule",
		Severity: models.SeverityHigh,
		Domain:   "a.example",
	}
	if _, ok := BuildPolicyViolationAlert(PolicyViolationParams{Violation: violation, Action: "allow"}); ok {
		t.Fatalf("allow action must produce no alert")
	}

	input, ok := BuildPolicyViolationAlert(PolicyViolationParams{Violation: violation, Action: "alert"})
	if !ok {
		t.Fatalf("expected alert")
	}
	if input.Severity != models.SeverityHigh {
		t.Fatalf("alert must inherit the violation severity, got %s", input.Severity)
	}
	if input.Details["rule_id"] != "r-1" || input.Details["violation_id"] != "v-1" {
		t.Fatalf("unexpected details: %v", input.Details)
	}
}

func TestBuildDataExfiltrationAlertEscalatesOnVolume(t *testing.T) {
	input, _ := BuildDataExfiltrationAlert(DataExfiltrationParams{Domain: "a.example", BytesSent: 20 << 20})
	if input.Severity != models.SeverityCritical {
		t.Fatalf("expected critical for large transfer, got %s", input.Severity)
	}
	input, _ = BuildDataExfiltrationAlert(DataExfiltrationParams{Domain: "a.example", BytesSent: 1 << 20})
	if input.Severity != models.SeverityHigh {
		t.Fatalf("expected high for small transfer, got %s", input.Severity)
	}
}

func TestBuildCredentialTheftAlertFirstMatchingCaseWins(t *testing.T) {
	input, _ := BuildCredentialTheftAlert(CredentialTheftParams{Domain: "a.example", OverHTTP: true, CrossOrigin: true})
	if input.Severity != models.SeverityCritical {
		t.Fatalf("expected critical, got %s", input.Severity)
	}
	input, _ = BuildCredentialTheftAlert(CredentialTheftParams{Domain: "a.example"})
	if input.Severity != models.SeverityHigh {
		t.Fatalf("expected default high, got %s", input.Severity)
	}
}

func TestBuildSuspiciousDownloadAlertExecutableEscalates(t *testing.T) {
	input, _ := BuildSuspiciousDownloadAlert(SuspiciousDownloadParams{Domain: "a.example", Filename: "Invoice.EXE"})
	if input.Severity != models.SeverityHigh {
		t.Fatalf("expected high for executable, got %s", input.Severity)
	}
	if input.Details["executable"] != true {
		t.Fatalf("expected executable detail, got %v", input.Details)
	}

	input, _ = BuildSuspiciousDownloadAlert(SuspiciousDownloadParams{Domain: "a.example", Filename: "report.pdf"})
	if input.Severity != models.SeverityMedium {
		t.Fatalf("expected medium for document, got %s", input.Severity)
	}
}

func TestBuildCookieAccessAlertSeverityCases(t *testing.T) {
	input, _ := BuildCookieAccessAlert(CookieAccessParams{Domain: "a.example", Count: 30, ThirdParty: true})
	if input.Severity != models.SeverityMedium {
		t.Fatalf("expected medium, got %s", input.Severity)
	}
	input, _ = BuildCookieAccessAlert(CookieAccessParams{Domain: "a.example", Count: 3, ThirdParty: true})
	if input.Severity != models.SeverityLow {
		t.Fatalf("expected low, got %s", input.Severity)
	}
	input, _ = BuildCookieAccessAlert(CookieAccessParams{Domain: "a.example", Count: 3})
	if input.Severity != models.SeverityInfo {
		t.Fatalf("expected info, got %s", input.Severity)
	}
}

func TestBuildXSSAlertIsAlwaysCritical(t *testing.T) {
	input, ok := BuildXSSAlert(XSSParams{Domain: "a.example", Vector: "img onerror"})
	if !ok || input.Severity != models.SeverityCritical {
		t.Fatalf("unexpected XSS alert: ok=%v input=%+v", ok, input)
	}
}
