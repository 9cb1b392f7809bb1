package policy

import "trustmon/pkg/models"

// DefaultRules is the built-in detection policy shipped with the monitor.
func DefaultRules() []*models.PolicyRule {
	return []*models.PolicyRule{
		{
			ID:          "dp-001",
			Name:        "Newly registered domain",
			Description: "The visited domain was registered within the NRD threshold window.",
			Category:    "domain-reputation",
			Severity:    models.SeverityHigh,
			Enabled:     true,
			Conditions: []models.PolicyCondition{
				{Field: "isNRD", Operator: models.OpEquals, Value: true},
			},
			Remediation: "Verify the site's legitimacy before entering any data.",
			Tags:        []string{"nrd", "phishing"},
		},
		{
			ID:          "dp-002",
			Name:        "Typosquat domain",
			Description: "The visited domain visually imitates a trusted brand domain.",
			Category:    "domain-reputation",
			Severity:    models.SeverityCritical,
			Enabled:     true,
			Conditions: []models.PolicyCondition{
				{Field: "isTyposquat", Operator: models.OpEquals, Value: true},
			},
			Remediation: "Leave the site and navigate to the brand's real domain directly.",
			Tags:        []string{"typosquat", "phishing"},
		},
		{
			ID:             "dp-003",
			Name:           "Login form on newly registered domain",
			Description:    "A credential form was found on a domain registered recently.",
			Category:       "credential-safety",
			Severity:       models.SeverityCritical,
			Enabled:        true,
			ConditionLogic: models.LogicAnd,
			Conditions: []models.PolicyCondition{
				{Field: "isNRD", Operator: models.OpEquals, Value: true},
				{Field: "hasLogin", Operator: models.OpEquals, Value: true},
			},
			Remediation: "Do not submit credentials; report the domain.",
			Tags:        []string{"nrd", "credentials"},
		},
		{
			ID:             "dp-004",
			Name:           "Cookies without privacy policy",
			Description:    "The site sets cookies but publishes no privacy policy.",
			Category:       "compliance",
			Severity:       models.SeverityMedium,
			Enabled:        true,
			ConditionLogic: models.LogicAnd,
			Conditions: []models.PolicyCondition{
				{Field: "hasPrivacyPolicy", Operator: models.OpEquals, Value: false},
				{Field: "cookieCount", Operator: models.OpGreaterThan, Value: 0},
			},
			Remediation: "Flag the site to the compliance team.",
			Tags:        []string{"privacy", "gdpr"},
		},
		{
			ID:             "dp-005",
			Name:           "Sensitive data sent to AI provider",
			Description:    "Sensitive content was detected in a prompt to an AI provider.",
			Category:       "ai-data-leakage",
			Severity:       models.SeverityCritical,
			Enabled:        true,
			ConditionLogic: models.LogicAnd,
			Conditions: []models.PolicyCondition{
				{Field: "isAIProvider", Operator: models.OpEquals, Value: true},
				{Field: "hasSensitiveData", Operator: models.OpEquals, Value: true},
			},
			Remediation: "Review the prompt contents and the provider's data retention terms.",
			Tags:        []string{"ai", "dlp"},
		},
		{
			ID:          "dp-006",
			Name:        "Threat intelligence match",
			Description: "One or more threat sources reported this domain.",
			Category:    "threat-intel",
			Severity:    models.SeverityHigh,
			Enabled:     true,
			Conditions: []models.PolicyCondition{
				{Field: "threatSeverity", Operator: models.OpInList, Value: []string{"critical", "high"}},
			},
			Remediation: "Block the domain pending investigation.",
			Tags:        []string{"threat-intel"},
		},
		{
			ID:          "dp-007",
			Name:        "Excessive CSP violations",
			Description: "The page triggered an unusual number of Content-Security-Policy violations.",
			Category:    "page-integrity",
			Severity:    models.SeverityLow,
			Enabled:     true,
			Conditions: []models.PolicyCondition{
				{Field: "cspViolationCount", Operator: models.OpGreaterThan, Value: 5},
			},
			Remediation: "Inspect injected scripts and extensions active on the page.",
			Tags:        []string{"csp"},
		},
	}
}
