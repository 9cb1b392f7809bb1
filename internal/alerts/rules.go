package alerts

import "trustmon/pkg/models"

// AlertRule binds default remediation actions to an alert category. The
// first enabled rule matching a new alert's category supplies its actions.
type AlertRule struct {
	ID       string
	Category models.AlertCategory
	Enabled  bool
	Actions  []models.AlertAction
}

// DefaultAlertRules is the built-in action catalogue.
func DefaultAlertRules() []AlertRule {
	return []AlertRule{
		{
			ID:       "ar-nrd",
			Category: models.AlertNRD,
			Enabled:  true,
			Actions: []models.AlertAction{
				{ID: "block-domain", Label: "Block domain"},
				{ID: "trust-domain", Label: "Trust domain"},
			},
		},
		{
			ID:       "ar-typosquat",
			Category: models.AlertTyposquat,
			Enabled:  true,
			Actions: []models.AlertAction{
				{ID: "block-domain", Label: "Block domain"},
				{ID: "report-phishing", Label: "Report phishing"},
			},
		},
		{
			ID:       "ar-ai-data",
			Category: models.AlertAISensitiveData,
			Enabled:  true,
			Actions: []models.AlertAction{
				{ID: "review-prompt", Label: "Review prompt"},
				{ID: "block-provider", Label: "Block provider"},
			},
		},
		{
			ID:       "ar-extension",
			Category: models.AlertMaliciousExtension,
			Enabled:  true,
			Actions: []models.AlertAction{
				{ID: "disable-extension", Label: "Disable extension"},
				{ID: "remove-extension", Label: "Remove extension"},
			},
		},
		{
			ID:       "ar-credential",
			Category: models.AlertCredentialTheft,
			Enabled:  true,
			Actions: []models.AlertAction{
				{ID: "block-form", Label: "Block form submission"},
				{ID: "block-domain", Label: "Block domain"},
			},
		},
		{
			ID:       "ar-compliance",
			Category: models.AlertCompliance,
			Enabled:  true,
			Actions: []models.AlertAction{
				{ID: "open-report", Label: "Open compliance report"},
			},
		},
	}
}

// fallbackActions is the generic pair used when no rule matches.
func fallbackActions() []models.AlertAction {
	return []models.AlertAction{
		{ID: "investigate", Label: "Investigate"},
		{ID: "dismiss", Label: "Dismiss"},
	}
}
