package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"trustmon/pkg/models"
)

type ruleFile struct {
	Rules []*models.PolicyRule `yaml:"rules"`
}

// LoadRuleFile reads a YAML rule pack. Rules missing an ID are rejected
// so later toggles and replacements stay unambiguous.
func LoadRuleFile(path string) ([]*models.PolicyRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}

	var parsed ruleFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse rule file %s: %w", path, err)
	}

	for i, rule := range parsed.Rules {
		if rule == nil || rule.ID == "" {
			return nil, fmt.Errorf("rule %d in %s has no id", i, path)
		}
		if rule.ConditionLogic == "" {
			rule.ConditionLogic = models.LogicAnd
		}
	}
	return parsed.Rules, nil
}
