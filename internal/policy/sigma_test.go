package policy

import (
	"os"
	"path/filepath"
	"testing"

	"trustmon/pkg/models"
)

const simpleSigmaRule = `
title: Suspicious Login Page
id: test-sigma-001
description: Detects pages hosting a credential form on a fresh domain
level: high
logsource:
  category: web
tags:
  - attack.phishing
detection:
  selection:
    hasLogin: true
    domain|endswith: ".xyz"
  condition: selection
`

const aggregationSigmaRule = `
title: Too Many Requests
id: test-sigma-002
level: medium
logsource:
  category: web
detection:
  selection:
    hasLogin: true
  condition: selection | count() > 5
`

const listSigmaRule = `
title: Known Bad TLD
id: test-sigma-003
level: critical
logsource:
  category: web
detection:
  selection:
    tld:
      - xyz
      - top
  condition: selection
`

func writeSigmaDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadSigmaRulesConvertsSimpleRule(t *testing.T) {
	dir := writeSigmaDir(t, map[string]string{"simple.yml": simpleSigmaRule})

	rules, stats, err := LoadSigmaRules(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stats.TotalFiles != 1 || stats.Loaded != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	rule := rules[0]
	if rule.ID != "test-sigma-001" {
		t.Fatalf("unexpected id: %s", rule.ID)
	}
	if rule.Severity != models.SeverityHigh {
		t.Fatalf("unexpected severity: %s", rule.Severity)
	}
	if rule.Category != "web" || !rule.Enabled {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	if rule.ConditionLogic != models.LogicAnd {
		t.Fatalf("converted rules must AND their matchers, got %s", rule.ConditionLogic)
	}
	if len(rule.Conditions) != 2 {
		t.Fatalf("expected 2 conditions, got %+v", rule.Conditions)
	}

	ops := make(map[string]models.ConditionOperator, len(rule.Conditions))
	for _, c := range rule.Conditions {
		ops[c.Field] = c.Operator
	}
	if ops["hasLogin"] != models.OpEquals || ops["domain"] != models.OpEndsWith {
		t.Fatalf("unexpected operators: %v", ops)
	}
}

func TestLoadSigmaRulesSkipsAggregations(t *testing.T) {
	dir := writeSigmaDir(t, map[string]string{
		"simple.yml": simpleSigmaRule,
		"agg.yml":    aggregationSigmaRule,
	})

	rules, stats, err := LoadSigmaRules(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stats.TotalFiles != 2 || stats.Loaded != 1 || stats.SkippedComplex != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(rules) != 1 || rules[0].ID != "test-sigma-001" {
		t.Fatalf("expected only the simple rule, got %+v", rules)
	}
}

func TestLoadSigmaRulesMultiValueBecomesInList(t *testing.T) {
	dir := writeSigmaDir(t, map[string]string{"list.yml": listSigmaRule})

	rules, _, err := LoadSigmaRules(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	cond := rules[0].Conditions[0]
	if cond.Operator != models.OpInList {
		t.Fatalf("expected in_list operator, got %s", cond.Operator)
	}
	values, ok := cond.Value.([]string)
	if !ok || len(values) != 2 {
		t.Fatalf("unexpected list value: %#v", cond.Value)
	}
}

func TestLoadSigmaRulesCountsInvalidFiles(t *testing.T) {
	dir := writeSigmaDir(t, map[string]string{"broken.yml": "title: [unclosed"})

	rules, stats, err := LoadSigmaRules(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rules) != 0 || stats.SkippedInvalid != 1 {
		t.Fatalf("unexpected result: rules=%d stats=%+v", len(rules), stats)
	}
}

func TestLoadSigmaRulesMissingPathErrors(t *testing.T) {
	if _, _, err := LoadSigmaRules(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
