package policy

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	sigma "github.com/bradleyjkemp/sigma-go"

	"trustmon/pkg/models"
)

// SigmaLoadStats tracks imported and skipped Sigma rules.
type SigmaLoadStats struct {
	TotalFiles     int
	Loaded         int
	SkippedComplex int
	SkippedInvalid int
}

// LoadSigmaRules imports Sigma rules from a file or directory as policy
// rules. Only simple single-event rules translate; aggregations,
// timeframes, and multi-branch detections are skipped and counted.
func LoadSigmaRules(path string) ([]*models.PolicyRule, SigmaLoadStats, error) {
	var stats SigmaLoadStats

	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, stats, fmt.Errorf("resolve sigma path: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, stats, fmt.Errorf("stat sigma path: %w", err)
	}

	files := make([]string, 0, 64)
	if info.IsDir() {
		err = filepath.WalkDir(resolved, func(filePath string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			if isYAMLFile(filePath) {
				files = append(files, filePath)
			}
			return nil
		})
		if err != nil {
			return nil, stats, fmt.Errorf("walk sigma directory: %w", err)
		}
	} else {
		if !isYAMLFile(resolved) {
			return nil, stats, fmt.Errorf("sigma rule file must end with .yml or .yaml: %s", resolved)
		}
		files = append(files, resolved)
	}

	stats.TotalFiles = len(files)
	rules := make([]*models.PolicyRule, 0, len(files))
	for _, ruleFile := range files {
		raw, err := os.ReadFile(ruleFile)
		if err != nil {
			stats.SkippedInvalid++
			continue
		}
		parsed, err := sigma.ParseRule(raw)
		if err != nil {
			stats.SkippedInvalid++
			continue
		}

		converted, ok := convertSigmaRule(parsed)
		if !ok {
			stats.SkippedComplex++
			continue
		}
		rules = append(rules, converted)
		stats.Loaded++
	}

	return rules, stats, nil
}

// convertSigmaRule translates one Sigma rule into a policy rule, or
// reports it as too complex.
func convertSigmaRule(rule sigma.Rule) (*models.PolicyRule, bool) {
	if rule.Detection.Timeframe > 0 {
		return nil, false
	}
	for _, cond := range rule.Detection.Conditions {
		if cond.Aggregation != nil {
			return nil, false
		}
		if !isSimpleSearchExpression(cond.Search) {
			return nil, false
		}
	}
	if len(rule.Detection.Searches) != 1 {
		return nil, false
	}

	var conditions []models.PolicyCondition
	for _, search := range rule.Detection.Searches {
		if len(search.Keywords) > 0 || len(search.EventMatchers) != 1 {
			return nil, false
		}
		for _, matcher := range search.EventMatchers[0] {
			cond, ok := convertFieldMatcher(matcher)
			if !ok {
				return nil, false
			}
			conditions = append(conditions, cond)
		}
	}
	if len(conditions) == 0 {
		return nil, false
	}

	id := strings.TrimSpace(rule.ID)
	if id == "" {
		id = slugify(rule.Title)
	}
	if id == "" {
		return nil, false
	}

	category := strings.TrimSpace(rule.Logsource.Category)
	if category == "" {
		category = "sigma"
	}

	return &models.PolicyRule{
		ID:             id,
		Name:           strings.TrimSpace(rule.Title),
		Description:    strings.TrimSpace(rule.Description),
		Category:       category,
		Severity:       sigmaSeverity(rule.Level),
		Enabled:        true,
		Conditions:     conditions,
		ConditionLogic: models.LogicAnd,
		Tags:           rule.Tags,
	}, true
}

func convertFieldMatcher(matcher sigma.FieldMatcher) (models.PolicyCondition, bool) {
	op := models.OpEquals
	for _, modifier := range matcher.Modifiers {
		switch strings.ToLower(modifier) {
		case "contains":
			op = models.OpContains
		case "startswith":
			op = models.OpStartsWith
		case "endswith":
			op = models.OpEndsWith
		case "re":
			op = models.OpMatchesRegex
		default:
			return models.PolicyCondition{}, false
		}
	}

	switch len(matcher.Values) {
	case 0:
		return models.PolicyCondition{}, false
	case 1:
		return models.PolicyCondition{
			Field:    matcher.Field,
			Operator: op,
			Value:    matcher.Values[0],
		}, true
	default:
		if op != models.OpEquals {
			return models.PolicyCondition{}, false
		}
		values := make([]string, 0, len(matcher.Values))
		for _, v := range matcher.Values {
			values = append(values, fmt.Sprintf("%v", v))
		}
		return models.PolicyCondition{
			Field:    matcher.Field,
			Operator: models.OpInList,
			Value:    values,
		}, true
	}
}

func sigmaSeverity(level string) models.Severity {
	s := models.ParseSeverity(level)
	if s == models.SeverityUnknown {
		return models.SeverityMedium
	}
	return s
}

func isSimpleSearchExpression(expr sigma.SearchExpr) bool {
	switch e := expr.(type) {
	case sigma.SearchIdentifier:
		return true
	case sigma.And:
		for _, child := range e {
			if !isSimpleSearchExpression(child) {
				return false
			}
		}
		return true
	case sigma.Or:
		for _, child := range e {
			if !isSimpleSearchExpression(child) {
				return false
			}
		}
		return true
	case sigma.Not:
		return isSimpleSearchExpression(e.Expr)
	default:
		return false
	}
}

func isYAMLFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}

func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}
