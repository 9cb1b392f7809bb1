package policy

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"trustmon/internal/logger"
	"trustmon/pkg/models"
)

// ViolationFilter narrows getViolations results. Severity filtering,
// acknowledged-state filtering, and the limit apply in that order.
type ViolationFilter struct {
	Severities   []models.Severity
	Acknowledged *bool
	Limit        int
}

// Listener receives each new violation synchronously. A panicking
// listener is isolated; it cannot break evaluation or other listeners.
type Listener func(*models.PolicyViolation)

// Engine evaluates a declarative rule set against per-domain evidence
// contexts. All state is constructor-owned; one engine instance maps to
// one tenant's policy set.
type Engine struct {
	mu           sync.Mutex
	order        []string
	rules        map[string]*models.PolicyRule
	violations   []*models.PolicyViolation
	listeners    map[int]Listener
	nextListener int
	now          func() time.Time
}

// NewEngine creates an engine seeded with the given rules.
func NewEngine(rules ...*models.PolicyRule) *Engine {
	e := &Engine{
		rules:     make(map[string]*models.PolicyRule),
		listeners: make(map[int]Listener),
		now:       time.Now,
	}
	for _, r := range rules {
		e.AddRule(r)
	}
	return e
}

// AddRule installs a rule. A rule with an existing ID fully replaces the
// previous definition.
func (e *Engine) AddRule(rule *models.PolicyRule) {
	if rule == nil || rule.ID == "" {
		return
	}
	r := *rule
	if r.ConditionLogic == "" {
		r.ConditionLogic = models.LogicAnd
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.rules[r.ID]; !exists {
		e.order = append(e.order, r.ID)
	}
	e.rules[r.ID] = &r
}

// RemoveRule deletes a rule; unknown IDs are a no-op.
func (e *Engine) RemoveRule(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rules[id]; !ok {
		return
	}
	delete(e.rules, id)
	for i, existing := range e.order {
		if existing == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// SetRuleEnabled toggles a rule; unknown IDs are a no-op.
func (e *Engine) SetRuleEnabled(id string, enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rule, ok := e.rules[id]; ok {
		rule.Enabled = enabled
	}
}

// Rules returns a snapshot of the installed rules in insertion order.
func (e *Engine) Rules() []models.PolicyRule {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.PolicyRule, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.rules[id])
	}
	return out
}

// Evaluate runs every enabled rule against the context and returns the
// violations that fired, one per firing rule. Listeners are notified
// synchronously for each.
func (e *Engine) Evaluate(ctx models.PolicyContext) []*models.PolicyViolation {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	var fired []*models.PolicyViolation
	for _, id := range e.order {
		rule := e.rules[id]
		if !rule.Enabled {
			continue
		}
		if !ruleMatches(rule, ctx) {
			continue
		}

		violation := &models.PolicyViolation{
			ID:          uuid.NewString(),
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			Severity:    rule.Severity,
			Category:    rule.Category,
			Domain:      ctx.Domain(),
			Description: rule.Description,
			Remediation: rule.Remediation,
			Timestamp:   now,
			Context:     ctx.Clone(),
		}
		e.violations = append(e.violations, violation)
		fired = append(fired, violation)
		e.notify(violation)
	}
	return fired
}

func ruleMatches(rule *models.PolicyRule, ctx models.PolicyContext) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	if rule.ConditionLogic == models.LogicOr {
		for _, cond := range rule.Conditions {
			if evalCondition(cond, ctx) {
				return true
			}
		}
		return false
	}
	for _, cond := range rule.Conditions {
		if !evalCondition(cond, ctx) {
			return false
		}
	}
	return true
}

func (e *Engine) notify(v *models.PolicyViolation) {
	for _, listener := range e.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Warnf("policy listener panicked on violation %s: %v", v.ID, r)
				}
			}()
			listener(v)
		}()
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
func (e *Engine) Subscribe(l Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = l
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// GetViolations returns the violation log oldest-first, optionally
// filtered.
func (e *Engine) GetViolations(f *ViolationFilter) []models.PolicyViolation {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.PolicyViolation, 0, len(e.violations))
	for _, v := range e.violations {
		if f != nil {
			if len(f.Severities) > 0 && !severityIn(v.Severity, f.Severities) {
				continue
			}
			if f.Acknowledged != nil && v.Acknowledged != *f.Acknowledged {
				continue
			}
		}
		out = append(out, *v)
	}
	if f != nil && f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

// AcknowledgeViolation marks one violation; unknown IDs are a no-op.
func (e *Engine) AcknowledgeViolation(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, v := range e.violations {
		if v.ID == id {
			v.Acknowledged = true
			return
		}
	}
}

// AcknowledgeAll marks every logged violation.
func (e *Engine) AcknowledgeAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, v := range e.violations {
		v.Acknowledged = true
	}
}

// ClearViolations empties the violation log.
func (e *Engine) ClearViolations() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.violations = nil
}

// ViolationStats counts unacknowledged violations by severity.
func (e *Engine) ViolationStats() map[models.Severity]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	stats := make(map[models.Severity]int)
	for _, v := range e.violations {
		if v.Acknowledged {
			continue
		}
		stats[v.Severity]++
	}
	return stats
}

func severityIn(s models.Severity, set []models.Severity) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}
