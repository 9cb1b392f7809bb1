package alerts

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"trustmon/internal/logger"
	"trustmon/pkg/models"
)

// Config tunes the alert manager.
type Config struct {
	// MinSeverities is the admission set; the effective minimum is its
	// least severe entry. Empty admits everything down to info.
	MinSeverities []models.Severity
	// Cooldown suppresses repeat alerts for the same (category, domain)
	// pair inside the window. Zero disables suppression.
	Cooldown time.Duration
	// Rules supply default actions per category; nil uses the built-ins.
	Rules []AlertRule
}

// Listener receives each created alert synchronously.
type Listener func(*models.SecurityAlert)

// Manager owns alert identity and the status lifecycle. All persistence
// goes through the injected Store.
type Manager struct {
	mu           sync.Mutex
	store        Store
	rules        []AlertRule
	minSeverity  models.Severity
	cooldown     time.Duration
	lastAlert    map[string]time.Time
	listeners    map[int]Listener
	nextListener int
	now          func() time.Time
}

// NewManager wires a manager over the given store.
func NewManager(store Store, cfg Config) *Manager {
	minSeverity := models.SeverityInfo
	if len(cfg.MinSeverities) > 0 {
		minSeverity = cfg.MinSeverities[0]
		for _, s := range cfg.MinSeverities[1:] {
			if s < minSeverity {
				minSeverity = s
			}
		}
	}
	rules := cfg.Rules
	if rules == nil {
		rules = DefaultAlertRules()
	}
	return &Manager{
		store:       store,
		rules:       rules,
		minSeverity: minSeverity,
		cooldown:    cfg.Cooldown,
		lastAlert:   make(map[string]time.Time),
		listeners:   make(map[int]Listener),
		now:         time.Now,
	}
}

// CreateAlert admits a builder input as a stored alert. It returns nil
// when the severity falls below the configured minimum or the
// (category, domain) pair is still inside its cooldown window.
func (m *Manager) CreateAlert(input models.CreateAlertInput) *models.SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !input.Severity.AtLeast(m.minSeverity) {
		return nil
	}

	now := m.now()
	key := string(input.Category) + "|" + input.Domain
	if m.cooldown > 0 {
		if last, ok := m.lastAlert[key]; ok && now.Sub(last) < m.cooldown {
			return nil
		}
	}

	alert := &models.SecurityAlert{
		ID:          uuid.NewString(),
		Category:    input.Category,
		Severity:    input.Severity,
		Status:      models.StatusNew,
		Title:       input.Title,
		Description: input.Description,
		Domain:      input.Domain,
		Timestamp:   now,
		Details:     input.Details,
		Actions:     m.actionsFor(input.Category),
	}
	if err := m.store.Insert(alert); err != nil {
		logger.Errorf("alert store insert failed for %s: %v", alert.ID, err)
		return nil
	}
	m.lastAlert[key] = now
	m.notify(alert)
	return alert
}

// actionsFor returns the first enabled matching rule's actions, falling
// back to the generic investigate/dismiss pair.
func (m *Manager) actionsFor(category models.AlertCategory) []models.AlertAction {
	for _, rule := range m.rules {
		if rule.Enabled && rule.Category == category {
			return rule.Actions
		}
	}
	return fallbackActions()
}

// UpdateAlertStatus moves an alert to the given status; unknown IDs are
// a no-op.
func (m *Manager) UpdateAlertStatus(id string, status models.AlertStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	alert, ok := m.store.Get(id)
	if !ok {
		return
	}
	alert.Status = status
	if err := m.store.Update(alert); err != nil {
		logger.Errorf("alert store update failed for %s: %v", id, err)
	}
}

// GetAlerts returns stored alerts newest-first, optionally filtered.
func (m *Manager) GetAlerts(f *Filter) []*models.SecurityAlert {
	return m.store.List(f)
}

// GetAlertCount counts stored alerts, optionally filtered.
func (m *Manager) GetAlertCount(f *Filter) int {
	return m.store.Count(f)
}

// Subscribe registers a listener and returns its unsubscribe function.
func (m *Manager) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = l
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// AcknowledgeAll moves every new alert to acknowledged and returns how
// many moved. Resolved and dismissed alerts are untouched.
func (m *Manager) AcknowledgeAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	moved := 0
	for _, alert := range m.store.List(&Filter{Statuses: []models.AlertStatus{models.StatusNew}}) {
		alert.Status = models.StatusAcknowledged
		if err := m.store.Update(alert); err != nil {
			logger.Errorf("alert store update failed for %s: %v", alert.ID, err)
			continue
		}
		moved++
	}
	return moved
}

// ClearResolved permanently deletes every resolved or dismissed alert
// and returns how many were removed.
func (m *Manager) ClearResolved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	terminal := &Filter{Statuses: []models.AlertStatus{models.StatusResolved, models.StatusDismissed}}
	for _, alert := range m.store.List(terminal) {
		if err := m.store.Delete(alert.ID); err != nil {
			logger.Errorf("alert store delete failed for %s: %v", alert.ID, err)
			continue
		}
		removed++
	}
	return removed
}

func (m *Manager) notify(alert *models.SecurityAlert) {
	for _, listener := range m.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Warnf("alert listener panicked on alert %s: %v", alert.ID, r)
				}
			}()
			listener(alert)
		}()
	}
}

// AlertNRD runs the NRD builder through the admission pipeline.
func (m *Manager) AlertNRD(p NRDAlertParams) *models.SecurityAlert {
	return m.fromBuilder(BuildNRDAlert(p))
}

// AlertTyposquat runs the typosquat builder through the admission pipeline.
func (m *Manager) AlertTyposquat(p TyposquatAlertParams) *models.SecurityAlert {
	return m.fromBuilder(BuildTyposquatAlert(p))
}

// AlertAISensitiveData reports sensitive data sent to an AI provider.
func (m *Manager) AlertAISensitiveData(p AISensitiveDataParams) *models.SecurityAlert {
	return m.fromBuilder(BuildAISensitiveDataAlert(p))
}

// AlertShadowAI reports unsanctioned AI usage.
func (m *Manager) AlertShadowAI(p ShadowAIParams) *models.SecurityAlert {
	return m.fromBuilder(BuildShadowAIAlert(p))
}

// AlertMaliciousExtension reports a risky browser extension.
func (m *Manager) AlertMaliciousExtension(p MaliciousExtensionParams) *models.SecurityAlert {
	return m.fromBuilder(BuildMaliciousExtensionAlert(p))
}

// AlertDataExfiltration reports a suspicious outbound transfer.
func (m *Manager) AlertDataExfiltration(p DataExfiltrationParams) *models.SecurityAlert {
	return m.fromBuilder(BuildDataExfiltrationAlert(p))
}

// AlertCredentialTheft reports a risky credential form.
func (m *Manager) AlertCredentialTheft(p CredentialTheftParams) *models.SecurityAlert {
	return m.fromBuilder(BuildCredentialTheftAlert(p))
}

// AlertSupplyChain reports a third-party script risk.
func (m *Manager) AlertSupplyChain(p SupplyChainParams) *models.SecurityAlert {
	return m.fromBuilder(BuildSupplyChainAlert(p))
}

// AlertCompliance reports compliance gaps.
func (m *Manager) AlertCompliance(p ComplianceParams) *models.SecurityAlert {
	return m.fromBuilder(BuildComplianceAlert(p))
}

// AlertPolicyViolation converts a policy violation into an alert.
func (m *Manager) AlertPolicyViolation(p PolicyViolationParams) *models.SecurityAlert {
	return m.fromBuilder(BuildPolicyViolationAlert(p))
}

// AlertTrackingBeacon reports tracking beacons.
func (m *Manager) AlertTrackingBeacon(p TrackingBeaconParams) *models.SecurityAlert {
	return m.fromBuilder(BuildTrackingBeaconAlert(p))
}

// AlertClipboardHijack reports clipboard interception.
func (m *Manager) AlertClipboardHijack(p ClipboardHijackParams) *models.SecurityAlert {
	return m.fromBuilder(BuildClipboardHijackAlert(p))
}

// AlertCookieAccess reports heavy cookie access.
func (m *Manager) AlertCookieAccess(p CookieAccessParams) *models.SecurityAlert {
	return m.fromBuilder(BuildCookieAccessAlert(p))
}

// AlertXSS reports a cross-site scripting attempt.
func (m *Manager) AlertXSS(p XSSParams) *models.SecurityAlert {
	return m.fromBuilder(BuildXSSAlert(p))
}

// AlertDOMScraping reports bulk DOM field harvesting.
func (m *Manager) AlertDOMScraping(p DOMScrapingParams) *models.SecurityAlert {
	return m.fromBuilder(BuildDOMScrapingAlert(p))
}

// AlertSuspiciousDownload reports a risky download.
func (m *Manager) AlertSuspiciousDownload(p SuspiciousDownloadParams) *models.SecurityAlert {
	return m.fromBuilder(BuildSuspiciousDownloadAlert(p))
}

func (m *Manager) fromBuilder(input models.CreateAlertInput, ok bool) *models.SecurityAlert {
	if !ok {
		return nil
	}
	return m.CreateAlert(input)
}
