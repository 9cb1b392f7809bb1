package alerts

import (
	"testing"
	"time"

	"trustmon/pkg/models"
)

func newTestManager(cfg Config) *Manager {
	return NewManager(NewMemoryStore(), cfg)
}

func nrdInput(domain string, severity models.Severity) models.CreateAlertInput {
	return models.CreateAlertInput{
		Category: models.AlertNRD,
		Severity: severity,
		Title:    "Newly registered domain: " + domain,
		Domain:   domain,
	}
}

func TestCreateAlertAdmissionFilter(t *testing.T) {
	m := newTestManager(Config{MinSeverities: []models.Severity{models.SeverityCritical, models.SeverityHigh}})

	if alert := m.CreateAlert(nrdInput("a.example", models.SeverityMedium)); alert != nil {
		t.Fatalf("medium alert must be dropped below the high/critical floor")
	}
	alert := m.CreateAlert(nrdInput("a.example", models.SeverityHigh))
	if alert == nil {
		t.Fatalf("high alert must be admitted")
	}
	if alert.ID == "" || alert.Status != models.StatusNew {
		t.Fatalf("unexpected created alert: %+v", alert)
	}
	if m.GetAlertCount(nil) != 1 {
		t.Fatalf("expected 1 stored alert, got %d", m.GetAlertCount(nil))
	}
}

func TestCreateAlertEmptyAdmissionSetAdmitsInfo(t *testing.T) {
	m := newTestManager(Config{})

	if alert := m.CreateAlert(nrdInput("a.example", models.SeverityInfo)); alert == nil {
		t.Fatalf("empty admission set must admit info alerts")
	}
	if alert := m.CreateAlert(nrdInput("b.example", models.SeverityUnknown)); alert != nil {
		t.Fatalf("unknown severity stays below the info floor")
	}
}

func TestCreateAlertCooldownSuppressesRepeats(t *testing.T) {
	m := newTestManager(Config{Cooldown: time.Minute})
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	if m.CreateAlert(nrdInput("a.example", models.SeverityHigh)) == nil {
		t.Fatalf("first alert must be created")
	}
	if m.CreateAlert(nrdInput("a.example", models.SeverityHigh)) != nil {
		t.Fatalf("repeat within cooldown must be suppressed")
	}
	if m.CreateAlert(nrdInput("other.example", models.SeverityHigh)) == nil {
		t.Fatalf("different domain must not share the cooldown key")
	}
	if m.CreateAlert(models.CreateAlertInput{Category: models.AlertTyposquat, Severity: models.SeverityHigh, Domain: "a.example"}) == nil {
		t.Fatalf("different category must not share the cooldown key")
	}

	m.now = func() time.Time { return base.Add(2 * time.Minute) }
	if m.CreateAlert(nrdInput("a.example", models.SeverityHigh)) == nil {
		t.Fatalf("alert must be created again after the cooldown expires")
	}
}

func TestCreateAlertAttachesRuleActions(t *testing.T) {
	m := newTestManager(Config{})

	alert := m.CreateAlert(nrdInput("a.example", models.SeverityHigh))
	if len(alert.Actions) != 2 || alert.Actions[0].ID != "block-domain" {
		t.Fatalf("expected nrd rule actions, got %+v", alert.Actions)
	}

	generic := m.CreateAlert(models.CreateAlertInput{Category: models.AlertXSS, Severity: models.SeverityCritical, Domain: "b.example"})
	if len(generic.Actions) != 2 || generic.Actions[0].ID != "investigate" {
		t.Fatalf("expected fallback actions, got %+v", generic.Actions)
	}
}

func TestUpdateAlertStatusUnknownIDIsNoOp(t *testing.T) {
	m := newTestManager(Config{})
	alert := m.CreateAlert(nrdInput("a.example", models.SeverityHigh))

	m.UpdateAlertStatus("nope", models.StatusResolved)
	m.UpdateAlertStatus(alert.ID, models.StatusResolved)

	got := m.GetAlerts(&Filter{Statuses: []models.AlertStatus{models.StatusResolved}})
	if len(got) != 1 || got[0].ID != alert.ID {
		t.Fatalf("unexpected resolved alerts: %+v", got)
	}
}

func TestSubscribeReceivesCreatedAlerts(t *testing.T) {
	m := newTestManager(Config{})

	var received []*models.SecurityAlert
	m.Subscribe(func(a *models.SecurityAlert) { panic("boom") })
	unsubscribe := m.Subscribe(func(a *models.SecurityAlert) { received = append(received, a) })

	m.CreateAlert(nrdInput("a.example", models.SeverityHigh))
	if len(received) != 1 {
		t.Fatalf("listener must survive a sibling panic, got %d deliveries", len(received))
	}

	unsubscribe()
	m.CreateAlert(nrdInput("b.example", models.SeverityHigh))
	if len(received) != 1 {
		t.Fatalf("unsubscribed listener must not be called")
	}
}

func TestAcknowledgeAllOnlyMovesNewAlerts(t *testing.T) {
	m := newTestManager(Config{})

	first := m.CreateAlert(nrdInput("a.example", models.SeverityHigh))
	second := m.CreateAlert(nrdInput("b.example", models.SeverityHigh))
	m.UpdateAlertStatus(second.ID, models.StatusResolved)

	if moved := m.AcknowledgeAll(); moved != 1 {
		t.Fatalf("expected 1 alert moved, got %d", moved)
	}

	got := m.GetAlerts(&Filter{Statuses: []models.AlertStatus{models.StatusAcknowledged}})
	if len(got) != 1 || got[0].ID != first.ID {
		t.Fatalf("unexpected acknowledged alerts: %+v", got)
	}
}

func TestClearResolvedDeletesOnlyTerminalAlerts(t *testing.T) {
	m := newTestManager(Config{})

	kept := m.CreateAlert(nrdInput("a.example", models.SeverityHigh))
	resolved := m.CreateAlert(nrdInput("b.example", models.SeverityHigh))
	dismissed := m.CreateAlert(nrdInput("c.example", models.SeverityHigh))
	m.UpdateAlertStatus(resolved.ID, models.StatusResolved)
	m.UpdateAlertStatus(dismissed.ID, models.StatusDismissed)

	if removed := m.ClearResolved(); removed != 2 {
		t.Fatalf("expected 2 alerts removed, got %d", removed)
	}

	remaining := m.GetAlerts(nil)
	if len(remaining) != 1 || remaining[0].ID != kept.ID {
		t.Fatalf("unexpected remaining alerts: %+v", remaining)
	}
}

func TestAlertBuilderMethodsRespectNoAlertSentinel(t *testing.T) {
	m := newTestManager(Config{})

	if alert := m.AlertTyposquat(TyposquatAlertParams{Domain: "a.example"}); alert != nil {
		t.Fatalf("no-match typosquat evidence must not create an alert")
	}
	if alert := m.AlertShadowAI(ShadowAIParams{Provider: "approved", Sanctioned: true}); alert != nil {
		t.Fatalf("sanctioned provider must not create an alert")
	}

	alert := m.AlertNRD(NRDAlertParams{Domain: "fresh.example", Confidence: models.ConfidenceHigh})
	if alert == nil || alert.Category != models.AlertNRD {
		t.Fatalf("expected NRD alert, got %+v", alert)
	}
}
