package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"trustmon/internal/alerts"
	"trustmon/internal/cache"
	"trustmon/internal/policy"
	"trustmon/internal/reputation"
	"trustmon/internal/threatintel"
	"trustmon/pkg/models"
)

type fixedRegistrationSource struct {
	registered map[string]time.Time
}

func (f *fixedRegistrationSource) Lookup(ctx context.Context, domain string) (*reputation.RegistrationRecord, error) {
	at, ok := f.registered[domain]
	if !ok {
		return &reputation.RegistrationRecord{Domain: domain}, nil
	}
	return &reputation.RegistrationRecord{
		Domain: domain,
		Events: []reputation.RegistrationEvent{{Action: "registration", Date: at}},
	}, nil
}

type queueConsumer struct {
	payloads [][]byte
	mu       sync.Mutex
}

func (c *queueConsumer) Pop(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	if len(c.payloads) > 0 {
		next := c.payloads[0]
		c.payloads = c.payloads[1:]
		c.mu.Unlock()
		return next, nil
	}
	c.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *queueConsumer) Close() error { return nil }

type collectingWriter struct {
	mu     sync.Mutex
	alerts []*models.SecurityAlert
	closed bool
}

func (w *collectingWriter) WriteAlerts(batch []*models.SecurityAlert) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.alerts = append(w.alerts, batch...)
	return nil
}

func (w *collectingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *collectingWriter) snapshot() []*models.SecurityAlert {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*models.SecurityAlert, len(w.alerts))
	copy(out, w.alerts)
	return out
}

func newTestPipeline(consumer Consumer, writer AlertWriter, registered map[string]time.Time) *Pipeline {
	src := &fixedRegistrationSource{registered: registered}
	nrd := reputation.NewNRDDetector(src, cache.NewMemoryStore(), reputation.NRDConfig{ThresholdDays: 30})
	typosquat := reputation.NewTyposquatDetector(reputation.TyposquatConfig{})
	threats := threatintel.NewAggregator(cache.NewMemoryStore(), threatintel.Config{},
		threatintel.NewPatternChecker(nil),
	)
	engine := policy.NewEngine(policy.DefaultRules()...)
	manager := alerts.NewManager(alerts.NewMemoryStore(), alerts.Config{})

	return New(Options{
		Consumer:      consumer,
		NRD:           nrd,
		Typosquat:     typosquat,
		Threats:       threats,
		Engine:        engine,
		Manager:       manager,
		Writer:        writer,
		Workers:       2,
		BatchSize:     10,
		FlushInterval: 20 * time.Millisecond,
	})
}

func TestProcessFreshPhishingDomainRaisesViolationsAndAlerts(t *testing.T) {
	registered := map[string]time.Time{
		"new-phish-secure-login.xyz": time.Now().AddDate(0, 0, -10),
	}
	p := newTestPipeline(&queueConsumer{}, nil, registered)

	event := &models.PageEvent{
		Timestamp: time.Now(),
		Domain:    "new-phish-secure-login.xyz",
		Fields:    map[string]interface{}{"hasLogin": true},
	}

	created := p.Process(context.Background(), event)

	byCategory := make(map[models.AlertCategory]int, len(created))
	violationRules := make(map[string]bool)
	for _, alert := range created {
		byCategory[alert.Category]++
		if alert.Category == models.AlertPolicyViolation {
			violationRules[alert.Details["rule_id"].(string)] = true
		}
	}

	if byCategory[models.AlertNRD] != 1 {
		t.Fatalf("expected 1 NRD alert, got %d (%+v)", byCategory[models.AlertNRD], created)
	}
	if byCategory[models.AlertPolicyViolation] != 3 {
		t.Fatalf("expected 3 policy violation alerts, got %d", byCategory[models.AlertPolicyViolation])
	}
	if !violationRules["dp-001"] || !violationRules["dp-003"] || !violationRules["dp-006"] {
		t.Fatalf("expected dp-001, dp-003, dp-006 to fire, got %v", violationRules)
	}
	if byCategory[models.AlertTyposquat] != 0 {
		t.Fatalf("did not expect a typosquat alert for an unrelated name")
	}
}

func TestProcessCleanEstablishedDomainStaysQuiet(t *testing.T) {
	p := newTestPipeline(&queueConsumer{}, nil, map[string]time.Time{
		"example.org": time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	event := &models.PageEvent{
		Timestamp: time.Now(),
		Domain:    "example.org",
		Fields:    map[string]interface{}{"hasLogin": true},
	}

	if created := p.Process(context.Background(), event); len(created) != 0 {
		t.Fatalf("expected no alerts for an established clean domain, got %+v", created)
	}
}

func TestProcessTyposquatDomainRaisesTyposquatAlert(t *testing.T) {
	p := newTestPipeline(&queueConsumer{}, nil, nil)

	event := &models.PageEvent{
		Timestamp: time.Now(),
		Domain:    "paypa1.com",
		Fields:    map[string]interface{}{},
	}

	created := p.Process(context.Background(), event)

	var typosquat, violation bool
	for _, alert := range created {
		switch alert.Category {
		case models.AlertTyposquat:
			typosquat = true
		case models.AlertPolicyViolation:
			if alert.Details["rule_id"] == "dp-002" {
				violation = true
			}
		}
	}
	if !typosquat {
		t.Fatalf("expected a typosquat alert, got %+v", created)
	}
	if !violation {
		t.Fatalf("expected the typosquat policy rule to fire, got %+v", created)
	}
}

func TestRunDrainsConsumerAndFlushesAlerts(t *testing.T) {
	registered := map[string]time.Time{
		"new-phish-secure-login.xyz": time.Now().AddDate(0, 0, -10),
	}
	payload, err := json.Marshal(models.PageEvent{
		Timestamp: time.Now(),
		Domain:    "new-phish-secure-login.xyz",
		Fields:    map[string]interface{}{"hasLogin": true},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	consumer := &queueConsumer{payloads: [][]byte{payload, []byte("not json")}}
	writer := &collectingWriter{}
	p := newTestPipeline(consumer, writer, registered)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(writer.snapshot()) == 0 {
		select {
		case <-deadline:
			t.Fatalf("no alerts flushed before deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("pipeline did not stop after cancel")
	}

	flushed := writer.snapshot()
	if len(flushed) != 4 {
		t.Fatalf("expected 4 alerts flushed, got %d", len(flushed))
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !writer.closed {
		t.Fatalf("close must close the writer")
	}
}
