package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"trustmon/internal/alerts"
	"trustmon/internal/logger"
	"trustmon/internal/policy"
	"trustmon/internal/reputation"
	"trustmon/internal/threatintel"
	"trustmon/pkg/models"
)

// Consumer feeds raw page events into the pipeline.
type Consumer interface {
	Pop(ctx context.Context) ([]byte, error)
	Close() error
}

// Pipeline runs page events through the detectors, the policy engine,
// and the alert manager, and batches created alerts to the writer.
type Pipeline struct {
	consumer      Consumer
	nrd           *reputation.NRDDetector
	typosquat     *reputation.TyposquatDetector
	threats       *threatintel.Aggregator
	engine        *policy.Engine
	manager       *alerts.Manager
	writer        AlertWriter
	metrics       *Metrics
	workers       int
	batchSize     int
	flushInterval time.Duration
}

// Options wires a pipeline.
type Options struct {
	Consumer      Consumer
	NRD           *reputation.NRDDetector
	Typosquat     *reputation.TyposquatDetector
	Threats       *threatintel.Aggregator
	Engine        *policy.Engine
	Manager       *alerts.Manager
	Writer        AlertWriter
	Metrics       *Metrics
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
}

// New creates a pipeline from the given options.
func New(opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := opts.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 2 * time.Second
	}
	return &Pipeline{
		consumer:      opts.Consumer,
		nrd:           opts.NRD,
		typosquat:     opts.Typosquat,
		threats:       opts.Threats,
		engine:        opts.Engine,
		manager:       opts.Manager,
		writer:        opts.Writer,
		metrics:       opts.Metrics,
		workers:       workers,
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Run starts the read, worker, and write loops and blocks until the
// context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	logger.Infof("trustmon pipeline started with %d workers", p.workers)

	msgCh := make(chan []byte, p.workers*4)
	alertCh := make(chan []*models.SecurityAlert, p.workers*4)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.readLoop(ctx, msgCh)
		close(msgCh)
	}()

	var workers sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			p.workerLoop(ctx, msgCh, alertCh)
		}()
	}

	// alertCh closes only after every worker has drained, so the write
	// loop sees all in-flight alerts before its final flush.
	wg.Add(1)
	go func() {
		defer wg.Done()
		workers.Wait()
		close(alertCh)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.writeLoop(alertCh)
	}()

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

// Close releases pipeline resources.
func (p *Pipeline) Close() error {
	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			logger.Errorf("Failed to close alert writer: %v", err)
		}
	}
	if p.consumer != nil {
		return p.consumer.Close()
	}
	return nil
}

func (p *Pipeline) readLoop(ctx context.Context, out chan<- []byte) {
	for {
		payload, err := p.consumer.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Errorf("Failed to pop page event: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if payload == nil {
			continue
		}
		out <- payload
	}
}

func (p *Pipeline) workerLoop(ctx context.Context, in <-chan []byte, out chan<- []*models.SecurityAlert) {
	for payload := range in {
		var event models.PageEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			logger.Warnf("Failed to parse page event: %v", err)
			continue
		}
		if event.Domain == "" {
			continue
		}

		created := p.Process(ctx, &event)
		if len(created) > 0 {
			out <- created
		}
	}
}

// Process runs one event through detection, policy evaluation, and
// alerting, and returns the alerts that were admitted.
func (p *Pipeline) Process(ctx context.Context, event *models.PageEvent) []*models.SecurityAlert {
	if p.metrics != nil {
		p.metrics.EventsProcessed.Inc()
	}

	pctx := event.Context()
	var created []*models.SecurityAlert

	rep := p.nrd.CheckDomain(ctx, event.Domain)
	if p.metrics != nil {
		p.metrics.ReputationLookups.Inc()
		if rep.Method == models.MethodError {
			p.metrics.LookupErrors.Inc()
		}
	}
	pctx["isNRD"] = rep.Verdict
	pctx["nrdConfidence"] = string(rep.Confidence)
	if rep.DomainAgeDays != nil {
		pctx["domainAgeDays"] = *rep.DomainAgeDays
	}

	squat := p.typosquat.CheckDomain(event.Domain)
	pctx["isTyposquat"] = squat.Verdict
	if squat.MatchedBrand != "" {
		pctx["typosquatBrand"] = squat.MatchedBrand
	}

	threat := p.threats.CheckDomain(ctx, event.Domain)
	if p.metrics != nil {
		p.metrics.ThreatLookups.Inc()
	}
	pctx["isThreat"] = threat.IsThreat
	pctx["threatSeverity"] = threat.Severity.String()
	pctx["threatConfidence"] = threat.Confidence

	violations := p.engine.Evaluate(pctx)
	if p.metrics != nil && len(violations) > 0 {
		p.metrics.ViolationsTotal.Add(float64(len(violations)))
	}
	for _, v := range violations {
		if alert := p.manager.AlertPolicyViolation(alerts.PolicyViolationParams{Violation: *v, Action: "alert"}); alert != nil {
			created = append(created, alert)
		}
	}

	if rep.Verdict {
		if alert := p.manager.AlertNRD(alerts.NRDAlertParams{
			Domain:           event.Domain,
			Confidence:       rep.Confidence,
			DomainAgeDays:    rep.DomainAgeDays,
			RegistrationDate: rep.RegistrationDate,
		}); alert != nil {
			created = append(created, alert)
		}
	}
	if squat.Verdict {
		if alert := p.manager.AlertTyposquat(alerts.TyposquatAlertParams{
			Domain:       event.Domain,
			MatchedBrand: squat.MatchedBrand,
			Confidence:   squat.Confidence,
			MixedScript:  squat.MixedScript,
		}); alert != nil {
			created = append(created, alert)
		}
	}

	if p.metrics != nil && len(created) > 0 {
		p.metrics.AlertsCreated.Add(float64(len(created)))
	}
	return created
}

func (p *Pipeline) writeLoop(in <-chan []*models.SecurityAlert) {
	if p.writer == nil {
		for range in {
		}
		return
	}

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	var batch []*models.SecurityAlert
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := p.writer.WriteAlerts(batch); err != nil {
			logger.Errorf("Failed to write alerts: %v", err)
			return
		}
		batch = nil
	}

	for {
		select {
		case <-ticker.C:
			flush()
		case item, ok := <-in:
			if !ok {
				flush()
				return
			}
			batch = append(batch, item...)
			if len(batch) >= p.batchSize {
				flush()
			}
		}
	}
}
