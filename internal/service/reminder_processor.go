package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reservehub/config"
	"reservehub/internal/domain"
	"reservehub/internal/metrics"
	"reservehub/internal/models"
	"reservehub/internal/notify"
	"reservehub/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReminderSource yields the outstanding assignments of one domain whose occurrence falls in (from, to].
// The four assignment repositories implement it.
type ReminderSource interface {
	Kind() domain.Kind
	DueReminders(ctx context.Context, from, to time.Time) ([]models.ReminderSubject, error)
}

// ReminderLedger answers which reminder keys were already delivered.
type ReminderLedger interface {
	ExistingReminderKeys(ctx context.Context, keys []string) (map[string]bool, error)
}

// ReminderSender stores and delivers one reminder.
type ReminderSender interface {
	Send(ctx context.Context, m Message) (*models.Notification, error)
}

// DomainResult is the outcome of one domain's pass.
type DomainResult struct {
	Kind    domain.Kind `json:"kind"`
	Due     int         `json:"due"`
	Sent    int         `json:"sent"`
	Skipped int         `json:"skipped"`
	Failed  int         `json:"failed"`
	Error   string      `json:"error,omitempty"`
}

// RunSummary reports a full reminder run. OK is false when any domain failed.
type RunSummary struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	OK         bool           `json:"ok"`
	Domains    []DomainResult `json:"domains"`
}

// Totals sums the per-domain counts.
func (s RunSummary) Totals() (sent, skipped, failed int) {
	for _, d := range s.Domains {
		sent += d.Sent
		skipped += d.Skipped
		failed += d.Failed
	}
	return sent, skipped, failed
}

type reminderPass struct {
	source ReminderSource
	window time.Duration
}

type ReminderProcessor struct {
	passes  []reminderPass
	ledger  ReminderLedger
	sender  ReminderSender
	loc     *time.Location
	metrics *metrics.ReminderMetrics
	log     *zap.Logger
	now     func() time.Time
}

// NewReminderProcessor builds a processor with the configured look-ahead per domain.
// A source whose kind has no configured window is rejected.
func NewReminderProcessor(cfg *config.ReminderConfig, sources []ReminderSource, ledger ReminderLedger, sender ReminderSender, m *metrics.ReminderMetrics, log *zap.Logger) (*ReminderProcessor, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("reminder time zone %q: %w", cfg.TimeZone, err)
	}
	windows := map[domain.Kind]time.Duration{
		domain.KindEvent:     cfg.EventWindow,
		domain.KindTraining:  cfg.TrainingWindow,
		domain.KindEquipment: cfg.EquipmentWindow,
		domain.KindPolicy:    cfg.PolicyWindow,
	}
	passes := make([]reminderPass, 0, len(sources))
	for _, src := range sources {
		w, ok := windows[src.Kind()]
		if !ok || w <= 0 {
			return nil, fmt.Errorf("no reminder window configured for %s", src.Kind())
		}
		passes = append(passes, reminderPass{source: src, window: w})
	}
	return &ReminderProcessor{
		passes:  passes,
		ledger:  ledger,
		sender:  sender,
		loc:     loc,
		metrics: m,
		log:     log.Named("reminders"),
		now:     time.Now,
	}, nil
}

// ProcessAll runs every domain pass concurrently. A failing domain is logged and reported
// in the summary without stopping the others. Running it twice in a row sends nothing new.
func (p *ReminderProcessor) ProcessAll(ctx context.Context) RunSummary {
	started := p.now().UTC()
	runID := uuid.NewString()
	log := p.log.With(zap.String("run_id", runID))
	log.Info("reminder run started", zap.Int("domains", len(p.passes)))

	results := make([]DomainResult, len(p.passes))
	var g errgroup.Group
	for i, pass := range p.passes {
		g.Go(func() error {
			results[i] = p.runPass(ctx, pass, started, log)
			return nil
		})
	}
	_ = g.Wait()

	summary := RunSummary{RunID: runID, StartedAt: started, OK: true, Domains: results}
	for _, r := range results {
		if r.Error != "" {
			summary.OK = false
		}
		p.metrics.ObserveDomain(string(r.Kind), r.Sent, r.Skipped, r.Failed)
	}
	summary.FinishedAt = p.now().UTC()
	p.metrics.ObserveRun(summary.OK, summary.FinishedAt.Sub(started), summary.FinishedAt)

	sent, skipped, failed := summary.Totals()
	fields := []zap.Field{
		zap.Bool("ok", summary.OK),
		zap.Int("sent", sent),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Duration("took", summary.FinishedAt.Sub(started)),
	}
	if summary.OK {
		log.Info("reminder run finished", fields...)
	} else {
		log.Error("reminder run finished with failures", fields...)
	}
	return summary
}

func (p *ReminderProcessor) runPass(ctx context.Context, pass reminderPass, now time.Time, log *zap.Logger) (res DomainResult) {
	kind := pass.source.Kind()
	res.Kind = kind
	log = log.With(zap.String("kind", string(kind)))
	defer func() {
		if r := recover(); r != nil {
			res.Error = fmt.Sprintf("panic: %v", r)
			log.Error("reminder pass panicked", zap.Any("panic", r))
		}
	}()

	subjects, err := pass.source.DueReminders(ctx, now, now.Add(pass.window))
	if err != nil {
		res.Error = err.Error()
		log.Error("fetch due reminders failed", zap.Error(err))
		return res
	}
	subjects = notify.Deduplicate(subjects, models.ReminderSubject.Key)
	res.Due = len(subjects)
	if len(subjects) == 0 {
		return res
	}

	keys := make([]string, len(subjects))
	for i, s := range subjects {
		keys[i] = s.Key()
	}
	// The unique reminder_key index is the real guard; a failed lookup only costs conflicts below.
	sentBefore, err := p.ledger.ExistingReminderKeys(ctx, keys)
	if err != nil {
		log.Warn("reminder key lookup failed, relying on insert conflicts", zap.Error(err))
		sentBefore = nil
	}

	var errs []error
	for i, s := range subjects {
		if sentBefore[keys[i]] {
			res.Skipped++
			continue
		}
		_, err := p.sender.Send(ctx, Message{
			UserID:      s.UserID,
			Type:        s.Type,
			Data:        p.localize(s.Data),
			URL:         s.URL,
			ReminderKey: keys[i],
		})
		switch {
		case err == nil:
			res.Sent++
		case errors.Is(err, repository.ErrConflict):
			res.Skipped++
		default:
			res.Failed++
			errs = append(errs, err)
			log.Warn("reminder delivery failed",
				zap.Uint("entity_id", s.EntityID), zap.Uint("user_id", s.UserID), zap.Error(err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		res.Error = err.Error()
	}
	log.Debug("reminder pass done",
		zap.Int("due", res.Due), zap.Int("sent", res.Sent), zap.Int("skipped", res.Skipped), zap.Int("failed", res.Failed))
	return res
}

// localize converts time values to the configured zone so rendered dates read in local time.
func (p *ReminderProcessor) localize(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if t, ok := v.(time.Time); ok {
			v = t.In(p.loc)
		}
		out[k] = v
	}
	return out
}
