package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reservehub/config"
	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type fakeSource struct {
	kind     domain.Kind
	subjects []models.ReminderSubject
	err      error
	panics   bool

	mu       sync.Mutex
	from, to time.Time
}

func (f *fakeSource) Kind() domain.Kind { return f.kind }

func (f *fakeSource) DueReminders(_ context.Context, from, to time.Time) ([]models.ReminderSubject, error) {
	f.mu.Lock()
	f.from, f.to = from, to
	f.mu.Unlock()
	if f.panics {
		panic("boom")
	}
	return f.subjects, f.err
}

type fakeLedger struct {
	keys map[string]bool
	err  error
}

func (f *fakeLedger) ExistingReminderKeys(_ context.Context, keys []string) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := map[string]bool{}
	for _, k := range keys {
		if f.keys[k] {
			out[k] = true
		}
	}
	return out, nil
}

// fakeSender mimics the unique reminder_key index.
type fakeSender struct {
	mu     sync.Mutex
	stored map[string]Message
	failOn map[uint]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{stored: map[string]Message{}, failOn: map[uint]bool{}}
}

func (f *fakeSender) Send(_ context.Context, m Message) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[m.UserID] {
		return nil, errors.Join(repository.ErrTransient, errors.New("connection reset"))
	}
	if _, ok := f.stored[m.ReminderKey]; ok {
		return nil, repository.ErrConflict
	}
	f.stored[m.ReminderKey] = m
	return &models.Notification{UserID: m.UserID, Type: m.Type}, nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

func testReminderConfig() *config.ReminderConfig {
	return &config.ReminderConfig{
		EventWindow:     24 * time.Hour,
		TrainingWindow:  48 * time.Hour,
		EquipmentWindow: 24 * time.Hour,
		PolicyWindow:    48 * time.Hour,
		TimeZone:        "UTC",
	}
}

var fixedNow = time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC)

func subject(typ string, entity, user uint, at time.Time) models.ReminderSubject {
	return models.ReminderSubject{Type: typ, EntityID: entity, UserID: user, OccursAt: at, Data: map[string]any{"eventDate": at}}
}

func newTestProcessor(t *testing.T, sources []ReminderSource, ledger ReminderLedger, sender ReminderSender) *ReminderProcessor {
	t.Helper()
	p, err := NewReminderProcessor(testReminderConfig(), sources, ledger, sender, nil, zap.NewNop())
	require.NoError(t, err)
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestProcessAllIsolatesFailingDomain(t *testing.T) {
	defer goleak.VerifyNone(t)

	at := fixedNow.Add(20 * time.Hour)
	events := &fakeSource{kind: domain.KindEvent, subjects: []models.ReminderSubject{subject(domain.NotifEventReminder, 1, 10, at)}}
	trainings := &fakeSource{kind: domain.KindTraining, err: repository.ErrTransient}
	equipment := &fakeSource{kind: domain.KindEquipment, subjects: []models.ReminderSubject{subject(domain.NotifEquipmentReturnReminder, 2, 10, at)}}
	policies := &fakeSource{kind: domain.KindPolicy, subjects: []models.ReminderSubject{subject(domain.NotifPolicyAcknowledgeReminder, 3, 11, at)}}
	sender := newFakeSender()

	p := newTestProcessor(t, []ReminderSource{events, trainings, equipment, policies}, &fakeLedger{}, sender)
	summary := p.ProcessAll(context.Background())

	assert.False(t, summary.OK)
	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Domains, 4)
	assert.Equal(t, domain.KindTraining, summary.Domains[1].Kind)
	assert.NotEmpty(t, summary.Domains[1].Error)
	for _, i := range []int{0, 2, 3} {
		assert.Empty(t, summary.Domains[i].Error)
		assert.Equal(t, 1, summary.Domains[i].Sent)
	}
	assert.Equal(t, 3, sender.count())
}

func TestProcessAllUsesConfiguredWindows(t *testing.T) {
	defer goleak.VerifyNone(t)

	events := &fakeSource{kind: domain.KindEvent}
	policies := &fakeSource{kind: domain.KindPolicy}
	p := newTestProcessor(t, []ReminderSource{events, policies}, &fakeLedger{}, newFakeSender())
	summary := p.ProcessAll(context.Background())

	assert.True(t, summary.OK)
	assert.Equal(t, fixedNow, events.from)
	assert.Equal(t, fixedNow.Add(24*time.Hour), events.to)
	assert.Equal(t, fixedNow.Add(48*time.Hour), policies.to)
}

func TestProcessAllSkipsDelivered(t *testing.T) {
	defer goleak.VerifyNone(t)

	at := fixedNow.Add(5 * time.Hour)
	first := subject(domain.NotifEventReminder, 1, 10, at)
	second := subject(domain.NotifEventReminder, 1, 11, at)
	source := &fakeSource{kind: domain.KindEvent, subjects: []models.ReminderSubject{first, second, first}}
	ledger := &fakeLedger{keys: map[string]bool{first.Key(): true}}
	sender := newFakeSender()

	p := newTestProcessor(t, []ReminderSource{source}, ledger, sender)
	summary := p.ProcessAll(context.Background())
	require.True(t, summary.OK)
	assert.Equal(t, DomainResult{Kind: domain.KindEvent, Due: 2, Sent: 1, Skipped: 1}, summary.Domains[0])

	// Ledger lookups failing falls back to the store's uniqueness.
	p.ledger = &fakeLedger{err: repository.ErrTransient}
	summary = p.ProcessAll(context.Background())
	require.True(t, summary.OK)
	assert.Equal(t, DomainResult{Kind: domain.KindEvent, Due: 2, Sent: 1, Skipped: 1}, summary.Domains[0],
		"first was never stored by this sender, second now conflicts")
	assert.Equal(t, 2, sender.count())
}

func TestProcessAllCountsDeliveryFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	at := fixedNow.Add(5 * time.Hour)
	source := &fakeSource{kind: domain.KindEvent, subjects: []models.ReminderSubject{
		subject(domain.NotifEventReminder, 1, 10, at),
		subject(domain.NotifEventReminder, 1, 11, at),
	}}
	sender := newFakeSender()
	sender.failOn[10] = true

	p := newTestProcessor(t, []ReminderSource{source}, &fakeLedger{}, sender)
	summary := p.ProcessAll(context.Background())
	assert.False(t, summary.OK)
	assert.Equal(t, 1, summary.Domains[0].Sent)
	assert.Equal(t, 1, summary.Domains[0].Failed)
	sent, skipped, failed := summary.Totals()
	assert.Equal(t, []int{1, 0, 1}, []int{sent, skipped, failed})
}

func TestProcessAllRecoversPanickingSource(t *testing.T) {
	defer goleak.VerifyNone(t)

	bad := &fakeSource{kind: domain.KindTraining, panics: true}
	good := &fakeSource{kind: domain.KindEvent, subjects: []models.ReminderSubject{subject(domain.NotifEventReminder, 1, 10, fixedNow.Add(time.Hour))}}
	sender := newFakeSender()
	p := newTestProcessor(t, []ReminderSource{bad, good}, &fakeLedger{}, sender)

	summary := p.ProcessAll(context.Background())
	assert.False(t, summary.OK)
	assert.Contains(t, summary.Domains[0].Error, "boom")
	assert.Equal(t, 1, summary.Domains[1].Sent)
}

func TestProcessorLocalizesDates(t *testing.T) {
	cfg := testReminderConfig()
	cfg.TimeZone = "America/New_York"
	at := time.Date(2026, 5, 1, 16, 0, 0, 0, time.UTC)
	source := &fakeSource{kind: domain.KindEvent, subjects: []models.ReminderSubject{subject(domain.NotifEventReminder, 1, 10, at)}}
	sender := newFakeSender()
	p, err := NewReminderProcessor(cfg, []ReminderSource{source}, &fakeLedger{}, sender, nil, zap.NewNop())
	require.NoError(t, err)
	p.now = func() time.Time { return fixedNow }

	require.True(t, p.ProcessAll(context.Background()).OK)
	for _, m := range sender.stored {
		got := m.Data["eventDate"].(time.Time)
		assert.Equal(t, "America/New_York", got.Location().String())
		assert.True(t, got.Equal(at))
	}
	assert.Equal(t, at, source.subjects[0].Data["eventDate"], "source data is not mutated")
}

func TestNewReminderProcessorRejectsBadConfig(t *testing.T) {
	cfg := testReminderConfig()
	cfg.TimeZone = "Mars/Olympus"
	_, err := NewReminderProcessor(cfg, nil, &fakeLedger{}, newFakeSender(), nil, zap.NewNop())
	assert.Error(t, err)

	cfg = testReminderConfig()
	cfg.PolicyWindow = 0
	_, err = NewReminderProcessor(cfg, []ReminderSource{&fakeSource{kind: domain.KindPolicy}}, &fakeLedger{}, newFakeSender(), nil, zap.NewNop())
	assert.Error(t, err)
}
