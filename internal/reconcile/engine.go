// Package reconcile drives Statuspage incidents from normalized alert group
// events. The engine owns the state machine: it reads the stored record for
// a group key, decides which remote call the event implies, performs it, and
// commits the new record with an optimistic version check.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/statusbridge/internal/domain"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/statuspage"
	"github.com/saturnino-fabrica-de-software/statusbridge/internal/store"
)

const (
	DefaultSkewTolerance = 2 * time.Minute
	DefaultMaxAttempts   = 3
	DefaultTitleTemplate = "{component_name} - Incident"
	DefaultBodyTemplate  = "{summary}"
)

// Outcome describes what a reconciliation did.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeUpdated  Outcome = "updated"
	OutcomeResolved Outcome = "resolved"
	OutcomeNoop     Outcome = "noop"
	OutcomeStale    Outcome = "stale"
)

// Result is returned for every successfully handled event, including the
// ones that changed nothing.
type Result struct {
	Outcome    Outcome `json:"outcome"`
	IncidentID string  `json:"incident_id,omitempty"`
}

// Config tunes the engine. Zero values fall back to the defaults above.
type Config struct {
	// SkewTolerance is how far behind the stored record an event may be
	// before it is discarded as stale. Covers clock drift between senders.
	SkewTolerance time.Duration

	// MaxAttempts bounds the read-decide-commit loop when version conflicts
	// force a re-read.
	MaxAttempts int

	// TitleTemplate and BodyTemplate support {component_name} and {summary}
	// placeholders.
	TitleTemplate string
	BodyTemplate  string
}

func (c Config) withDefaults() Config {
	if c.SkewTolerance == 0 {
		c.SkewTolerance = DefaultSkewTolerance
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.TitleTemplate == "" {
		c.TitleTemplate = DefaultTitleTemplate
	}
	if c.BodyTemplate == "" {
		c.BodyTemplate = DefaultBodyTemplate
	}
	return c
}

// Engine reconciles alert group events against the incident store and the
// Statuspage API.
type Engine struct {
	store  store.IncidentStore
	client statuspage.IncidentAPI
	logger *slog.Logger
	config Config

	// keys serializes reconciliations per group key so concurrent deliveries
	// for the same component cannot both observe "no incident" and create
	// two. Distinct keys proceed in parallel.
	keys keyedMutex
}

func NewEngine(s store.IncidentStore, client statuspage.IncidentAPI, logger *slog.Logger, config Config) *Engine {
	return &Engine{
		store:  s,
		client: client,
		logger: logger,
		config: config.withDefaults(),
	}
}

// Reconcile applies one event. It returns a Result on success, including
// noop and stale outcomes, and an error only when the event could not be
// applied at all.
func (e *Engine) Reconcile(ctx context.Context, event *domain.AlertGroupEvent) (*Result, error) {
	unlock := e.keys.lock(event.GroupKey)
	defer unlock()

	var lastErr error
	for attempt := 0; attempt < e.config.MaxAttempts; attempt++ {
		result, err := e.apply(ctx, event)
		if err == nil {
			e.logger.Info("event reconciled",
				"group_key", event.GroupKey,
				"status", string(event.Status),
				"outcome", string(result.Outcome),
				"incident_id", result.IncidentID,
			)
			return result, nil
		}

		if !errors.Is(err, domain.ErrVersionConflict) && !errors.Is(err, domain.ErrRecordExists) {
			return nil, err
		}

		lastErr = err
		e.logger.Warn("reconcile conflict, retrying",
			"group_key", event.GroupKey,
			"attempt", attempt+1,
		)
	}

	return nil, domain.ErrVersionConflict.WithError(
		fmt.Errorf("gave up after %d attempts: %w", e.config.MaxAttempts, lastErr))
}

// apply runs a single read-decide-commit pass.
func (e *Engine) apply(ctx context.Context, event *domain.AlertGroupEvent) (*Result, error) {
	record, err := e.store.Get(ctx, event.GroupKey)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, domain.ErrInternal.WithError(err)
	}

	if record != nil && event.ReceivedAt.Add(e.config.SkewTolerance).Before(record.LastUpdatedAt) {
		e.logger.Info("stale event discarded",
			"group_key", event.GroupKey,
			"received_at", event.ReceivedAt,
			"last_updated_at", record.LastUpdatedAt,
		)
		return &Result{Outcome: OutcomeStale, IncidentID: record.IncidentID}, nil
	}

	switch record.State() {
	case domain.StateNone:
		if event.Status == domain.StatusResolved {
			// nothing open and nothing stored, there is nothing to resolve
			return &Result{Outcome: OutcomeNoop}, nil
		}
		return e.openIncident(ctx, event, record)

	case domain.StateOpen:
		if event.Status == domain.StatusResolved {
			return e.resolveIncident(ctx, event, record)
		}
		return e.updateIncident(ctx, event, record)

	default: // domain.StateResolved
		if event.Status == domain.StatusResolved {
			// duplicate resolve, already done
			return &Result{Outcome: OutcomeNoop, IncidentID: record.IncidentID}, nil
		}
		return e.reopenIncident(ctx, event, record)
	}
}

// openIncident handles a firing event with no open incident on record. It
// first checks Statuspage for an unresolved incident already touching the
// component, adopting it instead of creating a duplicate. That covers
// restarts with an empty store and incidents opened by hand.
func (e *Engine) openIncident(ctx context.Context, event *domain.AlertGroupEvent, record *domain.IncidentRecord) (*Result, error) {
	remoteCtx := context.WithoutCancel(ctx)

	existing, err := e.client.FindIncidentForComponent(remoteCtx, event.PageID, event.ComponentID)
	if err != nil {
		return nil, domain.ErrRemoteFailure.WithError(err)
	}

	var incidentID string
	outcome := OutcomeCreated

	if existing != nil {
		incidentID = existing.ID
		outcome = OutcomeUpdated
		err = e.client.UpdateIncident(remoteCtx, event.PageID, incidentID, statuspage.UpdateIncidentRequest{
			ComponentID:     event.ComponentID,
			Body:            e.renderBody(event),
			Status:          event.IncidentStatus,
			Impact:          event.Impact,
			ComponentStatus: event.ComponentStatus,
		})
		if err != nil {
			return nil, domain.ErrRemoteFailure.WithError(err)
		}
		e.logger.Info("adopted unresolved incident",
			"group_key", event.GroupKey,
			"incident_id", incidentID,
		)
	} else {
		incidentID, err = e.client.CreateIncident(remoteCtx, statuspage.CreateIncidentRequest{
			PageID:          event.PageID,
			ComponentID:     event.ComponentID,
			Name:            e.renderTitle(event),
			Body:            e.renderBody(event),
			Status:          event.IncidentStatus,
			Impact:          event.Impact,
			ComponentStatus: event.ComponentStatus,
		})
		if err != nil {
			return nil, domain.ErrRemoteFailure.WithError(err)
		}
	}

	next := recordFromEvent(event, incidentID)

	if record == nil {
		if err := e.store.Create(ctx, next); err != nil {
			return nil, err
		}
	} else {
		// a resolved record exists for this key, replace it in place
		next.Version = record.Version + 1
		if err := e.store.CompareAndSwap(ctx, event.GroupKey, record.Version, next); err != nil {
			return nil, err
		}
	}

	return &Result{Outcome: outcome, IncidentID: incidentID}, nil
}

// updateIncident handles a firing event for a group key with an open
// incident. Events that change nothing are absorbed without a remote call.
func (e *Engine) updateIncident(ctx context.Context, event *domain.AlertGroupEvent, record *domain.IncidentRecord) (*Result, error) {
	if !eventChangesRecord(event, record) {
		return &Result{Outcome: OutcomeNoop, IncidentID: record.IncidentID}, nil
	}

	err := e.client.UpdateIncident(context.WithoutCancel(ctx), event.PageID, record.IncidentID, statuspage.UpdateIncidentRequest{
		ComponentID:     event.ComponentID,
		Body:            e.renderBody(event),
		Status:          event.IncidentStatus,
		Impact:          event.Impact,
		ComponentStatus: event.ComponentStatus,
	})
	if err != nil {
		return nil, domain.ErrRemoteFailure.WithError(err)
	}

	next := recordFromEvent(event, record.IncidentID)
	next.Version = record.Version + 1
	if err := e.store.CompareAndSwap(ctx, event.GroupKey, record.Version, next); err != nil {
		return nil, err
	}

	return &Result{Outcome: OutcomeUpdated, IncidentID: record.IncidentID}, nil
}

// resolveIncident closes the open incident for the group key.
func (e *Engine) resolveIncident(ctx context.Context, event *domain.AlertGroupEvent, record *domain.IncidentRecord) (*Result, error) {
	err := e.client.ResolveIncident(context.WithoutCancel(ctx), event.PageID, record.IncidentID, event.ComponentID)
	if err != nil {
		return nil, domain.ErrRemoteFailure.WithError(err)
	}

	next := record.Clone()
	next.LastStatus = domain.StatusResolved
	next.LastComponentStatus = domain.ComponentOperational
	next.LastIncidentStatus = domain.IncidentResolved
	next.LastUpdatedAt = event.ReceivedAt
	next.Version = record.Version + 1
	if err := e.store.CompareAndSwap(ctx, event.GroupKey, record.Version, next); err != nil {
		return nil, err
	}

	return &Result{Outcome: OutcomeResolved, IncidentID: record.IncidentID}, nil
}

// reopenIncident handles a firing event after the previous incident was
// resolved. The old incident stays closed, a fresh one is created.
func (e *Engine) reopenIncident(ctx context.Context, event *domain.AlertGroupEvent, record *domain.IncidentRecord) (*Result, error) {
	incidentID, err := e.client.CreateIncident(context.WithoutCancel(ctx), statuspage.CreateIncidentRequest{
		PageID:          event.PageID,
		ComponentID:     event.ComponentID,
		Name:            e.renderTitle(event),
		Body:            e.renderBody(event),
		Status:          event.IncidentStatus,
		Impact:          event.Impact,
		ComponentStatus: event.ComponentStatus,
	})
	if err != nil {
		return nil, domain.ErrRemoteFailure.WithError(err)
	}

	next := recordFromEvent(event, incidentID)
	next.Version = record.Version + 1
	if err := e.store.CompareAndSwap(ctx, event.GroupKey, record.Version, next); err != nil {
		return nil, err
	}

	return &Result{Outcome: OutcomeCreated, IncidentID: incidentID}, nil
}

func (e *Engine) renderTitle(event *domain.AlertGroupEvent) string {
	return renderTemplate(e.config.TitleTemplate, event)
}

func (e *Engine) renderBody(event *domain.AlertGroupEvent) string {
	return renderTemplate(e.config.BodyTemplate, event)
}

func renderTemplate(tpl string, event *domain.AlertGroupEvent) string {
	out := strings.ReplaceAll(tpl, "{component_name}", event.ComponentName)
	return strings.ReplaceAll(out, "{summary}", event.Summary)
}

func recordFromEvent(event *domain.AlertGroupEvent, incidentID string) *domain.IncidentRecord {
	return &domain.IncidentRecord{
		GroupKey:            event.GroupKey,
		IncidentID:          incidentID,
		LastStatus:          event.Status,
		LastComponentStatus: event.ComponentStatus,
		LastImpact:          event.Impact,
		LastIncidentStatus:  event.IncidentStatus,
		LastSummary:         event.Summary,
		LastUpdatedAt:       event.ReceivedAt,
		Version:             1,
	}
}

// eventChangesRecord reports whether applying the event would alter anything
// Statuspage can see.
func eventChangesRecord(event *domain.AlertGroupEvent, record *domain.IncidentRecord) bool {
	return event.ComponentStatus != record.LastComponentStatus ||
		event.Impact != record.LastImpact ||
		event.IncidentStatus != record.LastIncidentStatus ||
		event.Summary != record.LastSummary
}

// keyedMutex hands out one mutex per group key. Entries are kept for the
// process lifetime, the key space is bounded by the number of monitored
// components.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
