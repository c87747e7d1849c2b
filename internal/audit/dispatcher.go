package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ActionAppointmentCreated   = "appointment_created"
	ActionAppointmentConflict  = "appointment_conflict"
	ActionAppointmentCancelled = "appointment_cancelled"
	ActionAppointmentCompleted = "appointment_completed"
	ActionServiceCreated       = "service_created"
	ActionServiceUpdated       = "service_updated"
	ActionHoursUpdated         = "operating_hours_updated"
	ActionBusinessUpdated      = "business_updated"
	ActionBusinessProvisioned  = "business_provisioned"
	ActionBusinessActivation   = "business_activation_changed"
)

type Event struct {
	BusinessID uuid.UUID
	UserID     *uuid.UUID
	Action     string
	Entity     string
	EntityID   *uuid.UUID
	Metadata   any
}

// Dispatcher writes audit events from a single background worker. Dispatch
// never blocks: when the queue is full the event is dropped and logged.
type Dispatcher struct {
	store  Store
	logger *slog.Logger
	queue  chan Event
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(store Store, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		logger: logger,
		queue:  make(chan Event, 100),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.store.Log(ctx, ev); err != nil {
			d.logger.Error("audit write failed", "action", ev.Action, "err", err)
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("audit queue full, dropping event", "action", ev.Action)
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	<-d.done
}
