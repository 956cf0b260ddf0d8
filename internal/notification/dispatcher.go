package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/danielokoh/accounts-transfer-service/internal/domain"
)

// Event is one queued notification.
type Event struct {
	ID      uuid.UUID
	Account domain.Account
	Message string
}

// Dispatcher decouples the ledger from the notifier: transfers enqueue
// events without blocking, a single worker goroutine drains the queue. A
// slow or failing notifier can therefore never stall a transfer.
type Dispatcher struct {
	notifier Notifier
	queue    chan Event
	logger   *slog.Logger
}

func NewDispatcher(notifier Notifier, bufferSize int, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		queue:    make(chan Event, bufferSize),
		logger:   logger,
	}
}

// Start runs the delivery loop until ctx is cancelled, then drains whatever
// is already queued.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("notification dispatcher started", "buffer_size", cap(d.queue))

	for {
		select {
		case <-ctx.Done():
			d.drain()
			d.logger.Info("notification dispatcher stopped")
			return
		case event := <-d.queue:
			d.notifier.Notify(ctx, event.Account, event.Message)
		}
	}
}

// Enqueue submits an event without blocking. When the queue is full the
// event is dropped: notifications are best-effort and must never hold up
// the financial path.
func (d *Dispatcher) Enqueue(account domain.Account, message string) {
	event := Event{
		ID:      uuid.New(),
		Account: account,
		Message: message,
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("notification queue full, dropping event",
			"event_id", event.ID,
			"account_id", account.ID,
		)
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.notifier.Notify(context.Background(), event.Account, event.Message)
		default:
			return
		}
	}
}
