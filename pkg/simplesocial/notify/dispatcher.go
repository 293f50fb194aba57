// Package notify delivers comment notifications out-of-band from the
// request/response cycle: a bounded queue feeds a worker that retries
// delivery a fixed number of times with doubling backoff. Failures are
// logged and dropped; nothing here ever propagates to the caller that
// enqueued the notification.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tendant/simple-social/pkg/simplesocial"
)

const (
	defaultQueueSize  = 64
	defaultMaxRetries = 3
	defaultBaseDelay  = 10 * time.Second
	sendTimeout       = 30 * time.Second
)

// Mailer delivers a single notification. Implementations must honor the
// context deadline.
type Mailer interface {
	Send(ctx context.Context, n simplesocial.Notification) error
}

// Dispatcher implements simplesocial.Notifier with an in-process queue and
// a single delivery worker.
type Dispatcher struct {
	mailer     Mailer
	jobs       chan simplesocial.Notification
	quit       chan struct{}
	wg         sync.WaitGroup
	maxRetries int
	baseDelay  time.Duration

	mu     sync.Mutex
	closed bool
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithQueueSize sets the queue capacity.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.jobs = make(chan simplesocial.Notification, n)
		}
	}
}

// WithRetry sets the retry count and the initial backoff delay.
func WithRetry(maxRetries int, baseDelay time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if maxRetries >= 0 {
			d.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			d.baseDelay = baseDelay
		}
	}
}

// NewDispatcher creates a stopped dispatcher; call Start to begin delivery.
func NewDispatcher(mailer Mailer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		mailer:     mailer,
		jobs:       make(chan simplesocial.Notification, defaultQueueSize),
		quit:       make(chan struct{}),
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop rejects further notifications, interrupts any backoff wait, and
// blocks until queued notifications have been worked off.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	close(d.quit)
	d.wg.Wait()
}

// Notify enqueues a notification without blocking. It reports false when
// the queue is full or the dispatcher is stopped.
func (d *Dispatcher) Notify(n simplesocial.Notification) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.jobs <- n:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.jobs {
		d.deliver(n)
	}
}

// deliver attempts the send up to 1+maxRetries times with doubling delay.
func (d *Dispatcher) deliver(n simplesocial.Notification) {
	delay := d.baseDelay
	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := d.mailer.Send(ctx, n)
		cancel()
		if err == nil {
			slog.Info("Notification delivered", "to", n.To, "attempts", attempt+1)
			return
		}

		if attempt >= d.maxRetries {
			slog.Error("Notification dropped after retries",
				"to", n.To, "attempts", attempt+1, "error", err)
			return
		}

		slog.Warn("Notification delivery failed, will retry",
			"to", n.To, "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-time.After(delay):
		case <-d.quit:
			// Shutting down; remaining attempts run without delay.
		}
		delay *= 2
	}
}
