// Package dispatch executes render-then-send print jobs against one printer
// destination with a bounded retry budget.
package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/restaurant-mitake/printer-agent/adapter"
	"github.com/restaurant-mitake/printer-agent/ticket"
)

// RenderFunc produces the ticket to print. It is invoked once per attempt so
// a ticket is never reused across reconnects.
type RenderFunc func() (*ticket.Ticket, error)

// Result is the outcome of one dispatch call, consumed immediately by the
// orchestrator.
type Result struct {
	OK       bool
	Attempts int
	Err      error
}

// Dispatcher owns the transport for one destination across the whole process
// lifetime, reconnecting lazily after failures.
type Dispatcher struct {
	name     string
	adapter  adapter.Adapter
	attempts int
	delay    time.Duration
	mock     bool
	logger   *logrus.Logger
}

func New(name string, a adapter.Adapter, attempts int, delay time.Duration, mock bool, logger *logrus.Logger) *Dispatcher {
	if attempts < 1 {
		attempts = 3
	}
	return &Dispatcher{
		name:     name,
		adapter:  a,
		attempts: attempts,
		delay:    delay,
		mock:     mock,
		logger:   logger,
	}
}

// Name returns the destination name used in logs.
func (d *Dispatcher) Name() string { return d.name }

// Dispatch connects if needed, renders and sends the ticket, retrying
// transient failures up to the attempt budget. Render failures and
// configuration errors are not retried. In mock mode a single attempt is
// made since simulated sends cannot fail for infrastructural reasons.
func (d *Dispatcher) Dispatch(ctx context.Context, render RenderFunc) Result {
	budget := d.attempts
	if d.mock {
		budget = 1
	}

	var lastErr error
	for attempt := 1; attempt <= budget; attempt++ {
		err := d.attempt(render)
		if err == nil {
			d.logger.WithFields(logrus.Fields{
				"printer": d.name,
				"attempt": attempt,
			}).Info("ticket printed")
			return Result{OK: true, Attempts: attempt}
		}

		lastErr = err
		d.logger.WithFields(logrus.Fields{
			"printer": d.name,
			"attempt": attempt,
			"of":      budget,
		}).WithError(err).Error("print attempt failed")

		// Force a clean reconnect on the next attempt.
		_ = d.adapter.Close()

		var rerr *renderError
		if errors.As(err, &rerr) || errors.Is(err, adapter.ErrConfig) {
			return Result{Attempts: attempt, Err: err}
		}

		if attempt < budget {
			select {
			case <-time.After(d.delay):
			case <-ctx.Done():
				return Result{Attempts: attempt, Err: ctx.Err()}
			}
		}
	}
	return Result{Attempts: budget, Err: lastErr}
}

func (d *Dispatcher) attempt(render RenderFunc) error {
	if !d.adapter.IsOpen() {
		if err := d.adapter.Open(); err != nil {
			return err
		}
	}
	t, err := render()
	if err != nil {
		return &renderError{err: err}
	}
	return d.adapter.Print(t)
}

// Close releases the destination's transport.
func (d *Dispatcher) Close() error {
	return d.adapter.Close()
}

// renderError wraps a ticket rendering failure so the retry loop can tell it
// apart from transport trouble; retrying a malformed order cannot help.
type renderError struct {
	err error
}

func (e *renderError) Error() string { return "render ticket: " + e.err.Error() }
func (e *renderError) Unwrap() error { return e.err }
