// Package agent composes the order source, the two print destinations and
// the status tracker into the resident printing loop.
package agent

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/restaurant-mitake/printer-agent/dispatch"
	"github.com/restaurant-mitake/printer-agent/store"
	"github.com/restaurant-mitake/printer-agent/ticket"
)

// Agent processes orders one at a time: render and dispatch to the cashier
// printer, then to the kitchen printer, and mark the order printed when at
// least one of the two succeeded. A fully failed order stays pending_print
// and is re-offered by the source on a later cycle.
type Agent struct {
	store    store.Store
	source   *store.Source
	renderer *ticket.Renderer
	cashier  *dispatch.Dispatcher
	kitchen  *dispatch.Dispatcher
	logger   *logrus.Logger
}

func New(st store.Store, src *store.Source, cashier, kitchen *dispatch.Dispatcher, logger *logrus.Logger) *Agent {
	return &Agent{
		store:    st,
		source:   src,
		renderer: ticket.NewRenderer(),
		cashier:  cashier,
		kitchen:  kitchen,
		logger:   logger,
	}
}

// Run consumes the order stream until ctx is cancelled, then closes both
// destinations' transports before returning.
func (a *Agent) Run(ctx context.Context) error {
	defer a.shutdown()

	a.logger.Info("printing agent started, waiting for orders")
	for order := range a.source.Stream(ctx) {
		a.process(ctx, order)
	}
	a.logger.Info("order stream closed, shutting down")
	return ctx.Err()
}

func (a *Agent) process(ctx context.Context, o store.Order) {
	log := a.logger.WithFields(logrus.Fields{
		"order_id":     o.ID,
		"order_number": o.Number,
	})
	log.Info("processing order")

	cashier := a.cashier.Dispatch(ctx, func() (*ticket.Ticket, error) {
		return a.renderer.Render(&o, ticket.RoleCashier)
	})
	kitchen := a.kitchen.Dispatch(ctx, func() (*ticket.Ticket, error) {
		return a.renderer.Render(&o, ticket.RoleKitchen)
	})

	if !cashier.OK && !kitchen.OK {
		log.Error("both destinations failed, order stays pending")
		return
	}

	if err := a.store.MarkPrinted(ctx, o.ID); err != nil {
		// The order will redeliver; at-least-once is the accepted tradeoff.
		log.WithError(err).Error("status update failed")
		return
	}
	log.WithFields(logrus.Fields{
		"cashier": cashier.OK,
		"kitchen": kitchen.OK,
	}).Info("order printed")
}

func (a *Agent) shutdown() {
	for _, d := range []*dispatch.Dispatcher{a.cashier, a.kitchen} {
		if err := d.Close(); err != nil {
			a.logger.WithError(err).Warnf("closing %s printer failed", d.Name())
		}
	}
	a.logger.Info("printers disconnected")
}
