package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Source polls the backing store and streams newly eligible orders exactly
// once per run. A high-water-mark cursor over the order id prevents
// redelivery across poll cycles; identifiers below a crashed-and-restarted
// cursor are naturally re-offered because the cursor only lives in memory.
type Source struct {
	store    Store
	logger   *logrus.Logger
	interval time.Duration
	backoff  time.Duration

	cursor int64
	primed bool
}

func NewSource(store Store, logger *logrus.Logger, interval, backoff time.Duration) *Source {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if backoff <= 0 {
		backoff = 5 * time.Second
	}
	return &Source{store: store, logger: logger, interval: interval, backoff: backoff}
}

// Stream returns an unbounded sequence of pending orders in ascending id
// order. The channel is unbuffered, so the next read against the store only
// happens after the caller has consumed the previous cycle's orders. The
// channel closes when ctx is cancelled.
func (s *Source) Stream(ctx context.Context) <-chan Order {
	out := make(chan Order)
	go func() {
		defer close(out)
		for {
			delay := s.interval
			orders, err := s.store.PendingOrders(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.WithError(err).Error("polling backing store failed")
				delay = s.backoff
			} else {
				for i := range orders {
					o := orders[i]
					if o.Status != StatusPendingPrint {
						// Raced with another consumer; skip silently.
						continue
					}
					if s.primed && o.ID <= s.cursor {
						continue
					}
					select {
					case out <- o:
					case <-ctx.Done():
						return
					}
					s.cursor = o.ID
					s.primed = true
				}
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
