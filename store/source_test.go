package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedStore replays a fixed sequence of poll results, repeating the last
// one once the script runs out.
type scriptedStore struct {
	cycles  [][]Order
	errs    []error
	calls   int
	printed []int64
}

func (s *scriptedStore) PendingOrders(ctx context.Context) ([]Order, error) {
	i := s.calls
	s.calls++
	if i >= len(s.cycles) {
		i = len(s.cycles) - 1
	}
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return s.cycles[i], nil
}

func (s *scriptedStore) MarkPrinted(ctx context.Context, id int64) error {
	s.printed = append(s.printed, id)
	return nil
}

func pending(ids ...int64) []Order {
	orders := make([]Order, len(ids))
	for i, id := range ids {
		orders[i] = Order{ID: id, Status: StatusPendingPrint}
	}
	return orders
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// collect reads up to n orders from the stream, bailing out on timeout.
func collect(t *testing.T, ch <-chan Order, n int, timeout time.Duration) []int64 {
	t.Helper()
	var got []int64
	deadline := time.After(timeout)
	for len(got) < n {
		select {
		case o, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, o.ID)
		case <-deadline:
			t.Fatalf("timed out after %d of %d orders", len(got), n)
		}
	}
	return got
}

func TestSourceDeliversPendingAscending(t *testing.T) {
	st := &scriptedStore{cycles: [][]Order{pending(5, 7, 9)}}
	src := NewSource(st, quietLogger(), time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := collect(t, src.Stream(ctx), 3, time.Second)
	assert.Equal(t, []int64{5, 7, 9}, got)
}

func TestSourceCursorPreventsRedelivery(t *testing.T) {
	st := &scriptedStore{cycles: [][]Order{
		pending(5, 7, 9),
		pending(5, 7, 9, 12),
		pending(5, 7, 9, 12),
	}}
	src := NewSource(st, quietLogger(), time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First cycle delivers everything, the second only the new id.
	got := collect(t, src.Stream(ctx), 4, time.Second)
	assert.Equal(t, []int64{5, 7, 9, 12}, got)
}

func TestSourceSkipsNonPendingOrders(t *testing.T) {
	cycle := []Order{
		{ID: 1, Status: StatusPrinted},
		{ID: 2, Status: StatusPendingPrint},
	}
	st := &scriptedStore{cycles: [][]Order{cycle}}
	src := NewSource(st, quietLogger(), time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := collect(t, src.Stream(ctx), 1, time.Second)
	assert.Equal(t, []int64{2}, got)
}

func TestSourceReadErrorKeepsCursor(t *testing.T) {
	st := &scriptedStore{
		cycles: [][]Order{pending(3), nil, pending(3, 4)},
		errs:   []error{nil, errors.New("connection reset"), nil},
	}
	src := NewSource(st, quietLogger(), time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := collect(t, src.Stream(ctx), 2, time.Second)
	// The failed cycle neither duplicates 3 nor loses 4.
	assert.Equal(t, []int64{3, 4}, got)
}

func TestSourceStreamClosesOnCancel(t *testing.T) {
	st := &scriptedStore{cycles: [][]Order{nil}}
	src := NewSource(st, quietLogger(), time.Millisecond, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	ch := src.Stream(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "stream should close without delivering")
	case <-time.After(time.Second):
		t.Fatal("stream did not close after cancellation")
	}
}

func TestSourceDefaultsIntervals(t *testing.T) {
	src := NewSource(&scriptedStore{}, quietLogger(), 0, 0)
	require.Equal(t, 2*time.Second, src.interval)
	require.Equal(t, 5*time.Second, src.backoff)
}
