package adapter

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/restaurant-mitake/printer-agent/ticket"
)

// OSQueue submits tickets raw to a printer registered with the operating
// system's print spooler, through the CUPS lp command.
type OSQueue struct {
	name string

	mu   sync.Mutex
	lp   string
	open bool
}

func NewOSQueue(name string) *OSQueue {
	return &OSQueue{name: name}
}

func (q *OSQueue) Open() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.open {
		return nil
	}
	if q.name == "" {
		return fmt.Errorf("os print queue name missing: %w", ErrConfig)
	}
	lp, err := exec.LookPath("lp")
	if err != nil {
		return fmt.Errorf("os printing unavailable (lp not found): %w", ErrConfig)
	}
	q.lp = lp
	q.open = true
	return nil
}

func (q *OSQueue) Print(t *ticket.Ticket) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.open {
		return errors.New("os print queue not open")
	}

	cmd := exec.Command(q.lp, "-d", q.name, "-o", "raw")
	cmd.Stdin = bytes.NewReader(Encode(t))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("submit to queue %q: %v: %s", q.name, err, bytes.TrimSpace(out))
	}
	return nil
}

func (q *OSQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.open = false
	return nil
}

func (q *OSQueue) IsOpen() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.open
}
