package adapter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/restaurant-mitake/printer-agent/ticket"
)

// Mock simulates a thermal printer. Lines accumulate in memory in their
// styled display form; the cut marker flushes a bordered, timestamped block
// to the transcript file and to the console, then clears the buffer.
type Mock struct {
	name  string
	width int
	path  string
	out   io.Writer
	now   func() time.Time

	mu     sync.Mutex
	buffer []string
	open   bool
}

func NewMock(name, transcriptPath string) *Mock {
	return &Mock{
		name:  name,
		width: ticket.PaperWidth,
		path:  transcriptPath,
		out:   os.Stdout,
		now:   time.Now,
	}
}

// Open never fails for a simulated printer.
func (m *Mock) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	return nil
}

func (m *Mock) Print(t *ticket.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, line := range t.Lines {
		m.buffer = append(m.buffer, line.Styled(m.width))
	}
	if t.Cut {
		return m.flush()
	}
	return nil
}

func (m *Mock) flush() error {
	if len(m.buffer) == 0 {
		return nil
	}

	border := "+" + strings.Repeat("-", m.width+2) + "+"
	lines := []string{
		border,
		m.boxed("IMPRIMANTE MOCK: " + m.name),
		m.boxed(m.now().Format("02/01/2006 15:04:05")),
		border,
	}
	for _, l := range m.buffer {
		lines = append(lines, m.boxed(l))
	}
	lines = append(lines, border)
	block := strings.Join(lines, "\n")
	m.buffer = nil

	fmt.Fprintln(m.out, block)

	f, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript %s: %w", m.path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(block + "\n\n"); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// boxed pads a line to the paper width inside the block border, truncating
// anything wider.
func (m *Mock) boxed(s string) string {
	if utf8.RuneCountInString(s) > m.width {
		s = string([]rune(s)[:m.width])
	}
	pad := m.width - utf8.RuneCountInString(s)
	return "| " + s + strings.Repeat(" ", pad) + " |"
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.buffer = nil
	return nil
}

func (m *Mock) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}
