package adapter

import (
	"errors"

	"github.com/restaurant-mitake/printer-agent/ticket"
)

// ErrConfig marks a failure that cannot be fixed by retrying: a missing
// address, an absent OS printing facility, an unsupported transport kind.
// Dispatchers give up immediately on errors wrapping it.
var ErrConfig = errors.New("printer configuration error")

// Adapter is the transport contract for one printer destination.
type Adapter interface {
	// Open establishes the connection to the printer. Calling Open while
	// already connected is a no-op returning nil.
	Open() error

	// Print sends a rendered ticket to the printer.
	Print(t *ticket.Ticket) error

	// Close releases the connection. Safe to call when not connected.
	Close() error

	// IsOpen returns whether the connection is open.
	IsOpen() bool
}
