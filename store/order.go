package store

import "context"

// Order lifecycle statuses recognized in the backing store.
const (
	StatusPendingPrint = "pending_print"
	StatusPrinted      = "printed"
)

// Payment statuses.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
)

// Item is a single ordered product with its free-text modifiers.
type Item struct {
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Price    float64  `json:"price"`
	Options  []string `json:"options,omitempty"`
	Comment  string   `json:"comment,omitempty"`
}

// Order is a read-only snapshot of one row of the orders table. The agent
// never mutates it; the only write back is the pending_print -> printed
// status transition through MarkPrinted.
type Order struct {
	ID            int64  `json:"id"`
	Number        string `json:"order_number"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	PaymentStatus string `json:"payment_status"`
	Items         []Item `json:"items"`
	Status        string `json:"status"`
}

// Store is the backing-store contract: one read shape and one conditional
// status update.
type Store interface {
	// PendingOrders returns every order still in pending_print, sorted by
	// ascending id.
	PendingOrders(ctx context.Context) ([]Order, error)

	// MarkPrinted transitions the order to printed. Calling it for an order
	// that is already printed is a no-op success.
	MarkPrinted(ctx context.Context, id int64) error
}
