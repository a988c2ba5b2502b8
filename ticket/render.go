package ticket

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/restaurant-mitake/printer-agent/store"
)

// Role selects which ticket layout to render for a destination.
type Role string

const (
	RoleCashier Role = "cashier"
	RoleKitchen Role = "kitchen"
)

// ErrNoItems is returned when an order carries no item list at all.
var ErrNoItems = errors.New("order has no item list")

// Renderer turns an order into a ticket for one destination role. Rendering
// is pure: the only ambient input is the clock, injectable for tests.
type Renderer struct {
	Now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{Now: time.Now}
}

func (r *Renderer) Render(o *store.Order, role Role) (*Ticket, error) {
	if o.Items == nil {
		return nil, fmt.Errorf("order %d: %w", o.ID, ErrNoItems)
	}
	switch role {
	case RoleKitchen:
		return r.kitchen(o), nil
	default:
		return r.cashier(o), nil
	}
}

func formatPrice(p float64) string {
	return fmt.Sprintf("%.2f€", p)
}

func orderNumber(o *store.Order) string {
	if o.Number == "" {
		return "N/A"
	}
	return o.Number
}

func customerName(o *store.Order) string {
	if o.CustomerName == "" {
		return "Anonyme"
	}
	return o.CustomerName
}

func itemQuantity(it store.Item) int {
	if it.Quantity < 1 {
		return 1
	}
	return it.Quantity
}

func itemPrice(it store.Item) float64 {
	if it.Price < 0 {
		return 0
	}
	return it.Price
}

// cashier renders the customer receipt: full order details with per-item
// subtotals, the grand total and the payment banner.
func (r *Renderer) cashier(o *store.Order) *Ticket {
	b := NewBuilder()

	b.Set(Style{Align: AlignCenter, Bold: true, Width: 2, Height: 2})
	b.Text("RESTAURANT MITAKE")
	b.Set(Style{Align: AlignCenter})
	b.Text("Ticket de Caisse")
	b.Rule("=")

	b.Set(Style{Align: AlignLeft})
	b.Text(fmt.Sprintf("Commande N°: %s", orderNumber(o)))
	b.Text(fmt.Sprintf("Date: %s", r.Now().Format("02/01/2006 15:04")))
	b.Text(fmt.Sprintf("Client: %s", customerName(o)))
	if o.CustomerPhone != "" {
		b.Text(fmt.Sprintf("Tel: %s", o.CustomerPhone))
	}
	b.Rule("-")

	var total float64
	for _, it := range o.Items {
		qty := itemQuantity(it)
		subtotal := float64(qty) * itemPrice(it)
		total += subtotal

		b.Set(Style{Bold: true})
		b.Text(fmt.Sprintf("%dx %s", qty, it.Name))
		b.Set(Style{Align: AlignRight})
		b.Text(formatPrice(subtotal))
		b.Set(Style{Align: AlignLeft})
		for _, opt := range it.Options {
			b.Text(fmt.Sprintf("  + %s", opt))
		}
		if it.Comment != "" {
			b.Text(fmt.Sprintf("  Note: %s", it.Comment))
		}
		b.Feed(1)
	}

	b.Rule("-")
	b.Set(Style{Bold: true, Width: 2, Height: 2, Align: AlignRight})
	b.Text(fmt.Sprintf("TOTAL: %s", formatPrice(total)))
	b.Set(Style{Align: AlignCenter})
	b.Feed(1)
	if o.PaymentStatus == store.PaymentPaid {
		b.Set(Style{Align: AlignCenter, Bold: true})
		b.Text("✓ PAYÉ EN LIGNE")
	} else {
		b.Set(Style{Align: AlignCenter, Bold: true, Invert: true})
		b.Text("  À PAYER EN CAISSE  ")
	}

	b.Reset()
	b.Feed(1)
	b.Rule("=")
	b.Text("Merci de votre visite !")
	b.Rule("=")
	b.Feed(2)
	b.Cut()

	return b.Ticket()
}

// kitchen renders the preparation ticket: large order number and item names,
// options and notes, and strictly no price information.
func (r *Renderer) kitchen(o *store.Order) *Ticket {
	b := NewBuilder()

	b.Set(Style{Align: AlignCenter, Bold: true, Width: 3, Height: 3})
	b.Text("*** CUISINE ***")
	b.Set(Style{Align: AlignCenter})
	b.Rule("=")

	b.Set(Style{Align: AlignCenter, Bold: true, Width: 3, Height: 3})
	b.Text(fmt.Sprintf("N° %s", orderNumber(o)))
	b.Reset()
	b.Feed(1)

	b.Set(Style{Align: AlignCenter})
	b.Text(r.Now().Format("15:04"))
	b.Rule("-")

	for i, it := range o.Items {
		b.Set(Style{Align: AlignLeft, Bold: true, Width: 2, Height: 2})
		b.Text(fmt.Sprintf("%dx %s", itemQuantity(it), it.Name))
		b.Reset()

		if len(it.Options) > 0 {
			b.Set(Style{Bold: true})
			for _, opt := range it.Options {
				b.Text(fmt.Sprintf("  >> %s", opt))
			}
			b.Reset()
		}
		if it.Comment != "" {
			b.Set(Style{Bold: true, Invert: true})
			b.Text(fmt.Sprintf("  NOTE: %s", strings.ToUpper(it.Comment)))
			b.Reset()
		}
		b.Feed(1)
		if i < len(o.Items)-1 {
			b.Rule("-")
		}
	}

	b.Set(Style{Align: AlignCenter})
	b.Rule("=")
	b.Feed(2)
	b.Cut()

	return b.Ticket()
}
