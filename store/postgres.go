package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

// Connect opens the orders database and waits for it to become reachable.
func Connect(ctx context.Context, url string) (*sql.DB, error) {
	const (
		maxRetries = 10
		retryDelay = 2 * time.Second
		pingTTL    = 5 * time.Second
	)

	var db *sql.DB
	var err error

	for i := 1; i <= maxRetries; i++ {
		db, err = sql.Open("pgx", url)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}

		pctx, cancel := context.WithTimeout(ctx, pingTTL)
		err = db.PingContext(pctx)
		cancel()
		if err == nil {
			return db, nil
		}
		_ = db.Close()

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("database ping canceled: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("database unreachable after %d attempts: %w", maxRetries, err)
}

// Postgres implements Store against the orders table.
type Postgres struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewPostgres(db *sql.DB, logger *logrus.Logger) *Postgres {
	return &Postgres{db: db, logger: logger}
}

func (p *Postgres) PendingOrders(ctx context.Context) ([]Order, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, order_number, customer_name, customer_phone, payment_status, items, status
		FROM orders
		WHERE status = $1
		ORDER BY id`, StatusPendingPrint)
	if err != nil {
		return nil, fmt.Errorf("select pending orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var (
			o     Order
			name  sql.NullString
			phone sql.NullString
			items []byte
		)
		if err := rows.Scan(&o.ID, &o.Number, &name, &phone, &o.PaymentStatus, &items, &o.Status); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		o.CustomerName = name.String
		o.CustomerPhone = phone.String
		if len(items) > 0 {
			if err := json.Unmarshal(items, &o.Items); err != nil {
				// A broken items payload should not wedge the whole cycle:
				// the renderer rejects the order and it stays pending.
				p.logger.WithField("order_id", o.ID).WithError(err).Error("invalid items payload")
				o.Items = nil
			}
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending orders: %w", err)
	}
	return orders, nil
}

func (p *Postgres) MarkPrinted(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE orders SET status = $1
		WHERE id = $2 AND status = $3`, StatusPrinted, id, StatusPendingPrint)
	if err != nil {
		return fmt.Errorf("mark order %d printed: %w", id, err)
	}
	// Zero rows means the transition already happened; that is a success.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		p.logger.WithField("order_id", id).Debug("order already printed")
	}
	return nil
}
