// Package repository persists accepted orders. The orders table is
// append-only: this bot never updates or deletes rows.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ikorka/orderbot/internal/logger"
	"log/slog"
)

// Order is a single accepted order as stored in Postgres.
type Order struct {
	ID                 int64  `db:"id"`
	TgUserID           int64  `db:"tg_user_id"`
	FullName           string `db:"full_name"`
	Username           string `db:"username"`
	ProfileLink        string `db:"profile_link"`
	PhoneContact       string `db:"phone_contact"`
	PhoneManual        string `db:"phone_manual"`
	FioReceiver        string `db:"fio_receiver"`
	Address            string `db:"address"`
	Quantity           string `db:"quantity"`
	ExtraInfo          string `db:"extra_info"`
	DatetimeMoscow     string `db:"datetime_moscow"`
	DatetimeKhabarovsk string `db:"datetime_khabarovsk"`
}

// Orders provides access to the orders table.
type Orders struct {
	db *sqlx.DB
}

// NewOrders constructs the orders repository.
func NewOrders(db *sqlx.DB) *Orders {
	return &Orders{db: db}
}

const insertOrderQuery = `
INSERT INTO orders (
    tg_user_id, full_name, username, profile_link,
    phone_contact, phone_manual, fio_receiver, address,
    quantity, extra_info, datetime_moscow, datetime_khabarovsk
) VALUES (
    :tg_user_id, :full_name, :username, :profile_link,
    :phone_contact, :phone_manual, :fio_receiver, :address,
    :quantity, :extra_info, :datetime_moscow, :datetime_khabarovsk
) RETURNING id`

// Insert stores a new order and returns the assigned identifier.
func (r *Orders) Insert(ctx context.Context, o Order) (int64, error) {
	start := time.Now()
	rows, err := r.db.NamedQueryContext(ctx, insertOrderQuery, o)
	if err != nil {
		logger.DB.Error("order insert failed",
			slog.String("event", "order.insert"),
			slog.Int64("user_id", o.TgUserID),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return 0, fmt.Errorf("insert order: %w", err)
	}
	defer rows.Close()

	var id int64
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, fmt.Errorf("insert order: %w", err)
		}
		return 0, fmt.Errorf("insert order: no id returned")
	}
	if err := rows.Scan(&id); err != nil {
		return 0, fmt.Errorf("insert order: scan id: %w", err)
	}

	logger.DB.Info("order inserted",
		slog.String("event", "order.insert"),
		slog.Int64("order_id", id),
		slog.Int64("user_id", o.TgUserID),
		slog.Duration("duration", logger.Took(start)),
	)
	return id, nil
}
