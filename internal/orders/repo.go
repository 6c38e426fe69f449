package orders

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/decoder-44/vehicle-service-super-app/internal/pagination"
	"github.com/decoder-44/vehicle-service-super-app/internal/refnum"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "orders").Logger()

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, order_number, customer_id, merchant_id, delivery_address_id,
	subtotal, platform_commission, tax_amount, delivery_charge, total_amount,
	order_status, tracking_number, cancellation_reason, delivered_at, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var addr, tracking, reason *string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.MerchantID, &addr,
		&o.Subtotal, &o.PlatformCommission, &o.TaxAmount, &o.DeliveryCharge, &o.TotalAmount,
		&o.Status, &tracking, &reason, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if addr != nil {
		o.DeliveryAddressID = *addr
	}
	if tracking != nil {
		o.TrackingNumber = *tracking
	}
	if reason != nil {
		o.CancellationReason = *reason
	}
	return o, nil
}

// CreateOrders runs the whole checkout as one transaction: snapshot prices,
// validate stock, fan out one order per merchant, write line items and
// decrement stock. Any failure rolls back every merchant's order.
func (r *Repo) CreateOrders(ctx context.Context, customerID string, req CreateRequest) ([]Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %s", ErrInvalidQuantity, line.PartID)
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	type snapshot struct {
		merchantID string
		name       string
		price      decimal.Decimal
		stock      int
	}

	ids := make([]string, 0, len(req.Items))
	for _, line := range req.Items {
		ids = append(ids, line.PartID)
	}
	rows, err := tx.Query(ctx, `
		SELECT id, merchant_id, name, price, stock_quantity
		FROM vehicle_parts
		WHERE id = ANY($1::uuid[]) AND is_active = true`, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch parts: %w", err)
	}
	parts := make(map[string]snapshot, len(ids))
	for rows.Next() {
		var id string
		var s snapshot
		if err := rows.Scan(&id, &s.merchantID, &s.name, &s.price, &s.stock); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan part: %w", err)
		}
		parts[id] = s
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Validate every line before touching anything (all-or-nothing).
	priced := make([]PricedLine, 0, len(req.Items))
	for _, line := range req.Items {
		s, ok := parts[line.PartID]
		if !ok {
			return nil, &ItemNotFoundError{PartID: line.PartID}
		}
		if s.stock < line.Quantity {
			return nil, &InsufficientStockError{
				PartID: line.PartID, Name: s.name,
				Requested: line.Quantity, Available: s.stock,
			}
		}
		priced = append(priced, PricedLine{
			PartID:     line.PartID,
			MerchantID: s.merchantID,
			Name:       s.name,
			Quantity:   line.Quantity,
			UnitPrice:  s.price,
		})
	}

	quotes := BuildQuotes(priced)
	created := make([]Order, 0, len(quotes))

	for _, q := range quotes {
		orderID := uuid.NewString()
		var deliveryAddr any
		if req.DeliveryAddressID != "" {
			deliveryAddr = req.DeliveryAddressID
		}
		row := tx.QueryRow(ctx, `
			INSERT INTO part_orders (
				id, order_number, customer_id, merchant_id, delivery_address_id,
				subtotal, platform_commission, tax_amount, delivery_charge,
				total_amount, order_status
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'pending')
			RETURNING `+orderColumns,
			orderID, refnum.New("ORD"), customerID, q.MerchantID, deliveryAddr,
			q.Subtotal, q.PlatformCommission, q.TaxAmount, q.DeliveryCharge, q.TotalAmount)
		o, err := scanOrder(row)
		if err != nil {
			return nil, fmt.Errorf("insert order: %w", err)
		}

		for _, l := range q.Lines {
			item := LineItem{
				ID:        uuid.NewString(),
				OrderID:   orderID,
				PartID:    l.PartID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				LineTotal: l.Total(),
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO part_order_items (id, order_id, part_id, quantity, unit_price, total_price)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				item.ID, item.OrderID, item.PartID, item.Quantity, item.UnitPrice, item.LineTotal); err != nil {
				return nil, fmt.Errorf("insert line item: %w", err)
			}

			// The conditional decrement is the authority on stock: a
			// concurrent checkout that got here first makes this affect
			// zero rows, and the whole checkout rolls back.
			ct, err := tx.Exec(ctx, `
				UPDATE vehicle_parts
				SET stock_quantity = stock_quantity - $1, updated_at = NOW()
				WHERE id = $2 AND stock_quantity >= $1`,
				l.Quantity, l.PartID)
			if err != nil {
				return nil, fmt.Errorf("decrement stock: %w", err)
			}
			if ct.RowsAffected() == 0 {
				var available int
				_ = tx.QueryRow(ctx,
					`SELECT stock_quantity FROM vehicle_parts WHERE id=$1`, l.PartID).Scan(&available)
				return nil, &InsufficientStockError{
					PartID: l.PartID, Name: l.Name,
					Requested: l.Quantity, Available: available,
				}
			}

			o.Items = append(o.Items, item)
		}
		created = append(created, o)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit checkout: %w", err)
	}

	logger.Info().Str("customer_id", customerID).Int("orders", len(created)).Msg("checkout committed")
	return created, nil
}

// GetByID returns the order with its items when the caller is its customer
// or merchant; anyone else sees the same ErrNotFound as a bad id.
func (r *Repo) GetByID(ctx context.Context, orderID, userID string) (Order, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM part_orders
		WHERE id = $1 AND (customer_id = $2 OR merchant_id = $2)`, orderID, userID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}

	items, err := r.itemsFor(ctx, []string{o.ID})
	if err != nil {
		return Order{}, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// ListForUser pages a user's orders, as customer or as merchant.
func (r *Repo) ListForUser(ctx context.Context, userID, role string, page pagination.Page) ([]Order, pagination.Meta, error) {
	page = pagination.Normalize(page)
	field := "customer_id"
	if role == "merchant" {
		field = "merchant_id"
	}

	var total int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM part_orders WHERE `+field+` = $1`, userID).Scan(&total); err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+` FROM part_orders
		WHERE `+field+` = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, pagination.Meta{}, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}

	if len(ids) > 0 {
		items, err := r.itemsFor(ctx, ids)
		if err != nil {
			return nil, pagination.Meta{}, err
		}
		for i := range out {
			out[i].Items = items[out[i].ID]
		}
	}
	return out, pagination.NewMeta(page, total), nil
}

func (r *Repo) itemsFor(ctx context.Context, orderIDs []string) (map[string][]LineItem, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, part_id, quantity, unit_price, total_price
		FROM part_order_items WHERE order_id = ANY($1::uuid[])`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch line items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]LineItem)
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.PartID, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order along its lifecycle. The row is locked so the
// transition check and the write see the same state; only the order's
// merchant matches the WHERE clause.
func (r *Repo) UpdateStatus(ctx context.Context, orderID, merchantID string, u StatusUpdate) (Order, error) {
	if !u.Status.Valid() {
		return Order{}, ErrInvalidTransition
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current Status
	err = tx.QueryRow(ctx, `
		SELECT order_status FROM part_orders
		WHERE id = $1 AND merchant_id = $2
		FOR UPDATE`, orderID, merchantID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("lock order: %w", err)
	}
	if !CanTransition(current, u.Status) {
		return Order{}, ErrInvalidTransition
	}

	var tracking, reason any
	if u.TrackingNumber != "" {
		tracking = u.TrackingNumber
	}
	if u.CancellationReason != "" {
		reason = u.CancellationReason
	}
	row := tx.QueryRow(ctx, `
		UPDATE part_orders SET
			order_status = $1,
			tracking_number = COALESCE($2, tracking_number),
			cancellation_reason = COALESCE($3, cancellation_reason),
			delivered_at = CASE WHEN $1 = 'delivered' THEN NOW() ELSE delivered_at END,
			updated_at = NOW()
		WHERE id = $4
		RETURNING `+orderColumns,
		u.Status, tracking, reason, orderID)
	o, err := scanOrder(row)
	if err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit status update: %w", err)
	}
	return o, nil
}
