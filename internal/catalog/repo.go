package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/decoder-44/vehicle-service-super-app/internal/pagination"
)

// ErrNotFound covers both a missing part and a part the caller does not own;
// guarded updates deliberately do not distinguish the two.
var ErrNotFound = errors.New("part not found")

type Repo struct{ DB *pgxpool.Pool }

const partColumns = `id, merchant_id, name, description, vehicle_type, category, brand, model,
	price, stock_quantity, sku, images, specifications, is_active, created_at, updated_at`

func scanPart(row pgx.Row) (Part, error) {
	var p Part
	err := row.Scan(&p.ID, &p.MerchantID, &p.Name, &p.Description, &p.VehicleType, &p.Category,
		&p.Brand, &p.Model, &p.Price, &p.StockQuantity, &p.SKU, &p.Images, &p.Specifications,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repo) Create(ctx context.Context, merchantID string, p Part) (Part, error) {
	p.ID = uuid.NewString()
	p.MerchantID = merchantID
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Specifications == nil {
		p.Specifications = []byte(`{}`)
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO vehicle_parts (
			id, merchant_id, name, description, vehicle_type, category, brand, model,
			price, stock_quantity, sku, images, specifications, is_active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,true)
		RETURNING `+partColumns,
		p.ID, p.MerchantID, p.Name, p.Description, p.VehicleType, p.Category, p.Brand, p.Model,
		p.Price, p.StockQuantity, p.SKU, p.Images, p.Specifications)
	created, err := scanPart(row)
	if err != nil {
		return Part{}, fmt.Errorf("insert part: %w", err)
	}
	return created, nil
}

func (r *Repo) GetByID(ctx context.Context, partID string) (Part, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+partColumns+` FROM vehicle_parts WHERE id=$1 AND is_active=true`, partID)
	p, err := scanPart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Part{}, ErrNotFound
	}
	if err != nil {
		return Part{}, fmt.Errorf("get part: %w", err)
	}
	return p, nil
}

func (r *Repo) List(ctx context.Context, f Filters, page pagination.Page) ([]Part, pagination.Meta, error) {
	page = pagination.Normalize(page)

	where := ` WHERE is_active=true`
	args := []any{}
	n := 1
	add := func(cond string, v any) {
		where += fmt.Sprintf(" AND "+cond, n)
		args = append(args, v)
		n++
	}
	if f.VehicleType != "" {
		add("vehicle_type = $%d", f.VehicleType)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.MerchantID != "" {
		add("merchant_id = $%d", f.MerchantID)
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", n, n)
		args = append(args, "%"+f.Search+"%")
		n++
	}
	if !f.MinPrice.IsZero() {
		add("price >= $%d", f.MinPrice)
	}
	if !f.MaxPrice.IsZero() {
		add("price <= $%d", f.MaxPrice)
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM vehicle_parts`+where, args...).Scan(&total); err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("count parts: %w", err)
	}

	query := `SELECT ` + partColumns + ` FROM vehicle_parts` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n, n+1)
	args = append(args, page.Limit, page.Offset())

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	var out []Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, pagination.Meta{}, fmt.Errorf("scan part: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}
	return out, pagination.NewMeta(page, total), nil
}

// Update applies a partial edit, guarded by ownership in the WHERE clause.
func (r *Repo) Update(ctx context.Context, partID, merchantID string, u PartUpdate) (Part, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE vehicle_parts SET
			name = COALESCE($1, name),
			description = COALESCE($2, description),
			price = COALESCE($3, price),
			stock_quantity = COALESCE($4, stock_quantity),
			images = COALESCE($5, images),
			specifications = COALESCE($6, specifications),
			is_active = COALESCE($7, is_active),
			updated_at = NOW()
		WHERE id = $8 AND merchant_id = $9
		RETURNING `+partColumns,
		u.Name, u.Description, u.Price, u.StockQuantity, u.Images, u.Specifications,
		u.IsActive, partID, merchantID)
	p, err := scanPart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Part{}, ErrNotFound
	}
	if err != nil {
		return Part{}, fmt.Errorf("update part: %w", err)
	}
	return p, nil
}

// Deactivate is a soft delete; order history keeps referencing the row.
func (r *Repo) Deactivate(ctx context.Context, partID, merchantID string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE vehicle_parts SET is_active=false, updated_at=NOW()
		WHERE id=$1 AND merchant_id=$2`, partID, merchantID)
	if err != nil {
		return fmt.Errorf("deactivate part: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
