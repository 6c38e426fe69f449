package rsa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/decoder-44/vehicle-service-super-app/internal/booking"
	"github.com/decoder-44/vehicle-service-super-app/internal/pagination"
	"github.com/decoder-44/vehicle-service-super-app/internal/refnum"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "rsa").Logger()

var (
	// ErrNoActiveSubscription rejects a callout from a user whose plan has
	// lapsed, before anything is written.
	ErrNoActiveSubscription = errors.New("no active roadside subscription")

	ErrNotFound = errors.New("roadside request not found")

	ErrAlreadyAssigned = errors.New("roadside request already assigned")

	ErrInvalidTransition = errors.New("invalid roadside request transition")
)

type Repo struct{ DB *pgxpool.Pool }

const subscriptionColumns = `id, user_id, plan_name, plan_price, benefits, start_date, end_date,
	is_active, created_at`

func scanSubscription(row pgx.Row) (Subscription, error) {
	var s Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.PlanName, &s.PlanPrice, &s.Benefits,
		&s.StartDate, &s.EndDate, &s.IsActive, &s.CreatedAt)
	return s, err
}

func (r *Repo) CreateSubscription(ctx context.Context, userID string, s Subscription, durationMonths int) (Subscription, error) {
	if durationMonths < 1 {
		durationMonths = 1
	}
	if s.Benefits == nil {
		s.Benefits = []string{}
	}
	start := time.Now()
	end := start.AddDate(0, durationMonths, 0)
	row := r.DB.QueryRow(ctx, `
		INSERT INTO rsa_subscriptions (id, user_id, plan_name, plan_price, benefits, start_date, end_date, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,true)
		RETURNING `+subscriptionColumns,
		uuid.NewString(), userID, s.PlanName, s.PlanPrice, s.Benefits, start, end)
	created, err := scanSubscription(row)
	if err != nil {
		return Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}
	logger.Info().Str("subscription_id", created.ID).Str("user_id", userID).Msg("rsa subscription created")
	return created, nil
}

func (r *Repo) ListSubscriptions(ctx context.Context, userID string) ([]Subscription, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+subscriptionColumns+` FROM rsa_subscriptions
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ActiveSubscription returns the user's current plan, or
// ErrNoActiveSubscription.
func (r *Repo) ActiveSubscription(ctx context.Context, userID string) (Subscription, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+subscriptionColumns+` FROM rsa_subscriptions
		WHERE user_id = $1 AND is_active = true AND end_date >= CURRENT_DATE
		ORDER BY end_date DESC
		LIMIT 1`, userID)
	s, err := scanSubscription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Subscription{}, ErrNoActiveSubscription
	}
	if err != nil {
		return Subscription{}, fmt.Errorf("active subscription: %w", err)
	}
	return s, nil
}

const requestColumns = `id, request_number, user_id, subscription_id, service_partner_id,
	emergency_type, location_lat, location_lng, location_address, vehicle_details,
	request_status, resolution_notes, partner_assigned_at, service_started_at,
	service_completed_at, created_at, updated_at`

func scanRequest(row pgx.Row) (Request, error) {
	var q Request
	var partner, address, notes *string
	var lat, lng *float64
	err := row.Scan(&q.ID, &q.RequestNumber, &q.UserID, &q.SubscriptionID, &partner,
		&q.EmergencyType, &lat, &lng, &address, &q.VehicleDetails, &q.Status, &notes,
		&q.AssignedAt, &q.StartedAt, &q.CompletedAt, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return Request{}, err
	}
	if partner != nil {
		q.ServicePartnerID = *partner
	}
	if address != nil {
		q.LocationAddress = *address
	}
	if notes != nil {
		q.ResolutionNotes = *notes
	}
	if lat != nil {
		q.LocationLat = *lat
	}
	if lng != nil {
		q.LocationLng = *lng
	}
	return q, nil
}

// CreateRequest opens a callout against the user's active subscription.
func (r *Repo) CreateRequest(ctx context.Context, userID string, req Request) (Request, error) {
	sub, err := r.ActiveSubscription(ctx, userID)
	if err != nil {
		return Request{}, err
	}

	row := r.DB.QueryRow(ctx, `
		INSERT INTO rsa_requests (
			id, request_number, user_id, subscription_id, emergency_type,
			location_lat, location_lng, location_address, vehicle_details, request_status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'pending')
		RETURNING `+requestColumns,
		uuid.NewString(), refnum.New("RSA"), userID, sub.ID, req.EmergencyType,
		req.LocationLat, req.LocationLng, req.LocationAddress, req.VehicleDetails)
	created, err := scanRequest(row)
	if err != nil {
		return Request{}, fmt.Errorf("insert rsa request: %w", err)
	}
	logger.Info().Str("request_id", created.ID).Str("user_id", userID).Msg("rsa request created")
	return created, nil
}

func (r *Repo) GetRequest(ctx context.Context, requestID, userID string) (Request, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+requestColumns+` FROM rsa_requests
		WHERE id = $1 AND (user_id = $2 OR service_partner_id = $2)`, requestID, userID)
	q, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, fmt.Errorf("get rsa request: %w", err)
	}
	return q, nil
}

func (r *Repo) ListForUser(ctx context.Context, userID string, page pagination.Page) ([]Request, pagination.Meta, error) {
	page = pagination.Normalize(page)

	var total int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM rsa_requests WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("count rsa requests: %w", err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+requestColumns+` FROM rsa_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list rsa requests: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		q, err := scanRequest(rows)
		if err != nil {
			return nil, pagination.Meta{}, fmt.Errorf("scan rsa request: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}
	return out, pagination.NewMeta(page, total), nil
}

// Assign attaches a service partner to a pending request; the status
// predicate arbitrates races.
func (r *Repo) Assign(ctx context.Context, requestID, partnerID string) (Request, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE rsa_requests SET
			service_partner_id = $1,
			request_status = 'assigned',
			partner_assigned_at = NOW(),
			updated_at = NOW()
		WHERE id = $2 AND request_status = 'pending'
		RETURNING `+requestColumns,
		partnerID, requestID)
	q, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var status booking.Status
		probe := r.DB.QueryRow(ctx,
			`SELECT request_status FROM rsa_requests WHERE id=$1`, requestID).Scan(&status)
		if errors.Is(probe, pgx.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, ErrAlreadyAssigned
	}
	if err != nil {
		return Request{}, fmt.Errorf("assign partner: %w", err)
	}
	return q, nil
}

// UpdateStatus moves a request along the shared machine; started_at is
// stamped once, completion stamps the completion time.
func (r *Repo) UpdateStatus(ctx context.Context, requestID, userID string, u StatusUpdate) (Request, error) {
	if !u.Status.Valid() || u.Status == booking.StatusAssigned || u.Status == booking.StatusPending {
		return Request{}, ErrInvalidTransition
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Request{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current booking.Status
	err = tx.QueryRow(ctx, `
		SELECT request_status FROM rsa_requests
		WHERE id = $1 AND (user_id = $2 OR service_partner_id = $2)
		FOR UPDATE`, requestID, userID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	if err != nil {
		return Request{}, fmt.Errorf("lock rsa request: %w", err)
	}
	if !booking.CanTransition(current, u.Status) {
		return Request{}, ErrInvalidTransition
	}

	var notes any
	if u.ResolutionNotes != "" {
		notes = u.ResolutionNotes
	}
	row := tx.QueryRow(ctx, `
		UPDATE rsa_requests SET
			request_status = $1,
			resolution_notes = COALESCE($2, resolution_notes),
			service_started_at = CASE WHEN $1 = 'in_progress'
				THEN COALESCE(service_started_at, NOW()) ELSE service_started_at END,
			service_completed_at = CASE WHEN $1 = 'completed'
				THEN NOW() ELSE service_completed_at END,
			updated_at = NOW()
		WHERE id = $3
		RETURNING `+requestColumns,
		u.Status, notes, requestID)
	q, err := scanRequest(row)
	if err != nil {
		return Request{}, fmt.Errorf("update rsa status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Request{}, fmt.Errorf("commit rsa status: %w", err)
	}
	return q, nil
}
