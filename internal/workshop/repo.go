package workshop

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/decoder-44/vehicle-service-super-app/internal/booking"
	"github.com/decoder-44/vehicle-service-super-app/internal/pagination"
	"github.com/decoder-44/vehicle-service-super-app/internal/refnum"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "workshop").Logger()

type Repo struct{ DB *pgxpool.Pool }

const profileColumns = `id, user_id, service_types, vehicle_expertise, service_area_city,
	service_radius_km, latitude, longitude, hourly_rate, rating, total_jobs, is_available,
	created_at, updated_at`

func scanProfile(row pgx.Row) (MechanicProfile, error) {
	var p MechanicProfile
	var city *string
	var radius *int
	var lat, lng *float64
	err := row.Scan(&p.ID, &p.UserID, &p.ServiceTypes, &p.VehicleExpertise, &city,
		&radius, &lat, &lng, &p.HourlyRate, &p.Rating, &p.TotalJobs, &p.IsAvailable,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return MechanicProfile{}, err
	}
	if city != nil {
		p.ServiceAreaCity = *city
	}
	if radius != nil {
		p.ServiceRadiusKm = *radius
	}
	if lat != nil {
		p.Latitude = *lat
	}
	if lng != nil {
		p.Longitude = *lng
	}
	return p, nil
}

// CreateProfile registers a mechanic and promotes the user's role, both in
// one transaction.
func (r *Repo) CreateProfile(ctx context.Context, userID string, p MechanicProfile) (MechanicProfile, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return MechanicProfile{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if p.ServiceTypes == nil {
		p.ServiceTypes = []string{}
	}
	if p.VehicleExpertise == nil {
		p.VehicleExpertise = []string{}
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO mechanic_profiles (
			id, user_id, service_types, vehicle_expertise, service_area_city,
			service_radius_km, latitude, longitude, hourly_rate, is_available
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,true)
		RETURNING `+profileColumns,
		uuid.NewString(), userID, p.ServiceTypes, p.VehicleExpertise, p.ServiceAreaCity,
		p.ServiceRadiusKm, p.Latitude, p.Longitude, p.HourlyRate)
	created, err := scanProfile(row)
	if err != nil {
		return MechanicProfile{}, fmt.Errorf("insert mechanic profile: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET role='mechanic', updated_at=NOW() WHERE id=$1`, userID); err != nil {
		return MechanicProfile{}, fmt.Errorf("promote user role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return MechanicProfile{}, fmt.Errorf("commit profile: %w", err)
	}
	logger.Info().Str("user_id", userID).Msg("mechanic profile created")
	return created, nil
}

func (r *Repo) GetProfile(ctx context.Context, userID string) (MechanicProfile, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM mechanic_profiles WHERE user_id=$1`, userID)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return MechanicProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return MechanicProfile{}, fmt.Errorf("get mechanic profile: %w", err)
	}
	return p, nil
}

func (r *Repo) UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (MechanicProfile, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE mechanic_profiles SET
			service_types = COALESCE($1, service_types),
			vehicle_expertise = COALESCE($2, vehicle_expertise),
			service_area_city = COALESCE($3, service_area_city),
			service_radius_km = COALESCE($4, service_radius_km),
			latitude = COALESCE($5, latitude),
			longitude = COALESCE($6, longitude),
			hourly_rate = COALESCE($7, hourly_rate),
			is_available = COALESCE($8, is_available),
			updated_at = NOW()
		WHERE user_id = $9
		RETURNING `+profileColumns,
		u.ServiceTypes, u.VehicleExpertise, u.ServiceAreaCity, u.ServiceRadiusKm,
		u.Latitude, u.Longitude, u.HourlyRate, u.IsAvailable, userID)
	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return MechanicProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return MechanicProfile{}, fmt.Errorf("update mechanic profile: %w", err)
	}
	return p, nil
}

// FindNearby runs a Haversine distance search over available, KYC-approved
// mechanics.
func (r *Repo) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]NearbyMechanic, error) {
	if radiusKm <= 0 {
		radiusKm = 10
	}
	rows, err := r.DB.Query(ctx, `
		SELECT p.id, p.user_id, p.service_types, p.vehicle_expertise, p.service_area_city,
			p.service_radius_km, p.latitude, p.longitude, p.hourly_rate, p.rating,
			p.total_jobs, p.is_available, p.created_at, p.updated_at,
			u.full_name, u.phone,
			(6371 * acos(cos(radians($1)) * cos(radians(p.latitude)) *
				cos(radians(p.longitude) - radians($2)) +
				sin(radians($1)) * sin(radians(p.latitude)))) AS distance_km
		FROM mechanic_profiles p
		JOIN users u ON p.user_id = u.id
		WHERE p.is_available = true
			AND u.kyc_status = 'approved'
			AND p.latitude IS NOT NULL AND p.longitude IS NOT NULL
			AND (6371 * acos(cos(radians($1)) * cos(radians(p.latitude)) *
				cos(radians(p.longitude) - radians($2)) +
				sin(radians($1)) * sin(radians(p.latitude)))) <= $3
		ORDER BY distance_km ASC
		LIMIT 20`, lat, lng, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("find nearby mechanics: %w", err)
	}
	defer rows.Close()

	var out []NearbyMechanic
	for rows.Next() {
		var m NearbyMechanic
		var city *string
		var radius *int
		var plat, plng *float64
		var phone *string
		if err := rows.Scan(&m.ID, &m.UserID, &m.ServiceTypes, &m.VehicleExpertise, &city,
			&radius, &plat, &plng, &m.HourlyRate, &m.Rating, &m.TotalJobs, &m.IsAvailable,
			&m.CreatedAt, &m.UpdatedAt, &m.FullName, &phone, &m.DistanceKm); err != nil {
			return nil, fmt.Errorf("scan nearby mechanic: %w", err)
		}
		if city != nil {
			m.ServiceAreaCity = *city
		}
		if radius != nil {
			m.ServiceRadiusKm = *radius
		}
		if plat != nil {
			m.Latitude = *plat
		}
		if plng != nil {
			m.Longitude = *plng
		}
		if phone != nil {
			m.Phone = *phone
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const bookingColumns = `id, booking_number, customer_id, mechanic_id, service_type, vehicle_type,
	vehicle_details, service_location_lat, service_location_lng, service_location_address,
	preferred_datetime, service_description, booking_status, estimated_price, final_price,
	cancellation_reason, customer_rating, customer_review, mechanic_assigned_at,
	service_started_at, service_completed_at, created_at, updated_at`

func scanBooking(row pgx.Row) (ServiceBooking, error) {
	var b ServiceBooking
	var mechanicID, vehicleType, address, description, reason, review *string
	var lat, lng *float64
	err := row.Scan(&b.ID, &b.BookingNumber, &b.CustomerID, &mechanicID, &b.ServiceType,
		&vehicleType, &b.VehicleDetails, &lat, &lng, &address, &b.PreferredDatetime,
		&description, &b.Status, &b.EstimatedPrice, &b.FinalPrice, &reason,
		&b.CustomerRating, &review, &b.AssignedAt, &b.StartedAt, &b.CompletedAt,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return ServiceBooking{}, err
	}
	if mechanicID != nil {
		b.MechanicID = *mechanicID
	}
	if vehicleType != nil {
		b.VehicleType = *vehicleType
	}
	if address != nil {
		b.LocationAddress = *address
	}
	if description != nil {
		b.ServiceDescription = *description
	}
	if reason != nil {
		b.CancellationReason = *reason
	}
	if review != nil {
		b.CustomerReview = *review
	}
	if lat != nil {
		b.LocationLat = *lat
	}
	if lng != nil {
		b.LocationLng = *lng
	}
	return b, nil
}

func (r *Repo) CreateBooking(ctx context.Context, customerID string, b ServiceBooking) (ServiceBooking, error) {
	row := r.DB.QueryRow(ctx, `
		INSERT INTO service_bookings (
			id, booking_number, customer_id, service_type, vehicle_type, vehicle_details,
			service_location_lat, service_location_lng, service_location_address,
			preferred_datetime, service_description, booking_status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,'pending')
		RETURNING `+bookingColumns,
		uuid.NewString(), refnum.New("SRV"), customerID, b.ServiceType, b.VehicleType,
		b.VehicleDetails, b.LocationLat, b.LocationLng, b.LocationAddress,
		b.PreferredDatetime, b.ServiceDescription)
	created, err := scanBooking(row)
	if err != nil {
		return ServiceBooking{}, fmt.Errorf("insert service booking: %w", err)
	}
	logger.Info().Str("booking_id", created.ID).Str("customer_id", customerID).Msg("service booking created")
	return created, nil
}

// Assign attaches a mechanic to a pending booking. The WHERE clause is the
// race arbiter: of two mechanics accepting concurrently, exactly one update
// matches; the other finds the row no longer pending.
func (r *Repo) Assign(ctx context.Context, bookingID, mechanicID string) (ServiceBooking, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE service_bookings SET
			mechanic_id = $1,
			booking_status = 'assigned',
			mechanic_assigned_at = NOW(),
			updated_at = NOW()
		WHERE id = $2 AND booking_status = 'pending'
		RETURNING `+bookingColumns,
		mechanicID, bookingID)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var status booking.Status
		probe := r.DB.QueryRow(ctx,
			`SELECT booking_status FROM service_bookings WHERE id=$1`, bookingID).Scan(&status)
		if errors.Is(probe, pgx.ErrNoRows) {
			return ServiceBooking{}, ErrNotFound
		}
		return ServiceBooking{}, ErrAlreadyAssigned
	}
	if err != nil {
		return ServiceBooking{}, fmt.Errorf("assign mechanic: %w", err)
	}
	return b, nil
}

func (r *Repo) GetBooking(ctx context.Context, bookingID, userID string) (ServiceBooking, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+bookingColumns+` FROM service_bookings
		WHERE id = $1 AND (customer_id = $2 OR mechanic_id = $2)`, bookingID, userID)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ServiceBooking{}, ErrNotFound
	}
	if err != nil {
		return ServiceBooking{}, fmt.Errorf("get service booking: %w", err)
	}
	return b, nil
}

func (r *Repo) ListForUser(ctx context.Context, userID, role string, page pagination.Page) ([]ServiceBooking, pagination.Meta, error) {
	page = pagination.Normalize(page)
	field := "customer_id"
	if role == "mechanic" {
		field = "mechanic_id"
	}

	var total int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM service_bookings WHERE `+field+` = $1`, userID).Scan(&total); err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("count bookings: %w", err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+bookingColumns+` FROM service_bookings
		WHERE `+field+` = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []ServiceBooking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, pagination.Meta{}, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}
	return out, pagination.NewMeta(page, total), nil
}

// UpdateStatus moves a booking along the shared machine. Only the booking's
// customer or attached mechanic matches the guard; the row is locked so the
// transition check and the write agree. Completion bumps the mechanic's job
// counter in the same transaction. started_at is set once and survives a
// retried in_progress transition.
func (r *Repo) UpdateStatus(ctx context.Context, bookingID, userID string, u StatusUpdate) (ServiceBooking, error) {
	if !u.Status.Valid() || u.Status == booking.StatusAssigned || u.Status == booking.StatusPending {
		return ServiceBooking{}, ErrInvalidTransition
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ServiceBooking{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current booking.Status
	err = tx.QueryRow(ctx, `
		SELECT booking_status FROM service_bookings
		WHERE id = $1 AND (customer_id = $2 OR mechanic_id = $2)
		FOR UPDATE`, bookingID, userID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ServiceBooking{}, ErrNotFound
	}
	if err != nil {
		return ServiceBooking{}, fmt.Errorf("lock booking: %w", err)
	}
	if !booking.CanTransition(current, u.Status) {
		return ServiceBooking{}, ErrInvalidTransition
	}

	var reason any
	if u.CancellationReason != "" {
		reason = u.CancellationReason
	}
	row := tx.QueryRow(ctx, `
		UPDATE service_bookings SET
			booking_status = $1,
			estimated_price = COALESCE($2, estimated_price),
			final_price = COALESCE($3, final_price),
			cancellation_reason = COALESCE($4, cancellation_reason),
			service_started_at = CASE WHEN $1 = 'in_progress'
				THEN COALESCE(service_started_at, NOW()) ELSE service_started_at END,
			service_completed_at = CASE WHEN $1 = 'completed'
				THEN NOW() ELSE service_completed_at END,
			updated_at = NOW()
		WHERE id = $5
		RETURNING `+bookingColumns,
		u.Status, u.EstimatedPrice, u.FinalPrice, reason, bookingID)
	b, err := scanBooking(row)
	if err != nil {
		return ServiceBooking{}, fmt.Errorf("update booking status: %w", err)
	}

	if u.Status == booking.StatusCompleted && b.MechanicID != "" {
		if _, err := tx.Exec(ctx, `
			UPDATE mechanic_profiles SET total_jobs = total_jobs + 1, updated_at = NOW()
			WHERE user_id = $1`, b.MechanicID); err != nil {
			return ServiceBooking{}, fmt.Errorf("bump mechanic jobs: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ServiceBooking{}, fmt.Errorf("commit status update: %w", err)
	}
	return b, nil
}

// AddReview attaches a 1-5 rating to the caller's own completed booking and
// recomputes the mechanic's aggregate as a full mean over all rated,
// completed bookings. Recomputed in full each time; cheap at this scale.
func (r *Repo) AddReview(ctx context.Context, bookingID, customerID string, rating int, review string) (ServiceBooking, error) {
	if rating < 1 || rating > 5 {
		return ServiceBooking{}, ErrInvalidRating
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ServiceBooking{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE service_bookings SET
			customer_rating = $1,
			customer_review = $2,
			updated_at = NOW()
		WHERE id = $3 AND customer_id = $4 AND booking_status = 'completed'
		RETURNING `+bookingColumns,
		rating, review, bookingID, customerID)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return ServiceBooking{}, ErrNotCompletedOrUnauthorized
	}
	if err != nil {
		return ServiceBooking{}, fmt.Errorf("attach review: %w", err)
	}

	if b.MechanicID != "" {
		if _, err := tx.Exec(ctx, `
			UPDATE mechanic_profiles SET
				rating = (
					SELECT ROUND(AVG(customer_rating)::numeric, 2)
					FROM service_bookings
					WHERE mechanic_id = $1
						AND booking_status = 'completed'
						AND customer_rating IS NOT NULL
				),
				updated_at = NOW()
			WHERE user_id = $1`, b.MechanicID); err != nil {
			return ServiceBooking{}, fmt.Errorf("recompute mechanic rating: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ServiceBooking{}, fmt.Errorf("commit review: %w", err)
	}
	logger.Info().Str("booking_id", bookingID).Int("rating", rating).Msg("review added")
	return b, nil
}
