package rental

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

	"github.com/decoder-44/vehicle-service-super-app/internal/booking"
	"github.com/decoder-44/vehicle-service-super-app/internal/pagination"
	"github.com/decoder-44/vehicle-service-super-app/internal/refnum"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "rental").Logger()

type Repo struct{ DB *pgxpool.Pool }

const vehicleColumns = `id, host_id, vehicle_type, brand, model, year_of_manufacture,
	registration_number, vehicle_images, seating_capacity, fuel_type, transmission,
	price_per_day, is_insurance_eligible, current_location_city, total_bookings,
	is_available, created_at, updated_at`

func scanVehicle(row pgx.Row) (Vehicle, error) {
	var v Vehicle
	var vtype, brand, model, reg, fuel, trans, city *string
	var year, seats *int
	err := row.Scan(&v.ID, &v.HostID, &vtype, &brand, &model, &year, &reg, &v.VehicleImages,
		&seats, &fuel, &trans, &v.PricePerDay, &v.IsInsuranceEligible, &city,
		&v.TotalBookings, &v.IsAvailable, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return Vehicle{}, err
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&v.VehicleType, vtype)
	set(&v.Brand, brand)
	set(&v.Model, model)
	set(&v.RegistrationNumber, reg)
	set(&v.FuelType, fuel)
	set(&v.Transmission, trans)
	set(&v.LocationCity, city)
	if year != nil {
		v.YearOfManufacture = *year
	}
	if seats != nil {
		v.SeatingCapacity = *seats
	}
	return v, nil
}

// CreateVehicle lists a vehicle and promotes a plain customer to host, both
// in one transaction.
func (r *Repo) CreateVehicle(ctx context.Context, hostID string, v Vehicle) (Vehicle, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Vehicle{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if v.VehicleImages == nil {
		v.VehicleImages = []string{}
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO rental_vehicles (
			id, host_id, vehicle_type, brand, model, year_of_manufacture,
			registration_number, vehicle_images, seating_capacity, fuel_type,
			transmission, price_per_day, is_insurance_eligible, current_location_city,
			is_available
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,true)
		RETURNING `+vehicleColumns,
		uuid.NewString(), hostID, v.VehicleType, v.Brand, v.Model, v.YearOfManufacture,
		v.RegistrationNumber, v.VehicleImages, v.SeatingCapacity, v.FuelType,
		v.Transmission, v.PricePerDay, v.IsInsuranceEligible, v.LocationCity)
	created, err := scanVehicle(row)
	if err != nil {
		return Vehicle{}, fmt.Errorf("insert vehicle: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET role='host', updated_at=NOW() WHERE id=$1 AND role='customer'`, hostID); err != nil {
		return Vehicle{}, fmt.Errorf("promote host role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Vehicle{}, fmt.Errorf("commit vehicle: %w", err)
	}
	logger.Info().Str("vehicle_id", created.ID).Str("host_id", hostID).Msg("rental vehicle listed")
	return created, nil
}

func (r *Repo) GetVehicle(ctx context.Context, vehicleID string) (Vehicle, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+vehicleColumns+` FROM rental_vehicles WHERE id=$1 AND is_available=true`, vehicleID)
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vehicle{}, ErrVehicleNotFound
	}
	if err != nil {
		return Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

func (r *Repo) ListVehicles(ctx context.Context, f VehicleFilters, page pagination.Page) ([]Vehicle, pagination.Meta, error) {
	page = pagination.Normalize(page)

	where := ` WHERE is_available=true`
	args := []any{}
	n := 1
	if f.VehicleType != "" {
		where += fmt.Sprintf(" AND vehicle_type = $%d", n)
		args = append(args, f.VehicleType)
		n++
	}
	if f.City != "" {
		where += fmt.Sprintf(" AND current_location_city ILIKE $%d", n)
		args = append(args, "%"+f.City+"%")
		n++
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND (brand ILIKE $%d OR model ILIKE $%d)", n, n)
		args = append(args, "%"+f.Search+"%")
		n++
	}
	if !f.MinPrice.IsZero() {
		where += fmt.Sprintf(" AND price_per_day >= $%d", n)
		args = append(args, f.MinPrice)
		n++
	}
	if !f.MaxPrice.IsZero() {
		where += fmt.Sprintf(" AND price_per_day <= $%d", n)
		args = append(args, f.MaxPrice)
		n++
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM rental_vehicles`+where, args...).Scan(&total); err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("count vehicles: %w", err)
	}

	query := `SELECT ` + vehicleColumns + ` FROM rental_vehicles` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n, n+1)
	args = append(args, page.Limit, page.Offset())

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, pagination.Meta{}, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}
	return out, pagination.NewMeta(page, total), nil
}

func (r *Repo) UpdateVehicle(ctx context.Context, vehicleID, hostID string, u VehicleUpdate) (Vehicle, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE rental_vehicles SET
			price_per_day = COALESCE($1, price_per_day),
			is_available = COALESCE($2, is_available),
			vehicle_images = COALESCE($3, vehicle_images),
			current_location_city = COALESCE($4, current_location_city),
			updated_at = NOW()
		WHERE id = $5 AND host_id = $6
		RETURNING `+vehicleColumns,
		u.PricePerDay, u.IsAvailable, u.VehicleImages, u.LocationCity, vehicleID, hostID)
	v, err := scanVehicle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vehicle{}, ErrVehicleNotFound
	}
	if err != nil {
		return Vehicle{}, fmt.Errorf("update vehicle: %w", err)
	}
	return v, nil
}

const bookingColumns = `id, booking_number, customer_id, vehicle_id, host_id, start_date, end_date,
	total_days, price_per_day, subtotal, platform_commission, insurance_fee, total_amount,
	booking_status, pickup_location, dropoff_location, cancellation_reason,
	host_accepted_at, vehicle_picked_up_at, vehicle_returned_at, created_at, updated_at`

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	var pickup, dropoff, reason *string
	err := row.Scan(&b.ID, &b.BookingNumber, &b.CustomerID, &b.VehicleID, &b.HostID,
		&b.StartDate, &b.EndDate, &b.TotalDays, &b.PricePerDay, &b.Subtotal,
		&b.PlatformCommission, &b.InsuranceFee, &b.TotalAmount, &b.Status,
		&pickup, &dropoff, &reason, &b.AcceptedAt, &b.PickedUpAt, &b.ReturnedAt,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Booking{}, err
	}
	if pickup != nil {
		b.PickupLocation = *pickup
	}
	if dropoff != nil {
		b.DropoffLocation = *dropoff
	}
	if reason != nil {
		b.CancellationReason = *reason
	}
	return b, nil
}

// CreateBooking prices and persists a reservation in one transaction. The
// vehicle row decides eligibility and the per-day rate; the quote is stored
// immutably.
func (r *Repo) CreateBooking(ctx context.Context, customerID string, req BookingRequest) (Booking, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Booking{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var hostID string
	var pricePerDay decimal.Decimal
	var eligible bool
	err = tx.QueryRow(ctx, `
		SELECT host_id, price_per_day, is_insurance_eligible
		FROM rental_vehicles WHERE id = $1 AND is_available = true`,
		req.VehicleID).Scan(&hostID, &pricePerDay, &eligible)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrVehicleNotFound
	}
	if err != nil {
		return Booking{}, fmt.Errorf("fetch vehicle: %w", err)
	}

	quote, err := Price(pricePerDay, req.StartDate, req.EndDate, req.InsuranceRequired, eligible)
	if err != nil {
		return Booking{}, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO rental_bookings (
			id, booking_number, customer_id, vehicle_id, host_id, start_date, end_date,
			total_days, price_per_day, subtotal, platform_commission, insurance_fee,
			total_amount, booking_status, pickup_location
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,'pending',$14)
		RETURNING `+bookingColumns,
		uuid.NewString(), refnum.New("RNT"), customerID, req.VehicleID, hostID,
		req.StartDate, req.EndDate, quote.TotalDays, pricePerDay,
		quote.Subtotal, quote.PlatformCommission, quote.InsuranceFee, quote.TotalAmount,
		req.PickupLocation)
	b, err := scanBooking(row)
	if err != nil {
		return Booking{}, fmt.Errorf("insert rental booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Booking{}, fmt.Errorf("commit rental booking: %w", err)
	}
	logger.Info().Str("booking_id", b.ID).Str("customer_id", customerID).Msg("rental booking created")
	return b, nil
}

func (r *Repo) GetBooking(ctx context.Context, bookingID, userID string) (Booking, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT `+bookingColumns+` FROM rental_bookings
		WHERE id = $1 AND (customer_id = $2 OR host_id = $2)`, bookingID, userID)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	if err != nil {
		return Booking{}, fmt.Errorf("get rental booking: %w", err)
	}
	return b, nil
}

func (r *Repo) ListForUser(ctx context.Context, userID, role string, page pagination.Page) ([]Booking, pagination.Meta, error) {
	page = pagination.Normalize(page)
	field := "customer_id"
	if role == "host" {
		field = "host_id"
	}

	var total int
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM rental_bookings WHERE `+field+` = $1`, userID).Scan(&total); err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("count rental bookings: %w", err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+bookingColumns+` FROM rental_bookings
		WHERE `+field+` = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("list rental bookings: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, pagination.Meta{}, fmt.Errorf("scan rental booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, pagination.Meta{}, err
	}
	return out, pagination.NewMeta(page, total), nil
}

// Accept lets the host take a pending booking. The status predicate in the
// WHERE clause arbitrates concurrent accepts.
func (r *Repo) Accept(ctx context.Context, bookingID, hostID string) (Booking, error) {
	row := r.DB.QueryRow(ctx, `
		UPDATE rental_bookings SET
			booking_status = 'assigned',
			host_accepted_at = NOW(),
			updated_at = NOW()
		WHERE id = $1 AND host_id = $2 AND booking_status = 'pending'
		RETURNING `+bookingColumns,
		bookingID, hostID)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var status booking.Status
		probe := r.DB.QueryRow(ctx, `
			SELECT booking_status FROM rental_bookings
			WHERE id = $1 AND host_id = $2`, bookingID, hostID).Scan(&status)
		if errors.Is(probe, pgx.ErrNoRows) {
			return Booking{}, ErrNotFound
		}
		return Booking{}, ErrAlreadyAccepted
	}
	if err != nil {
		return Booking{}, fmt.Errorf("accept rental booking: %w", err)
	}
	return b, nil
}

// UpdateStatus moves a rental along the shared machine. in_progress marks
// pickup (stamped once), completed marks return and bumps the vehicle's
// booking counter in the same transaction.
func (r *Repo) UpdateStatus(ctx context.Context, bookingID, userID string, u StatusUpdate) (Booking, error) {
	if !u.Status.Valid() || u.Status == booking.StatusAssigned || u.Status == booking.StatusPending {
		return Booking{}, ErrInvalidTransition
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Booking{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current booking.Status
	err = tx.QueryRow(ctx, `
		SELECT booking_status FROM rental_bookings
		WHERE id = $1 AND (customer_id = $2 OR host_id = $2)
		FOR UPDATE`, bookingID, userID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	if err != nil {
		return Booking{}, fmt.Errorf("lock rental booking: %w", err)
	}
	if !booking.CanTransition(current, u.Status) {
		return Booking{}, ErrInvalidTransition
	}

	var dropoff, reason any
	if u.DropoffLocation != "" {
		dropoff = u.DropoffLocation
	}
	if u.CancellationReason != "" {
		reason = u.CancellationReason
	}
	row := tx.QueryRow(ctx, `
		UPDATE rental_bookings SET
			booking_status = $1,
			dropoff_location = COALESCE($2, dropoff_location),
			cancellation_reason = COALESCE($3, cancellation_reason),
			vehicle_picked_up_at = CASE WHEN $1 = 'in_progress'
				THEN COALESCE(vehicle_picked_up_at, NOW()) ELSE vehicle_picked_up_at END,
			vehicle_returned_at = CASE WHEN $1 = 'completed'
				THEN NOW() ELSE vehicle_returned_at END,
			updated_at = NOW()
		WHERE id = $4
		RETURNING `+bookingColumns,
		u.Status, dropoff, reason, bookingID)
	b, err := scanBooking(row)
	if err != nil {
		return Booking{}, fmt.Errorf("update rental status: %w", err)
	}

	if u.Status == booking.StatusCompleted {
		if _, err := tx.Exec(ctx, `
			UPDATE rental_vehicles SET total_bookings = total_bookings + 1, updated_at = NOW()
			WHERE id = $1`, b.VehicleID); err != nil {
			return Booking{}, fmt.Errorf("bump vehicle bookings: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Booking{}, fmt.Errorf("commit rental status: %w", err)
	}
	return b, nil
}
