package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type migration struct {
	version string
	sql     string
}

// Applied in order, tracked in schema_migrations. Embedded so the binary
// carries its own schema.
var migrations = []migration{
	{
		version: "001_users",
		sql: `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone TEXT,
			role TEXT NOT NULL DEFAULT 'customer',
			kyc_status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS user_addresses (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			address_line1 TEXT NOT NULL,
			address_line2 TEXT,
			city TEXT,
			state TEXT,
			pincode TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	},
	{
		version: "002_catalog",
		sql: `
		CREATE TABLE IF NOT EXISTS vehicle_parts (
			id UUID PRIMARY KEY,
			merchant_id UUID NOT NULL REFERENCES users(id),
			name TEXT NOT NULL,
			description TEXT,
			vehicle_type TEXT,
			category TEXT,
			brand TEXT,
			model TEXT,
			price NUMERIC(12,2) NOT NULL,
			stock_quantity INT NOT NULL CHECK (stock_quantity >= 0),
			sku TEXT,
			images JSONB NOT NULL DEFAULT '[]',
			specifications JSONB NOT NULL DEFAULT '{}',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	},
	{
		version: "003_orders",
		sql: `
		CREATE TABLE IF NOT EXISTS part_orders (
			id UUID PRIMARY KEY,
			order_number TEXT UNIQUE NOT NULL,
			customer_id UUID NOT NULL REFERENCES users(id),
			merchant_id UUID NOT NULL REFERENCES users(id),
			delivery_address_id UUID REFERENCES user_addresses(id),
			subtotal NUMERIC(12,2) NOT NULL,
			platform_commission NUMERIC(12,2) NOT NULL,
			tax_amount NUMERIC(12,2) NOT NULL,
			delivery_charge NUMERIC(12,2) NOT NULL,
			total_amount NUMERIC(12,2) NOT NULL,
			order_status TEXT NOT NULL DEFAULT 'pending',
			tracking_number TEXT,
			cancellation_reason TEXT,
			delivered_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS part_order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES part_orders(id),
			part_id UUID NOT NULL REFERENCES vehicle_parts(id),
			quantity INT NOT NULL CHECK (quantity > 0),
			unit_price NUMERIC(12,2) NOT NULL,
			total_price NUMERIC(12,2) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_part_orders_customer ON part_orders(customer_id);
		CREATE INDEX IF NOT EXISTS idx_part_orders_merchant ON part_orders(merchant_id);`,
	},
	{
		version: "004_workshop",
		sql: `
		CREATE TABLE IF NOT EXISTS mechanic_profiles (
			id UUID PRIMARY KEY,
			user_id UUID UNIQUE NOT NULL REFERENCES users(id),
			service_types JSONB NOT NULL DEFAULT '[]',
			vehicle_expertise JSONB NOT NULL DEFAULT '[]',
			service_area_city TEXT,
			service_radius_km INT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			hourly_rate NUMERIC(12,2),
			rating NUMERIC(3,2),
			total_jobs INT NOT NULL DEFAULT 0,
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS service_bookings (
			id UUID PRIMARY KEY,
			booking_number TEXT UNIQUE NOT NULL,
			customer_id UUID NOT NULL REFERENCES users(id),
			mechanic_id UUID REFERENCES users(id),
			service_type TEXT NOT NULL,
			vehicle_type TEXT,
			vehicle_details JSONB NOT NULL DEFAULT '{}',
			service_location_lat DOUBLE PRECISION,
			service_location_lng DOUBLE PRECISION,
			service_location_address TEXT,
			preferred_datetime TIMESTAMPTZ,
			service_description TEXT,
			booking_status TEXT NOT NULL DEFAULT 'pending',
			estimated_price NUMERIC(12,2),
			final_price NUMERIC(12,2),
			cancellation_reason TEXT,
			customer_rating INT,
			customer_review TEXT,
			mechanic_assigned_at TIMESTAMPTZ,
			service_started_at TIMESTAMPTZ,
			service_completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	},
	{
		version: "005_rental",
		sql: `
		CREATE TABLE IF NOT EXISTS rental_vehicles (
			id UUID PRIMARY KEY,
			host_id UUID NOT NULL REFERENCES users(id),
			vehicle_type TEXT,
			brand TEXT,
			model TEXT,
			year_of_manufacture INT,
			registration_number TEXT UNIQUE,
			vehicle_images JSONB NOT NULL DEFAULT '[]',
			seating_capacity INT,
			fuel_type TEXT,
			transmission TEXT,
			price_per_day NUMERIC(12,2) NOT NULL,
			is_insurance_eligible BOOLEAN NOT NULL DEFAULT FALSE,
			current_location_city TEXT,
			total_bookings INT NOT NULL DEFAULT 0,
			is_available BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS rental_bookings (
			id UUID PRIMARY KEY,
			booking_number TEXT UNIQUE NOT NULL,
			customer_id UUID NOT NULL REFERENCES users(id),
			vehicle_id UUID NOT NULL REFERENCES rental_vehicles(id),
			host_id UUID NOT NULL REFERENCES users(id),
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			total_days INT NOT NULL,
			price_per_day NUMERIC(12,2) NOT NULL,
			subtotal NUMERIC(12,2) NOT NULL,
			platform_commission NUMERIC(12,2) NOT NULL,
			insurance_fee NUMERIC(12,2) NOT NULL,
			total_amount NUMERIC(12,2) NOT NULL,
			booking_status TEXT NOT NULL DEFAULT 'pending',
			pickup_location TEXT,
			dropoff_location TEXT,
			cancellation_reason TEXT,
			host_accepted_at TIMESTAMPTZ,
			vehicle_picked_up_at TIMESTAMPTZ,
			vehicle_returned_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	},
	{
		version: "006_rsa",
		sql: `
		CREATE TABLE IF NOT EXISTS rsa_subscriptions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			plan_name TEXT NOT NULL,
			plan_price NUMERIC(12,2) NOT NULL,
			benefits JSONB NOT NULL DEFAULT '[]',
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS rsa_requests (
			id UUID PRIMARY KEY,
			request_number TEXT UNIQUE NOT NULL,
			user_id UUID NOT NULL REFERENCES users(id),
			subscription_id UUID NOT NULL REFERENCES rsa_subscriptions(id),
			service_partner_id UUID REFERENCES users(id),
			emergency_type TEXT NOT NULL,
			location_lat DOUBLE PRECISION,
			location_lng DOUBLE PRECISION,
			location_address TEXT,
			vehicle_details JSONB NOT NULL DEFAULT '{}',
			request_status TEXT NOT NULL DEFAULT 'pending',
			resolution_notes TEXT,
			partner_assigned_at TIMESTAMPTZ,
			service_started_at TIMESTAMPTZ,
			service_completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	},
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", m.version, err)
		}
		if exists {
			continue
		}
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
	}
	return nil
}
