package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'order_status') THEN
			CREATE TYPE order_status AS ENUM ('pending', 'assigned', 'picked_up', 'in_transit', 'delivered', 'cancelled');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'geofence_type') THEN
			CREATE TYPE geofence_type AS ENUM ('pickup', 'delivery', 'restricted', 'custom');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'geofence_event_type') THEN
			CREATE TYPE geofence_event_type AS ENUM ('enter', 'exit');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		business_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		phone VARCHAR(32),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_business_id ON drivers (business_id);`,
	`CREATE TABLE IF NOT EXISTS position_observations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		driver_id UUID NOT NULL,
		order_id UUID,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		accuracy DOUBLE PRECISION,
		speed DOUBLE PRECISION,
		heading DOUBLE PRECISION,
		observed_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_position_observations_driver ON position_observations (driver_id, observed_at DESC);`,
	`CREATE TABLE IF NOT EXISTS driver_locations (
		driver_id UUID PRIMARY KEY,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		accuracy DOUBLE PRECISION,
		speed DOUBLE PRECISION,
		heading DOUBLE PRECISION,
		observed_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS geofences (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		business_id UUID NOT NULL,
		name VARCHAR(255) NOT NULL,
		type geofence_type NOT NULL DEFAULT 'custom',
		center_latitude DOUBLE PRECISION NOT NULL,
		center_longitude DOUBLE PRECISION NOT NULL,
		radius_meters DOUBLE PRECISION NOT NULL CHECK (radius_meters > 0),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_geofences_business_active ON geofences (business_id, active);`,
	`CREATE TABLE IF NOT EXISTS geofence_events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		geofence_id UUID NOT NULL,
		driver_id UUID NOT NULL,
		order_id UUID,
		event_type geofence_event_type NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_geofence_events_pair ON geofence_events (geofence_id, driver_id, occurred_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_geofence_events_order ON geofence_events (order_id);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		business_id UUID NOT NULL,
		driver_id UUID,
		status order_status NOT NULL DEFAULT 'pending',
		priority VARCHAR(16) NOT NULL DEFAULT 'normal',
		pickup_latitude DOUBLE PRECISION NOT NULL,
		pickup_longitude DOUBLE PRECISION NOT NULL,
		delivery_latitude DOUBLE PRECISION NOT NULL,
		delivery_longitude DOUBLE PRECISION NOT NULL,
		estimated_delivery TIMESTAMPTZ,
		actual_pickup TIMESTAMPTZ,
		actual_delivery TIMESTAMPTZ,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_business_status ON orders (business_id, status);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_driver ON orders (driver_id);`,
	`CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_orders_updated_at') THEN
			CREATE TRIGGER trg_orders_updated_at
				BEFORE UPDATE ON orders
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_geofences_updated_at') THEN
			CREATE TRIGGER trg_geofences_updated_at
				BEFORE UPDATE ON geofences
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
