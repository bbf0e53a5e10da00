package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('DRAFT', 'ACTIVE', 'CLOSED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_type') THEN
			CREATE TYPE contract_type AS ENUM ('FIXED_PRICE', 'TIME_AND_MATERIALS', 'COST_PLUS', 'LABOR_HOUR_ONLY');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'resource_category') THEN
			CREATE TYPE resource_category AS ENUM ('W2_INTERNAL', 'SUBCONTRACTOR', 'CONTRACTOR_1099', 'FIXED_PRICE');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS lcats (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		code VARCHAR(32) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category VARCHAR(128) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_by VARCHAR(255) NOT NULL,
		modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		modified_by VARCHAR(255) NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_lcats_code ON lcats (code);`,
	`CREATE TABLE IF NOT EXISTS lcat_rates (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		lcat_id UUID NOT NULL REFERENCES lcats(id) ON DELETE CASCADE,
		kind VARCHAR(32) NOT NULL,
		rate NUMERIC(12,2) NOT NULL CHECK (rate > 0),
		effective_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ,
		notes TEXT NOT NULL DEFAULT '',
		created_by VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_by VARCHAR(255) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_date IS NULL OR end_date > effective_date)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_lcat_rates_lcat_kind ON lcat_rates (lcat_id, kind, effective_date);`,
	`CREATE TABLE IF NOT EXISTS position_titles (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		lcat_id UUID NOT NULL REFERENCES lcats(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_position_titles_lcat_id ON position_titles (lcat_id);`,
	`CREATE TABLE IF NOT EXISTS resources (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		first_name VARCHAR(128) NOT NULL,
		last_name VARCHAR(128) NOT NULL,
		email VARCHAR(255) NOT NULL,
		category resource_category NOT NULL,
		lcat_id UUID REFERENCES lcats(id) ON DELETE RESTRICT,
		pay_rate NUMERIC(12,2) NOT NULL CHECK (pay_rate > 0),
		clearance_level VARCHAR(64) NOT NULL DEFAULT '',
		clearance_expiration TIMESTAMPTZ,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_by VARCHAR(255) NOT NULL,
		modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		modified_by VARCHAR(255) NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_resources_email ON resources (email);`,
	`CREATE INDEX IF NOT EXISTS idx_resources_lcat_id ON resources (lcat_id) WHERE lcat_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contract_number VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		customer_name VARCHAR(255) NOT NULL,
		prime_contractor VARCHAR(255) NOT NULL,
		is_prime BOOLEAN NOT NULL DEFAULT FALSE,
		contract_type contract_type NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		total_value NUMERIC(18,2) NOT NULL CHECK (total_value > 0),
		funded_value NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (funded_value >= 0),
		standard_fte_hours NUMERIC(8,2) NOT NULL DEFAULT 1912,
		description TEXT NOT NULL DEFAULT '',
		status contract_status NOT NULL DEFAULT 'DRAFT',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_by VARCHAR(255) NOT NULL,
		modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		modified_by VARCHAR(255) NOT NULL,
		CHECK (end_date > start_date),
		CHECK (funded_value <= total_value)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_number ON contracts (contract_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE TABLE IF NOT EXISTS contract_resources (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		resource_id UUID NOT NULL REFERENCES resources(id) ON DELETE RESTRICT,
		percentage NUMERIC(5,2) NOT NULL CHECK (percentage > 0 AND percentage <= 100),
		annual_hours NUMERIC(8,2) NOT NULL CHECK (annual_hours >= 0 AND annual_hours <= 2080),
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ,
		fixed_monthly_amount NUMERIC(18,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_by VARCHAR(255) NOT NULL,
		modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		modified_by VARCHAR(255) NOT NULL
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_resources_open ON contract_resources (contract_id, resource_id) WHERE end_date IS NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_contract_resources_resource_id ON contract_resources (resource_id);`,
	`CREATE TABLE IF NOT EXISTS contract_lcat_rates (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		lcat_id UUID NOT NULL REFERENCES lcats(id) ON DELETE RESTRICT,
		rate NUMERIC(12,2) NOT NULL CHECK (rate > 0),
		effective_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ,
		justification TEXT NOT NULL DEFAULT '',
		created_by VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_by VARCHAR(255) NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (end_date IS NULL OR end_date > effective_date)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_lcat_rates_contract_lcat ON contract_lcat_rates (contract_id, lcat_id, effective_date);`,
	`CREATE TABLE IF NOT EXISTS contract_modifications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		modification_number VARCHAR(64) NOT NULL,
		modification_type VARCHAR(64) NOT NULL,
		previous_value NUMERIC(18,2) NOT NULL,
		new_value NUMERIC(18,2) NOT NULL,
		justification TEXT NOT NULL,
		created_by VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_modifications_contract_id ON contract_modifications (contract_id, created_at);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
