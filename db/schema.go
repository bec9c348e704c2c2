package database

import (
	"database/sql"
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'admin'
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id SERIAL PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		fellowship VARCHAR(100),
		concession VARCHAR(3) NOT NULL DEFAULT 'No',
		site_fee_status VARCHAR(20) NOT NULL DEFAULT 'Unknown'
	)`,
	`CREATE TABLE IF NOT EXISTS site_fee_accounts (
		id SERIAL PRIMARY KEY,
		member_id INTEGER NOT NULL REFERENCES members(id),
		site_id INTEGER,
		paid_until DATE,
		status VARCHAR(20) NOT NULL DEFAULT 'Unknown'
	)`,
	`CREATE TABLE IF NOT EXISTS sites (
		id SERIAL PRIMARY KEY,
		site_number VARCHAR(20) NOT NULL,
		site_type VARCHAR(50),
		power VARCHAR(3) NOT NULL DEFAULT 'No',
		water VARCHAR(3) NOT NULL DEFAULT 'No',
		sewer VARCHAR(3) NOT NULL DEFAULT 'No',
		status VARCHAR(20) NOT NULL DEFAULT 'Available',
		map_x DOUBLE PRECISION,
		map_y DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS site_allocations (
		id SERIAL PRIMARY KEY,
		site_id INTEGER NOT NULL REFERENCES sites(id),
		member_id INTEGER NOT NULL REFERENCES members(id),
		start_date DATE,
		is_current BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS camps (
		id SERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		year INTEGER,
		start_date DATE,
		end_date DATE,
		on_peak_start DATE,
		on_peak_end DATE,
		status VARCHAR(20) NOT NULL DEFAULT 'Planned'
	)`,
	`CREATE TABLE IF NOT EXISTS camp_rates (
		id SERIAL PRIMARY KEY,
		camp_id INTEGER NOT NULL REFERENCES camps(id),
		category VARCHAR(50),
		item VARCHAR(100),
		user_type VARCHAR(50),
		amount NUMERIC(10,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id SERIAL PRIMARY KEY,
		member_id INTEGER NOT NULL REFERENCES members(id),
		camp_id INTEGER REFERENCES camps(id),
		site_id INTEGER,
		payment_date TIMESTAMP NOT NULL DEFAULT NOW(),
		camp_fee NUMERIC(10,2) NOT NULL DEFAULT 0,
		site_fee NUMERIC(10,2) NOT NULL DEFAULT 0,
		prepaid_applied NUMERIC(10,2) NOT NULL DEFAULT 0,
		other_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
		total NUMERIC(10,2) NOT NULL DEFAULT 0,
		headcount INTEGER,
		notes TEXT,
		arrival_date DATE,
		departure_date DATE,
		site_type VARCHAR(50),
		tender_eftpos NUMERIC(10,2) NOT NULL DEFAULT 0,
		tender_cash NUMERIC(10,2) NOT NULL DEFAULT 0,
		tender_cheque NUMERIC(10,2) NOT NULL DEFAULT 0,
		concession SMALLINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS payment_tenders (
		id SERIAL PRIMARY KEY,
		payment_id INTEGER NOT NULL REFERENCES payments(id),
		method VARCHAR(20) NOT NULL,
		amount NUMERIC(10,2) NOT NULL,
		reference VARCHAR(100) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS prepayments (
		id SERIAL PRIMARY KEY,
		camp_id INTEGER REFERENCES camps(id),
		imported_name VARCHAR(200),
		first_name VARCHAR(100),
		last_name VARCHAR(100),
		amount NUMERIC(10,2) NOT NULL DEFAULT 0,
		transaction_id VARCHAR(100),
		date DATE,
		matched_member_id INTEGER REFERENCES members(id),
		original_data TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'Unmatched'
	)`,
	`CREATE TABLE IF NOT EXISTS waitlist (
		id SERIAL PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL,
		last_name VARCHAR(100) NOT NULL,
		phone VARCHAR(30) NOT NULL DEFAULT '',
		site_type VARCHAR(50),
		adults INTEGER NOT NULL DEFAULT 0,
		kids INTEGER NOT NULL DEFAULT 0,
		special_considerations TEXT,
		intended_days VARCHAR(50),
		home_assembly VARCHAR(100),
		overflow_willing VARCHAR(10),
		subscription_willing VARCHAR(10),
		additional_comments TEXT,
		priority INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS camp_intranet_content (
		camp_id INTEGER PRIMARY KEY REFERENCES camps(id),
		program TEXT NOT NULL DEFAULT '',
		notifications TEXT NOT NULL DEFAULT '',
		events TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates any missing tables. Statements are idempotent so this is
// safe to run on every start.
func (s *DBService) Migrate() error {
	if err := ApplySchema(s.DB); err != nil {
		return err
	}
	return seedAdminUser(s.DB)
}

// ApplySchema runs the table definitions against an open connection.
// Integration tests use it to prepare throwaway databases.
func ApplySchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// seedAdminUser creates the initial admin account when the users table is
// empty. The password comes from ADMIN_PASSWORD, falling back to "admin"
// for fresh local setups.
func seedAdminUser(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
		log.Println("ADMIN_PASSWORD not set, seeding default admin credentials")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec("INSERT INTO users (username, password_hash, role) VALUES ($1, $2, 'admin')", "admin", string(hash))
	return err
}
