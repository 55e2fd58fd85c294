package repository

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// now is the timestamp format stored in every *_at column
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS holders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			registry_id INTEGER UNIQUE,
			name TEXT NOT NULL,
			rfc TEXT,
			curp TEXT,
			phone TEXT,
			address TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS concessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			holder_id INTEGER NOT NULL,
			number TEXT UNIQUE NOT NULL,
			modality TEXT NOT NULL,
			route TEXT,
			status TEXT NOT NULL DEFAULT 'vigente',
			expires_on TEXT,
			FOREIGN KEY (holder_id) REFERENCES holders(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS vehicles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			concession_id INTEGER,
			plate TEXT NOT NULL,
			serial TEXT UNIQUE NOT NULL,
			engine_number TEXT,
			brand TEXT,
			model TEXT,
			year INTEGER,
			color TEXT,
			capacity INTEGER DEFAULT 0,
			fuel_type TEXT,
			photo_url TEXT,
			active BOOLEAN DEFAULT 1,
			FOREIGN KEY (concession_id) REFERENCES concessions(id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_options (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			characteristic TEXT NOT NULL,
			characteristic_label TEXT NOT NULL,
			characteristic_order INTEGER NOT NULL,
			option_id TEXT NOT NULL,
			option_label TEXT NOT NULL,
			points INTEGER NOT NULL,
			display_order INTEGER NOT NULL,
			UNIQUE(characteristic, option_id)
		)`,
		`CREATE TABLE IF NOT EXISTS inspections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			folio TEXT UNIQUE NOT NULL,
			vehicle_id INTEGER NOT NULL,
			inspector TEXT,
			answers TEXT NOT NULL DEFAULT '{}',
			score INTEGER NOT NULL DEFAULT 0,
			max_score INTEGER NOT NULL DEFAULT 0,
			classification TEXT NOT NULL,
			classification_id INTEGER NOT NULL DEFAULT 0,
			rejected BOOLEAN NOT NULL DEFAULT 0,
			complete BOOLEAN NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			observations TEXT,
			schema_version INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT,
			submitted_at TEXT,
			certified_at TEXT,
			FOREIGN KEY (vehicle_id) REFERENCES vehicles(id)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_concessions_holder ON concessions(holder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_concession ON vehicles(concession_id)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_plate ON vehicles(plate)`,
		`CREATE INDEX IF NOT EXISTS idx_inspections_vehicle ON inspections(vehicle_id)`,
		`CREATE INDEX IF NOT EXISTS idx_inspections_status ON inspections(status)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// Note: base_url is intentionally not set here - app.go sets it
	// with the detected LAN IP address on startup
	defaultSettings := map[string]string{
		"registry_url":      "",
		"default_inspector": "",
	}

	for key, value := range defaultSettings {
		_, err := r.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, value)
		if err != nil {
			return err
		}
	}

	return nil
}

// ==================== Settings Methods ====================

// GetSetting returns a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting saves a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// GetDashboardStats returns counts shown on the admin dashboard
func (r *Repository) GetDashboardStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	counts := []struct {
		key   string
		query string
	}{
		{"total_holders", `SELECT COUNT(*) FROM holders`},
		{"total_concessions", `SELECT COUNT(*) FROM concessions`},
		{"total_vehicles", `SELECT COUNT(*) FROM vehicles WHERE active = 1`},
		{"total_inspections", `SELECT COUNT(*) FROM inspections WHERE status != 'cancelled'`},
		{"pending_inspections", `SELECT COUNT(*) FROM inspections WHERE status = 'draft'`},
		{"certified_inspections", `SELECT COUNT(*) FROM inspections WHERE status = 'certified'`},
		{"rejected_inspections", `SELECT COUNT(*) FROM inspections WHERE rejected = 1 AND status IN ('submitted', 'certified')`},
	}

	for _, c := range counts {
		var n int
		if err := r.db.QueryRowContext(ctx, c.query).Scan(&n); err != nil {
			return nil, err
		}
		stats[c.key] = n
	}

	return stats, nil
}

// validTables is the whitelist of tables that may be cleared
var validTables = map[string]bool{
	"holders":         true,
	"concessions":     true,
	"vehicles":        true,
	"catalog_options": true,
	"inspections":     true,
}

// ClearTable deletes every row of a whitelisted table
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	if !validTables[table] {
		return ErrInvalidTable
	}

	// Safe to concatenate now that the name is whitelisted
	_, err := r.db.ExecContext(ctx, "DELETE FROM "+table)
	return err
}
