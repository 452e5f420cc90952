package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; a pool of one connection avoids
	// SQLITE_BUSY under concurrent requests and keeps :memory: databases
	// from fragmenting across connections in tests.
	db.SetMaxOpenConns(1)
	if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL DEFAULT 'user',
		password_hash TEXT NOT NULL,
		reset_token TEXT,
		reset_expires DATETIME,
		confirm_token TEXT,
		email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bootcamps (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		website TEXT,
		phone TEXT,
		email TEXT,
		address TEXT,
		latitude REAL,
		longitude REAL,
		-- Careers stored as a JSON array string
		careers_json TEXT,
		housing BOOLEAN NOT NULL DEFAULT FALSE,
		job_assistance BOOLEAN NOT NULL DEFAULT FALSE,
		job_guarantee BOOLEAN NOT NULL DEFAULT FALSE,
		accept_gi_bill BOOLEAN NOT NULL DEFAULT FALSE,
		average_cost INTEGER,
		photo TEXT NOT NULL DEFAULT 'no-photo.jpg',
		user_id TEXT NOT NULL REFERENCES users(id),
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bootcamps_user_id ON bootcamps(user_id);
	CREATE INDEX IF NOT EXISTS idx_bootcamps_lat_lng ON bootcamps(latitude, longitude);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT NOT NULL PRIMARY KEY,
		type TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		subject_id TEXT,
		created_at DATETIME NOT NULL
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
