package db

import (
	"database/sql"

	_ "github.com/lib/pq"

	"calendarapi/models"
	"calendarapi/utils"
)

// Open connects to Postgres, creates the schema if needed and guarantees the
// bootstrap admin account exists. The handle is returned for injection into
// the repositories; there is no package-level connection state.
func Open(dsn string) (*sql.DB, error) {
	d, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	d.SetMaxOpenConns(20)
	d.SetMaxIdleConns(10)

	if err := createTables(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	if err := seedAdmin(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

func createTables(d *sql.DB) error {
	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user'
	);`
	if _, err := d.Exec(createUsersTable); err != nil {
		return err
	}

	// Flags are 0/1 and participants one delimited string; the event
	// repository owns both translations.
	createEventsTable := `
	CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		owner TEXT NOT NULL,
		participants TEXT NOT NULL DEFAULT '',
		is_meeting SMALLINT NOT NULL DEFAULT 0,
		meeting_link TEXT NOT NULL DEFAULT '',
		is_public SMALLINT NOT NULL DEFAULT 0
	);`
	if _, err := d.Exec(createEventsTable); err != nil {
		return err
	}
	return nil
}

func seedAdmin(d *sql.DB) error {
	var n int
	if err := d.QueryRow(`SELECT COUNT(*) FROM users WHERE username = $1`, models.BootstrapUsername).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(models.BootstrapPassword)
	if err != nil {
		return err
	}
	_, err = d.Exec(`INSERT INTO users (username, password, role) VALUES ($1,$2,$3)`,
		models.BootstrapUsername, hashed, string(models.RoleAdmin))
	return err
}
