package models

import (
	"context"
	"database/sql"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"calendarapi/utils"
)

// Bootstrap account reseeded after every reset and on first run.
const (
	BootstrapUsername = "admin"
	BootstrapPassword = "admin"
)

type sqlResetter struct{ db *sql.DB }

// NewSQLResetter wipes events and users and reseeds the bootstrap admin in a
// single transaction, so a failed reset leaves the prior state untouched.
func NewSQLResetter(db *sql.DB) Resetter { return &sqlResetter{db} }

func (r *sqlResetter) ResetAll() error {
	hashed, err := utils.HashPassword(BootstrapPassword)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for _, stmt := range []string{`DELETE FROM events`, `DELETE FROM users`} {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if _, err := tx.Exec(
		`INSERT INTO users (username, password, role) VALUES ($1,$2,$3)`,
		BootstrapUsername, hashed, string(RoleAdmin),
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type mongoResetter struct {
	events *mongo.Collection
	users  Resetter
}

// NewMongoResetter covers the split-store deployment (users in Postgres,
// events in Mongo). The wipe cannot span both stores in one transaction;
// events go first, then the users transaction.
func NewMongoResetter(db *mongo.Database, sqldb *sql.DB) Resetter {
	return &mongoResetter{events: db.Collection("events"), users: NewSQLResetter(sqldb)}
}

func (r *mongoResetter) ResetAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.events.DeleteMany(ctx, bson.M{}); err != nil {
		return err
	}
	return r.users.ResetAll()
}
