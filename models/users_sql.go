package models

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"calendarapi/utils"
)

type sqlUserRepo struct{ db *sql.DB }

func NewSQLUserRepository(db *sql.DB) UserRepository { return &sqlUserRepo{db} }

func (r *sqlUserRepo) Create(u *User) error {
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	if u.Role == "" {
		u.Role = RoleUser
	}

	err = r.db.QueryRow(
		`INSERT INTO users(username, password, role) VALUES ($1,$2,$3) RETURNING id`,
		u.Username, hashed, string(u.Role),
	).Scan(&u.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateUsername
	}
	return err
}

func (r *sqlUserRepo) ValidateCredentials(username, plain string) (User, error) {
	var u User
	err := r.db.QueryRow(`SELECT id, username, password, role FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.Password, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if !utils.CheckPasswordHash(plain, u.Password) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (r *sqlUserRepo) GetByUsername(username string) (User, error) {
	var u User
	err := r.db.QueryRow(`SELECT id, username, role FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdatePassword overwrites unconditionally; the self-only rule is enforced
// by the admin service, not here.
func (r *sqlUserRepo) UpdatePassword(username, newPassword string) error {
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	res, err := r.db.Exec(`UPDATE users SET password=$1 WHERE username=$2`, hashed, username)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqlUserRepo) ListUsernames() ([]string, error) {
	rows, err := r.db.Query(`SELECT username FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
