package services

import (
	"calendarapi/models"
)

type AdminService struct {
	users models.UserRepository
	reset models.Resetter
}

func NewAdminService(users models.UserRepository, reset models.Resetter) *AdminService {
	return &AdminService{users: users, reset: reset}
}

// CreateUser provisions an account with an arbitrary role; admin only.
// An existing username fails with ErrDuplicateUsername and leaves the
// original account untouched.
func (s *AdminService) CreateUser(caller models.Identity, username, password string, role models.Role) error {
	if !caller.IsAdmin() {
		return models.ErrForbidden
	}
	if username == "" || password == "" {
		return models.ErrInvalidCredentials
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		role = models.RoleUser
	}
	u := models.User{Username: username, Password: password, Role: role}
	return s.users.Create(&u)
}

// ChangePassword overwrites unconditionally, but only for the caller's own
// account.
func (s *AdminService) ChangePassword(caller models.Identity, username, newPassword string) error {
	if caller.Username != username {
		return models.ErrForbidden
	}
	if newPassword == "" {
		return models.ErrInvalidCredentials
	}
	return s.users.UpdatePassword(username, newPassword)
}

// ResetAll irreversibly wipes every user and event, then reseeds the
// bootstrap admin account.
func (s *AdminService) ResetAll(caller models.Identity) error {
	if !caller.IsAdmin() {
		return models.ErrForbidden
	}
	return s.reset.ResetAll()
}
