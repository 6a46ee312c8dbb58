package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Identity is the trusted (username, role) pair attached to every call.
// It is built from the verified token at the HTTP boundary; the core never
// reads ambient session state.
type Identity struct {
	Username string
	Role     Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Role     Role   `json:"role"`
}

type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Description string    `json:"description"`
	// Owner is the creating username; fixed for the event's lifetime and
	// always contained in Participants.
	Owner        string   `json:"owner"`
	Participants []string `json:"participants"`
	IsMeeting    bool     `json:"is_meeting"`
	MeetingLink  string   `json:"meeting_link"`
	IsPublic     bool     `json:"is_public"`
}

// HasParticipant reports whether username is listed on the event.
func (e Event) HasParticipant(username string) bool {
	for _, p := range e.Participants {
		if p == username {
			return true
		}
	}
	return false
}

// ===== Events =====
//
// Booleans are persisted as 0/1 and participants as a single comma-delimited
// string; both translations happen inside the implementations, never above
// this interface.
type EventRepository interface {
	GetByID(id int64) (Event, error)
	// ListVisible returns events where target is a listed participant, or
	// the owner of a private event. Order is unspecified.
	ListVisible(target string) ([]Event, error)
	ListPublic() ([]Event, error)
	// Insert assigns a new id and forces the owner to the front of the
	// participant list if absent.
	Insert(e *Event) error
	// Update replaces every mutable attribute; id and owner are kept.
	Update(e *Event) error
	Delete(id int64) error
	// SetParticipants mutates only the participant list; used by join/leave.
	SetParticipants(id int64, participants []string) error
	DeleteAll() error
}

// ===== Users =====
type UserRepository interface {
	Create(u *User) error
	ValidateCredentials(username, plain string) (User, error)
	GetByUsername(username string) (User, error)
	UpdatePassword(username, newPassword string) error
	ListUsernames() ([]string, error)
}

// Resetter wipes all users and events and reseeds the bootstrap admin.
type Resetter interface {
	ResetAll() error
}
