package services

import (
	"sort"

	"calendarapi/models"
)

// In-memory fakes in place of the SQL/Mongo repositories. Participants pass
// through the real codec so the fakes keep the same boundary behavior.

type memEventRepo struct {
	nextID int64
	items  map[int64]models.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{items: map[int64]models.Event{}}
}

func (m *memEventRepo) get(id int64) (models.Event, bool) {
	e, ok := m.items[id]
	if !ok {
		return models.Event{}, false
	}
	e.Participants = models.DecodeParticipants(models.EncodeParticipants(e.Participants))
	return e, true
}

func (m *memEventRepo) GetByID(id int64) (models.Event, error) {
	e, ok := m.get(id)
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e, nil
}

func (m *memEventRepo) ListVisible(target string) ([]models.Event, error) {
	var out []models.Event
	for id := range m.items {
		e, _ := m.get(id)
		if e.HasParticipant(target) || (e.Owner == target && !e.IsPublic) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEventRepo) ListPublic() ([]models.Event, error) {
	var out []models.Event
	for id := range m.items {
		e, _ := m.get(id)
		if e.IsPublic {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memEventRepo) Insert(e *models.Event) error {
	m.nextID++
	e.ID = m.nextID
	e.Participants = models.NormalizeParticipants(e.Owner, e.Participants)
	m.items[e.ID] = *e
	return nil
}

func (m *memEventRepo) Update(e *models.Event) error {
	old, ok := m.items[e.ID]
	if !ok {
		return models.ErrNotFound
	}
	e.Owner = old.Owner
	m.items[e.ID] = *e
	return nil
}

func (m *memEventRepo) Delete(id int64) error {
	if _, ok := m.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memEventRepo) SetParticipants(id int64, participants []string) error {
	e, ok := m.items[id]
	if !ok {
		return models.ErrNotFound
	}
	e.Participants = participants
	m.items[id] = e
	return nil
}

func (m *memEventRepo) DeleteAll() error {
	m.items = map[int64]models.Event{}
	return nil
}

type memUserRepo struct {
	nextID int64
	users  map[string]models.User // plaintext passwords, like the route fakes
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]models.User{}}
}

func (m *memUserRepo) Create(u *models.User) error {
	if _, ok := m.users[u.Username]; ok {
		return models.ErrDuplicateUsername
	}
	m.nextID++
	u.ID = m.nextID
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	m.users[u.Username] = *u
	return nil
}

func (m *memUserRepo) ValidateCredentials(username, plain string) (models.User, error) {
	u, ok := m.users[username]
	if !ok || u.Password != plain {
		return models.User{}, models.ErrInvalidCredentials
	}
	return u, nil
}

func (m *memUserRepo) GetByUsername(username string) (models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) UpdatePassword(username, newPassword string) error {
	u, ok := m.users[username]
	if !ok {
		return models.ErrNotFound
	}
	u.Password = newPassword
	m.users[username] = u
	return nil
}

func (m *memUserRepo) ListUsernames() ([]string, error) {
	out := make([]string, 0, len(m.users))
	for name := range m.users {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// memResetter wipes both fakes and reseeds the bootstrap admin.
type memResetter struct {
	users  *memUserRepo
	events *memEventRepo
	calls  int
}

func (r *memResetter) ResetAll() error {
	r.calls++
	_ = r.events.DeleteAll()
	r.users.users = map[string]models.User{}
	r.users.nextID = 0
	return r.users.Create(&models.User{
		Username: models.BootstrapUsername,
		Password: models.BootstrapPassword,
		Role:     models.RoleAdmin,
	})
}
