package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"calendarapi/models"
	"calendarapi/services"
	"calendarapi/utils"
)

/* ---------- fakes ---------- */

type fakeEventRepo struct {
	nextID int64
	items  map[int64]models.Event
}

func (m *fakeEventRepo) GetByID(id int64) (models.Event, error) {
	e, ok := m.items[id]
	if !ok {
		return models.Event{}, models.ErrNotFound
	}
	return e, nil
}

func (m *fakeEventRepo) ListVisible(target string) ([]models.Event, error) {
	var out []models.Event
	for _, e := range m.items {
		if e.HasParticipant(target) || (e.Owner == target && !e.IsPublic) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *fakeEventRepo) ListPublic() ([]models.Event, error) {
	var out []models.Event
	for _, e := range m.items {
		if e.IsPublic {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *fakeEventRepo) Insert(e *models.Event) error {
	m.nextID++
	e.ID = m.nextID
	e.Participants = models.NormalizeParticipants(e.Owner, e.Participants)
	m.items[e.ID] = *e
	return nil
}

func (m *fakeEventRepo) Update(e *models.Event) error {
	old, ok := m.items[e.ID]
	if !ok {
		return models.ErrNotFound
	}
	e.Owner = old.Owner
	m.items[e.ID] = *e
	return nil
}

func (m *fakeEventRepo) Delete(id int64) error {
	if _, ok := m.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *fakeEventRepo) SetParticipants(id int64, participants []string) error {
	e, ok := m.items[id]
	if !ok {
		return models.ErrNotFound
	}
	e.Participants = participants
	m.items[id] = e
	return nil
}

func (m *fakeEventRepo) DeleteAll() error {
	m.items = map[int64]models.Event{}
	return nil
}

type fakeUserRepo struct {
	nextID int64
	users  map[string]models.User
}

func (m *fakeUserRepo) Create(u *models.User) error {
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

func (m *fakeUserRepo) ValidateCredentials(username, plain string) (models.User, error) {
	u, ok := m.users[username]
	if !ok || u.Password != plain {
		return models.User{}, models.ErrInvalidCredentials
	}
	return u, nil
}

func (m *fakeUserRepo) GetByUsername(username string) (models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (m *fakeUserRepo) UpdatePassword(username, newPassword string) error {
	u, ok := m.users[username]
	if !ok {
		return models.ErrNotFound
	}
	u.Password = newPassword
	m.users[username] = u
	return nil
}

func (m *fakeUserRepo) ListUsernames() ([]string, error) {
	out := make([]string, 0, len(m.users))
	for name := range m.users {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

type fakeResetter struct {
	users  *fakeUserRepo
	events *fakeEventRepo
}

func (r *fakeResetter) ResetAll() error {
	_ = r.events.DeleteAll()
	r.users.users = map[string]models.User{}
	r.users.nextID = 0
	return r.users.Create(&models.User{
		Username: models.BootstrapUsername,
		Password: models.BootstrapPassword,
		Role:     models.RoleAdmin,
	})
}

/* ---------- helpers ---------- */

type serverDeps struct {
	s  *gin.Engine
	ur *fakeUserRepo
	er *fakeEventRepo
}

func setupServerWithDeps(t *testing.T) serverDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inv := utils.NewCacheInvalidator(rdb)

	ur := &fakeUserRepo{users: map[string]models.User{}}
	er := &fakeEventRepo{items: map[int64]models.Event{}}
	reset := &fakeResetter{users: ur, events: er}
	_ = reset.ResetAll() // seed the bootstrap admin

	s := gin.New()
	RegisterRoutes(s, ur,
		services.NewEventService(er),
		services.NewAdminService(ur, reset),
		rdb, inv)
	return serverDeps{s: s, ur: ur, er: er}
}

func authToken(t *testing.T, username, role string) string {
	t.Helper()
	token, err := utils.GenerateToken(username, role)
	if err != nil {
		t.Fatalf("gen token: %v", err)
	}
	return token
}

func doReq(s *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	s.ServeHTTP(w, req)
	return w
}

/* ---------- tests ---------- */

func TestLogin_IssuesUsableToken(t *testing.T) {
	deps := setupServerWithDeps(t)

	w := doReq(deps.s, http.MethodPost, "/login", `{"username":"admin","password":"admin"}`, "")
	if w.Code != 200 {
		t.Fatalf("login got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response lacks token: %s", w.Body.String())
	}

	// The token authenticates follow-up calls.
	w = doReq(deps.s, http.MethodGet, "/events", "", resp.Token)
	if w.Code != 200 {
		t.Fatalf("GET /events with fresh token got %d", w.Code)
	}

	// Wrong password is rejected.
	w = doReq(deps.s, http.MethodPost, "/login", `{"username":"admin","password":"nope"}`, "")
	if w.Code != 401 {
		t.Fatalf("bad login got %d", w.Code)
	}
}

func TestEvents_ConflictConfirmFlow(t *testing.T) {
	deps := setupServerWithDeps(t)
	token := authToken(t, "alice", "user")

	body := `{"title":"A","start_date":"2025-03-10T10:00:00Z","end_date":"2025-03-10T11:00:00Z"}`
	w := doReq(deps.s, http.MethodPost, "/events", body, token)
	if w.Code != 201 {
		t.Fatalf("create A got %d body=%s", w.Code, w.Body.String())
	}

	// Overlapping candidate: pending decision, nothing persisted.
	overlapping := `{"title":"B","start_date":"2025-03-10T10:30:00Z","end_date":"2025-03-10T11:30:00Z"}`
	w = doReq(deps.s, http.MethodPost, "/events", overlapping, token)
	if w.Code != 409 {
		t.Fatalf("overlap got %d body=%s", w.Code, w.Body.String())
	}
	if len(deps.er.items) != 1 {
		t.Fatalf("pending conflict must not persist, have %d events", len(deps.er.items))
	}

	// Confirmed retry forces the save.
	confirmed := `{"title":"B","start_date":"2025-03-10T10:30:00Z","end_date":"2025-03-10T11:30:00Z","confirm_conflicts":true}`
	w = doReq(deps.s, http.MethodPost, "/events", confirmed, token)
	if w.Code != 201 {
		t.Fatalf("confirmed create got %d body=%s", w.Code, w.Body.String())
	}
	if len(deps.er.items) != 2 {
		t.Fatalf("want 2 events, have %d", len(deps.er.items))
	}

	// Back-to-back event saves without confirmation.
	backToBack := `{"title":"C","start_date":"2025-03-10T11:30:00Z","end_date":"2025-03-10T12:00:00Z"}`
	w = doReq(deps.s, http.MethodPost, "/events", backToBack, token)
	if w.Code != 201 {
		t.Fatalf("back-to-back got %d body=%s", w.Code, w.Body.String())
	}
}

func TestEvents_OwnershipEnforcedOverHTTP(t *testing.T) {
	deps := setupServerWithDeps(t)
	aliceTok := authToken(t, "alice", "user")
	bobTok := authToken(t, "bob", "user")

	body := `{"title":"A","start_date":"2025-03-10T10:00:00Z","end_date":"2025-03-10T11:00:00Z"}`
	if w := doReq(deps.s, http.MethodPost, "/events", body, aliceTok); w.Code != 201 {
		t.Fatalf("create got %d", w.Code)
	}

	if w := doReq(deps.s, http.MethodPut, "/events/1", body, bobTok); w.Code != 403 {
		t.Fatalf("foreign update got %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodDelete, "/events/1", "", bobTok); w.Code != 403 {
		t.Fatalf("foreign delete got %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodDelete, "/events/99", "", aliceTok); w.Code != 404 {
		t.Fatalf("missing delete got %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodDelete, "/events/1", "", aliceTok); w.Code != 200 {
		t.Fatalf("owner delete got %d", w.Code)
	}
}

func TestEvents_JoinLeaveFlow(t *testing.T) {
	deps := setupServerWithDeps(t)
	aliceTok := authToken(t, "alice", "user")
	bobTok := authToken(t, "bob", "user")

	pub := `{"title":"open","start_date":"2025-03-10T09:00:00Z","end_date":"2025-03-10T10:00:00Z","is_public":true}`
	if w := doReq(deps.s, http.MethodPost, "/events", pub, aliceTok); w.Code != 201 {
		t.Fatalf("create got %d", w.Code)
	}

	// Bob discovers it on the public board and joins, twice.
	if w := doReq(deps.s, http.MethodGet, "/events/public", "", bobTok); w.Code != 200 {
		t.Fatalf("public list got %d", w.Code)
	}
	for i := 0; i < 2; i++ {
		if w := doReq(deps.s, http.MethodPost, "/events/1/join", "", bobTok); w.Code != 200 {
			t.Fatalf("join %d got %d", i+1, w.Code)
		}
	}
	got := deps.er.items[1].Participants
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Fatalf("after joins: %v", got)
	}

	if w := doReq(deps.s, http.MethodDelete, "/events/1/join", "", bobTok); w.Code != 200 {
		t.Fatalf("leave got %d", w.Code)
	}
	if deps.er.items[1].HasParticipant("bob") {
		t.Fatalf("bob should be gone")
	}

	// The owner cannot leave.
	if w := doReq(deps.s, http.MethodDelete, "/events/1/join", "", aliceTok); w.Code != 403 {
		t.Fatalf("owner leave got %d", w.Code)
	}
}

func TestAdmin_UserManagementAndReset(t *testing.T) {
	deps := setupServerWithDeps(t)
	adminTok := authToken(t, "admin", "admin")
	aliceTok := authToken(t, "alice", "user")

	if w := doReq(deps.s, http.MethodPost, "/users", `{"username":"alice","password":"pw"}`, adminTok); w.Code != 201 {
		t.Fatalf("create user got %d body=%s", w.Code, w.Body.String())
	}
	if w := doReq(deps.s, http.MethodPost, "/users", `{"username":"alice","password":"pw2","role":"admin"}`, adminTok); w.Code != 409 {
		t.Fatalf("duplicate user got %d", w.Code)
	}
	if u := deps.ur.users["alice"]; u.Password != "pw" || u.Role != models.RoleUser {
		t.Fatalf("original account must survive a duplicate create: %+v", u)
	}
	if w := doReq(deps.s, http.MethodPost, "/users", `{"username":"eve","password":"pw"}`, aliceTok); w.Code != 403 {
		t.Fatalf("non-admin create got %d", w.Code)
	}

	if w := doReq(deps.s, http.MethodPut, "/users/alice/password", `{"password":"fresh"}`, aliceTok); w.Code != 200 {
		t.Fatalf("change own password got %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodPut, "/users/admin/password", `{"password":"fresh"}`, aliceTok); w.Code != 403 {
		t.Fatalf("change foreign password got %d", w.Code)
	}

	if w := doReq(deps.s, http.MethodPost, "/admin/reset", "", aliceTok); w.Code != 403 {
		t.Fatalf("non-admin reset got %d", w.Code)
	}
	if w := doReq(deps.s, http.MethodPost, "/admin/reset", "", adminTok); w.Code != 200 {
		t.Fatalf("reset got %d", w.Code)
	}
	names, _ := deps.ur.ListUsernames()
	if len(names) != 1 || names[0] != "admin" {
		t.Fatalf("after reset want only admin, got %v", names)
	}
	if len(deps.er.items) != 0 {
		t.Fatalf("after reset want zero events")
	}
}

func TestUsers_Listing(t *testing.T) {
	deps := setupServerWithDeps(t)
	adminTok := authToken(t, "admin", "admin")

	if w := doReq(deps.s, http.MethodPost, "/users", `{"username":"alice","password":"pw"}`, adminTok); w.Code != 201 {
		t.Fatalf("create user got %d", w.Code)
	}

	w := doReq(deps.s, http.MethodGet, "/users", "", adminTok)
	if w.Code != 200 {
		t.Fatalf("list users got %d", w.Code)
	}
	var names []string
	if err := json.Unmarshal(w.Body.Bytes(), &names); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(names) != 2 || names[0] != "admin" || names[1] != "alice" {
		t.Fatalf("want [admin alice], got %v", names)
	}
}
