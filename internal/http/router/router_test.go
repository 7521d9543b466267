package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/buran83/makechat/internal/domain"
	"github.com/buran83/makechat/internal/http/handler"
	"github.com/buran83/makechat/internal/repository"
	"github.com/buran83/makechat/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	srv  *httptest.Server
	db   *gorm.DB
	auth *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Room{}, &domain.Member{}, &domain.Token{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	users := repository.NewUserRepository(db)
	rooms := repository.NewRoomRepository(db)
	tokens := repository.NewTokenRepository(db)
	sessions := repository.NewSessionStore(client, time.Hour)

	auth := service.NewAuthService(users, sessions, tokens, testSecret)
	roomSvc := service.NewRoomService(rooms)
	tokenSvc := service.NewTokenService(tokens)

	h := NewRouter(Dependencies{
		AuthHandler:      handler.NewAuthHandler(auth, time.Hour),
		RoomHandler:      handler.NewRoomHandler(roomSvc, 10),
		TokenHandler:     handler.NewTokenHandler(tokenSvc, 10),
		UserHandler:      handler.NewUserHandler(users, 10),
		DashboardHandler: handler.NewDashboardHandler(),
		Resolver:         auth,
		AuthRateLimitRPM: 1000,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, db: db, auth: auth}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, mutate func(*http.Request)) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if mutate != nil {
		mutate(req)
	}
	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func (ts *testServer) register(t *testing.T, username, email, password string) {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/register", map[string]string{
		"email":     email,
		"username":  username,
		"password1": password,
		"password2": password,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: got %d", username, resp.StatusCode)
	}
}

func (ts *testServer) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: got %d", username, resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			if c.Path != "/" {
				t.Fatalf("session cookie path = %q, want /", c.Path)
			}
			return c
		}
	}
	t.Fatal("login response has no session cookie")
	return nil
}

func (ts *testServer) promote(t *testing.T, username string) {
	t.Helper()
	res := ts.db.Model(&domain.User{}).Where("username = ?", username).Update("is_superuser", true)
	if res.Error != nil || res.RowsAffected != 1 {
		t.Fatalf("promote %s: %v (%d rows)", username, res.Error, res.RowsAffected)
	}
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(c) }
}

func TestRegisterLoginEmptyRoomsEnvelope(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "alice@example.com", "secret123")
	cookie := ts.login(t, "alice", "secret123")

	resp := ts.do(t, http.MethodGet, "/api/rooms", nil, withCookie(cookie))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rooms: got %d", resp.StatusCode)
	}
	var envelope struct {
		Status     string            `json:"status"`
		Items      []json.RawMessage `json:"items"`
		NextPage   *string           `json:"next_page"`
		PrevPage   *string           `json:"prev_page"`
		TotalPages string            `json:"total_pages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Status != "ok" {
		t.Fatalf("status = %q", envelope.Status)
	}
	if envelope.Items == nil || len(envelope.Items) != 0 {
		t.Fatalf("items = %v, want empty array", envelope.Items)
	}
	if envelope.NextPage != nil || envelope.PrevPage != nil {
		t.Fatalf("page links must be null: next=%v prev=%v", envelope.NextPage, envelope.PrevPage)
	}
	if envelope.TotalPages != "0" {
		t.Fatalf("total_pages = %q, want 0", envelope.TotalPages)
	}
}

func TestLoginFailuresAreGeneric(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "alice@example.com", "secret123")

	wrongPass := ts.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "wrong",
	}, nil)
	unknownUser := ts.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": "nobody", "password": "wrong",
	}, nil)

	if wrongPass.StatusCode != http.StatusUnauthorized || unknownUser.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPass.StatusCode, unknownUser.StatusCode)
	}
	b1 := decodeBody(t, wrongPass)
	b2 := decodeBody(t, unknownUser)
	if b1["description"] != "Invalid username or password." || b1["description"] != b2["description"] {
		t.Fatalf("failure bodies differ: %v vs %v", b1, b2)
	}
}

func TestLoginMissingParameter(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodPost, "/api/login", map[string]string{"username": "alice"}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["title"] != "Missing parameter" {
		t.Fatalf("title = %v", body["title"])
	}
	if body["description"] != "The password parameter is required." {
		t.Fatalf("description = %v", body["description"])
	}
}

func TestRoomVisibilityByRole(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "root", "root@example.com", "secret123")
	ts.register(t, "bob", "bob@example.com", "secret123")
	ts.promote(t, "root")
	adminCookie := ts.login(t, "root", "secret123")
	bobCookie := ts.login(t, "bob", "secret123")

	create := ts.do(t, http.MethodPost, "/api/rooms", map[string]any{
		"name": "room1", "is_visible": false,
	}, withCookie(adminCookie))
	if create.StatusCode != http.StatusCreated {
		t.Fatalf("create room: got %d", create.StatusCode)
	}

	visible := ts.do(t, http.MethodPost, "/api/rooms", map[string]any{
		"name": "room2",
	}, withCookie(adminCookie))
	if visible.StatusCode != http.StatusCreated {
		t.Fatalf("create visible room: got %d", visible.StatusCode)
	}

	adminList := decodeBody(t, ts.do(t, http.MethodGet, "/api/rooms", nil, withCookie(adminCookie)))
	if n := len(adminList["items"].([]any)); n != 2 {
		t.Fatalf("admin sees %d rooms, want 2", n)
	}
	bobList := decodeBody(t, ts.do(t, http.MethodGet, "/api/rooms", nil, withCookie(bobCookie)))
	items := bobList["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("non-admin sees %d rooms, want 1", len(items))
	}
	if name := items[0].(map[string]any)["name"]; name != "room2" {
		t.Fatalf("non-admin sees %v, want room2", name)
	}
}

func TestRoomCreateRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "bob", "bob@example.com", "secret123")
	cookie := ts.login(t, "bob", "secret123")

	resp := ts.do(t, http.MethodPost, "/api/rooms", map[string]any{"name": "room1"}, withCookie(cookie))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("got %d, want 403", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["description"] != "Admin required." {
		t.Fatalf("description = %v", body["description"])
	}
}

func TestRoomUpdateOwnership(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "root", "root@example.com", "secret123")
	ts.register(t, "bob", "bob@example.com", "secret123")
	ts.promote(t, "root")
	adminCookie := ts.login(t, "root", "secret123")
	bobCookie := ts.login(t, "bob", "secret123")

	create := ts.do(t, http.MethodPost, "/api/rooms", map[string]any{"name": "room1"}, withCookie(adminCookie))
	created := decodeBody(t, create)
	roomID := int(created["id"].(float64))

	denied := ts.do(t, http.MethodPatch, fmt.Sprintf("/api/rooms/%d", roomID),
		map[string]any{"name": "hijacked"}, withCookie(bobCookie))
	if denied.StatusCode != http.StatusBadRequest {
		t.Fatalf("non-owner patch: got %d, want 400", denied.StatusCode)
	}
	if body := decodeBody(t, denied); body["description"] != "You are not owner of this room." {
		t.Fatalf("description = %v", body["description"])
	}

	renamed := ts.do(t, http.MethodPatch, fmt.Sprintf("/api/rooms/%d", roomID),
		map[string]any{"name": "renamed"}, withCookie(adminCookie))
	if renamed.StatusCode != http.StatusOK {
		t.Fatalf("owner patch: got %d", renamed.StatusCode)
	}
	if body := decodeBody(t, renamed); body["name"] != "renamed" {
		t.Fatalf("name = %v", body["name"])
	}

	missing := ts.do(t, http.MethodPatch, "/api/rooms/9999",
		map[string]any{"name": "ghost"}, withCookie(adminCookie))
	if missing.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing room: got %d, want 400", missing.StatusCode)
	}
	if body := decodeBody(t, missing); body["description"] != "Room does not exist." {
		t.Fatalf("description = %v", body["description"])
	}
}

func TestUsersEndpointRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "root", "root@example.com", "secret123")
	ts.register(t, "bob", "bob@example.com", "secret123")
	ts.promote(t, "root")

	bobCookie := ts.login(t, "bob", "secret123")
	forbidden := ts.do(t, http.MethodGet, "/api/users", nil, withCookie(bobCookie))
	if forbidden.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin: got %d, want 403", forbidden.StatusCode)
	}

	adminCookie := ts.login(t, "root", "secret123")
	allowed := ts.do(t, http.MethodGet, "/api/users", nil, withCookie(adminCookie))
	if allowed.StatusCode != http.StatusOK {
		t.Fatalf("admin: got %d, want 200", allowed.StatusCode)
	}
	body := decodeBody(t, allowed)
	items := body["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("admin sees %d users, want 2", len(items))
	}
	for _, item := range items {
		if _, leaked := item.(map[string]any)["password"]; leaked {
			t.Fatal("password digest leaked in user listing")
		}
	}
}

func TestTokenLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "alice@example.com", "secret123")
	cookie := ts.login(t, "alice", "secret123")

	created := ts.do(t, http.MethodPost, "/api/tokens", map[string]string{"name": "ci"}, withCookie(cookie))
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("create token: got %d", created.StatusCode)
	}
	doc := decodeBody(t, created)
	value, _ := doc["value"].(string)
	if len(value) != 32 {
		t.Fatalf("token value %q, want 32 hex chars", value)
	}

	// The token authenticates without any cookie.
	me := ts.do(t, http.MethodGet, "/api/me", nil, func(r *http.Request) {
		r.Header.Set("X-Auth-Token", value)
	})
	if me.StatusCode != http.StatusOK {
		t.Fatalf("me via token: got %d", me.StatusCode)
	}
	if body := decodeBody(t, me); body["username"] != "alice" {
		t.Fatalf("me = %v", body["username"])
	}

	// Cookie sessions are not accepted on the token-only endpoint.
	meCookie := ts.do(t, http.MethodGet, "/api/me", nil, withCookie(cookie))
	if meCookie.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me via cookie: got %d, want 401", meCookie.StatusCode)
	}

	list := decodeBody(t, ts.do(t, http.MethodGet, "/api/tokens", nil, withCookie(cookie)))
	items := list["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("token list has %d items, want 1", len(items))
	}
	tokenID := int(items[0].(map[string]any)["id"].(float64))

	deleted := ts.do(t, http.MethodDelete, fmt.Sprintf("/api/tokens/%d", tokenID), nil, withCookie(cookie))
	if deleted.StatusCode != http.StatusOK {
		t.Fatalf("delete token: got %d", deleted.StatusCode)
	}
	after := ts.do(t, http.MethodGet, "/api/me", nil, func(r *http.Request) {
		r.Header.Set("X-Auth-Token", value)
	})
	if after.StatusCode != http.StatusUnauthorized {
		t.Fatalf("revoked token still resolves: got %d", after.StatusCode)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "alice@example.com", "secret123")
	cookie := ts.login(t, "alice", "secret123")

	out := ts.do(t, http.MethodGet, "/api/logout", nil, withCookie(cookie))
	if out.StatusCode != http.StatusOK {
		t.Fatalf("logout: got %d", out.StatusCode)
	}

	ping := ts.do(t, http.MethodGet, "/api/ping", nil, withCookie(cookie))
	if ping.StatusCode != http.StatusUnauthorized {
		t.Fatalf("ping after logout: got %d, want 401", ping.StatusCode)
	}
}

func TestDashboardAdminItem(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "root", "root@example.com", "secret123")
	ts.register(t, "bob", "bob@example.com", "secret123")
	ts.promote(t, "root")

	bobItems := decodeBody(t, ts.do(t, http.MethodGet, "/api/dashboard", nil,
		withCookie(ts.login(t, "bob", "secret123"))))["items"].([]any)
	if len(bobItems) != 5 {
		t.Fatalf("user menu has %d items, want 5", len(bobItems))
	}

	rootItems := decodeBody(t, ts.do(t, http.MethodGet, "/api/dashboard", nil,
		withCookie(ts.login(t, "root", "secret123"))))["items"].([]any)
	if len(rootItems) != 6 {
		t.Fatalf("admin menu has %d items, want 6", len(rootItems))
	}
	users := rootItems[3].(map[string]any)
	if users["name"] != "users" || users["_id"] != float64(4) {
		t.Fatalf("admin item misplaced: %v", users)
	}
}

func TestContentNegotiationOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/login", bytes.NewReader([]byte(`{}`)))
	resp, err := ts.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotAcceptable {
		t.Fatalf("missing content type: got %d, want 406", resp.StatusCode)
	}
}

func TestHealthLive(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/health/live", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got %d", resp.StatusCode)
	}
}
