package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	handlers "github.com/harutok/counts-service/internal/http/handlers/users"
	"github.com/harutok/counts-service/internal/storage"
	"github.com/harutok/counts-service/internal/types"
	"github.com/harutok/counts-service/internal/types/users"
)

// memDirectory implements storage.Storage for the user endpoints; counter
// methods are never reached by these handlers.
type memDirectory struct {
	byID   map[int64]users.User
	nextID int64
}

func newMemDirectory() *memDirectory {
	return &memDirectory{byID: make(map[int64]users.User), nextID: 1}
}

func (s *memDirectory) CreateUser(ctx context.Context, email string) (users.User, error) {
	for _, user := range s.byID {
		if user.Email == email {
			return users.User{}, storage.ErrDuplicateEmail
		}
	}
	user := users.User{ID: s.nextID, Email: email}
	s.byID[user.ID] = user
	s.nextID++
	return user, nil
}

func (s *memDirectory) GetUser(ctx context.Context, id int64, email string) (users.User, error) {
	if id > 0 {
		user, ok := s.byID[id]
		if !ok || (email != "" && user.Email != email) {
			return users.User{}, storage.ErrNotFound
		}
		return user, nil
	}
	for _, user := range s.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return users.User{}, storage.ErrNotFound
}

func (s *memDirectory) GetDayCounts(ctx context.Context, category types.Category, userID int64, day string) (map[string]int64, error) {
	return nil, storage.ErrNotFound
}

func (s *memDirectory) IncrementDayCount(ctx context.Context, category types.Category, userID int64, day, field string) error {
	return storage.ErrWriteFailed
}

func newTestMux(store storage.Storage) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", handlers.GetUser(store))
	mux.HandleFunc("POST /users", handlers.AddUser(store))
	return mux
}

func decodeUser(t *testing.T, w *httptest.ResponseRecorder) users.User {
	t.Helper()

	var envelope struct {
		Message string     `json:"message"`
		Data    users.User `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	if envelope.Message != "ok" {
		t.Fatalf("Expected message ok, got %q", envelope.Message)
	}
	return envelope.Data
}

func TestAddUser(t *testing.T) {
	mux := newTestMux(newMemDirectory())

	req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"email": "taro@example.com"}`))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	user := decodeUser(t, w)
	if user.ID == 0 || user.Email != "taro@example.com" {
		t.Fatalf("Unexpected user: %+v", user)
	}
}

func TestAddUser_DuplicateEmail(t *testing.T) {
	mux := newTestMux(newMemDirectory())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"email": "taro@example.com"}`))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		switch i {
		case 0:
			if w.Code != http.StatusOK {
				t.Fatalf("First registration: expected 200, got %d", w.Code)
			}
		case 1:
			if w.Code != http.StatusConflict {
				t.Fatalf("Second registration: expected 409, got %d: %s", w.Code, w.Body.String())
			}
		}
	}
}

func TestAddUser_InvalidRequests(t *testing.T) {
	mux := newTestMux(newMemDirectory())

	cases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing email", `{}`},
		{"not an email", `{"email": "taro"}`},
		{"malformed json", `{"email":`},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/users", strings.NewReader(tc.body))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", tc.name, w.Code, w.Body.String())
		}
	}
}

func TestGetUser_ByID(t *testing.T) {
	store := newMemDirectory()
	store.CreateUser(context.Background(), "taro@example.com")
	mux := newTestMux(store)

	req := httptest.NewRequest("GET", "/users?id=1", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if user := decodeUser(t, w); user.Email != "taro@example.com" {
		t.Fatalf("Unexpected user: %+v", user)
	}
}

func TestGetUser_ByEmail(t *testing.T) {
	store := newMemDirectory()
	store.CreateUser(context.Background(), "taro@example.com")
	mux := newTestMux(store)

	req := httptest.NewRequest("GET", "/users?email=taro@example.com", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetUser_BothFiltersMustMatch(t *testing.T) {
	store := newMemDirectory()
	store.CreateUser(context.Background(), "taro@example.com")
	store.CreateUser(context.Background(), "hana@example.com")
	mux := newTestMux(store)

	// id 1 with the other user's email matches no row
	req := httptest.NewRequest("GET", "/users?id=1&email=hana@example.com", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetUser_NotFound(t *testing.T) {
	mux := newTestMux(newMemDirectory())

	req := httptest.NewRequest("GET", "/users?id=99", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetUser_InvalidRequests(t *testing.T) {
	mux := newTestMux(newMemDirectory())

	cases := []struct {
		name   string
		target string
	}{
		{"no filter", "/users"},
		{"non-integer id", "/users?id=abc"},
		{"negative id", "/users?id=-1"},
		{"zero id", "/users?id=0"},
		{"bad email", "/users?email=taro"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("GET", tc.target, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", tc.name, w.Code, w.Body.String())
		}
	}
}
