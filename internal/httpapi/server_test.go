package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/todolist-go/internal/persist"
	"github.com/nibzard/todolist-go/internal/store"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/view"
)

func newTestServer(t *testing.T, opts Options) (*Server, *store.Store, *persist.MemoryBackend) {
	t.Helper()
	backend := persist.NewMemory()
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	n := 0
	s := store.New(backend,
		store.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		}),
	)
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return New(s, opts), s, backend
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestCreateTask(t *testing.T) {
	srv, s, _ := newTestServer(t, Options{})
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/tasks",
		`{"title":"  Buy milk ","due_date":"2024-05-03","priority":"high","category":"Groceries"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	got := decode[todo.Task](t, rec)
	if got.ID != "task-1" || got.Title != "Buy milk" || got.Priority != todo.PriorityHigh || got.Category != "Groceries" {
		t.Errorf("created = %+v", got)
	}
	want := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	if got.DueDate == nil || !got.DueDate.Equal(want) {
		t.Errorf("due = %v, want %v", got.DueDate, want)
	}
	if s.Len() != 1 {
		t.Errorf("store len = %d", s.Len())
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	srv, _, _ := newTestServer(t, Options{DefaultPriority: todo.PriorityLow})
	rec := do(t, srv.Handler(), http.MethodPost, "/api/tasks", `{"title":"Walk"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode[todo.Task](t, rec)
	if got.Priority != todo.PriorityLow || got.Category != todo.DefaultCategory || got.DueDate != nil {
		t.Errorf("created = %+v", got)
	}
}

func TestCreateTaskRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty title", `{"title":"   "}`},
		{"bad priority", `{"title":"x","priority":"urgent"}`},
		{"bad due date", `{"title":"x","due_date":"tomorrow"}`},
		{"unknown field", `{"title":"x","colour":"red"}`},
		{"malformed", `{"title":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, s, backend := newTestServer(t, Options{})
			rec := do(t, srv.Handler(), http.MethodPost, "/api/tasks", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			resp := decode[errorResponse](t, rec)
			if resp.Error == "" {
				t.Error("missing error message")
			}
			if s.Len() != 0 || backend.Saves() != 0 {
				t.Errorf("store changed: len %d saves %d", s.Len(), backend.Saves())
			}
		})
	}
}

func TestListTasks(t *testing.T) {
	srv, s, _ := newTestServer(t, Options{DefaultSort: view.SortAlphabetical})
	ctx := context.Background()
	s.Create(ctx, todo.Draft{Title: "Pay rent", Priority: todo.PriorityHigh, Category: "Home"})
	s.Create(ctx, todo.Draft{Title: "Buy milk", Priority: todo.PriorityLow, Category: "Groceries"})
	s.Create(ctx, todo.Draft{Title: "Call mom", Priority: todo.PriorityMedium, Category: "Home"})

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"default sort", "/api/tasks", []string{"Buy milk", "Call mom", "Pay rent"}},
		{"priority", "/api/tasks?sort=priority", []string{"Pay rent", "Call mom", "Buy milk"}},
		{"date created", "/api/tasks?sort=date-created", []string{"Call mom", "Buy milk", "Pay rent"}},
		{"category", "/api/tasks?category=Home", []string{"Call mom", "Pay rent"}},
		{"empty category", "/api/tasks?category=", nil},
		{"search", "/api/tasks?search=MILK", []string{"Buy milk"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv.Handler(), http.MethodGet, tt.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			resp := decode[tasksResponse](t, rec)
			var titles []string
			for _, task := range resp.Tasks {
				titles = append(titles, task.Title)
			}
			if strings.Join(titles, "|") != strings.Join(tt.want, "|") {
				t.Errorf("titles = %v, want %v", titles, tt.want)
			}
			if resp.Version != s.Version() {
				t.Errorf("version = %d, want %d", resp.Version, s.Version())
			}
		})
	}

	rec := do(t, srv.Handler(), http.MethodGet, "/api/tasks?sort=random", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad sort status = %d", rec.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv, s, backend := newTestServer(t, Options{})
	h := srv.Handler()
	ctx := context.Background()
	task := s.Create(ctx, todo.Draft{Title: "Draft report"})

	rec := do(t, h, http.MethodGet, "/api/tasks/"+task.ID, "")
	if rec.Code != http.StatusOK || decode[todo.Task](t, rec).Title != "Draft report" {
		t.Fatalf("get = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodPost, "/api/tasks/"+task.ID+"/toggle", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("toggle status = %d", rec.Code)
	}
	if got, _ := s.Get(task.ID); !got.IsCompleted {
		t.Error("toggle did not complete the task")
	}

	rec = do(t, h, http.MethodPut, "/api/tasks/"+task.ID,
		`{"title":"Final report","priority":"Low","category":"Work"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body)
	}
	got, _ := s.Get(task.ID)
	if got.Title != "Final report" || got.Priority != todo.PriorityLow || got.Category != "Work" || !got.IsCompleted {
		t.Errorf("updated = %+v", got)
	}
	if !got.DateCreated.Equal(task.DateCreated) {
		t.Error("update changed date created")
	}

	rec = do(t, h, http.MethodDelete, "/api/tasks/"+task.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if s.Len() != 0 {
		t.Errorf("len after delete = %d", s.Len())
	}
	saves := backend.Saves()

	for _, req := range []struct{ method, target, body string }{
		{http.MethodGet, "/api/tasks/" + task.ID, ""},
		{http.MethodPost, "/api/tasks/" + task.ID + "/toggle", ""},
		{http.MethodPut, "/api/tasks/" + task.ID, `{"title":"x"}`},
		{http.MethodDelete, "/api/tasks/" + task.ID, ""},
	} {
		rec := do(t, h, req.method, req.target, req.body)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s = %d, want 404", req.method, req.target, rec.Code)
		}
	}
	if backend.Saves() != saves {
		t.Errorf("misses persisted: %d saves, want %d", backend.Saves(), saves)
	}
}

func TestCategories(t *testing.T) {
	srv, s, _ := newTestServer(t, Options{})
	ctx := context.Background()
	s.Create(ctx, todo.Draft{Title: "a", Category: "Work"})
	s.Create(ctx, todo.Draft{Title: "b", Category: "Home"})
	s.Create(ctx, todo.Draft{Title: "c", Category: "Work"})

	rec := do(t, srv.Handler(), http.MethodGet, "/api/categories", "")
	resp := decode[categoriesResponse](t, rec)
	if strings.Join(resp.Categories, ",") != "Home,Work" {
		t.Errorf("categories = %v", resp.Categories)
	}
}

func TestHealthz(t *testing.T) {
	srv, s, backend := newTestServer(t, Options{})
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "")
	resp := decode[healthResponse](t, rec)
	if rec.Code != http.StatusOK || resp.Status != "ok" || resp.Backend != "memory" {
		t.Errorf("healthz = %d %+v", rec.Code, resp)
	}

	backend.SetSaveError(errors.New("disk full"))
	s.Create(context.Background(), todo.Draft{Title: "x"})
	resp = decode[healthResponse](t, do(t, srv.Handler(), http.MethodGet, "/healthz", ""))
	if resp.Status != "degraded" || resp.Tasks != 1 {
		t.Errorf("healthz after failed save = %+v", resp)
	}
}

func TestCORS(t *testing.T) {
	srv, _, _ := newTestServer(t, Options{CORSOrigins: []string{"http://localhost:5173"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected allow origin %q", got)
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv, _, _ := newTestServer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("ListenAndServe: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
