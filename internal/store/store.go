// Package store owns the task collection.
//
// A Store is the only writer of the collection. Every mutation that changes
// the collection is followed, before the call returns, by a snapshot save to
// the configured persist.Backend and then by change notifications. Save and
// load failures are logged and never returned: the in-memory collection is
// the source of truth for the running session.
//
// A Store is not safe for concurrent use. Callers that share one between
// goroutines serialize access themselves.
package store

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/todolist-go/internal/persist"
	"github.com/nibzard/todolist-go/internal/todo"
	"github.com/nibzard/todolist-go/internal/view"
)

// ChangeKind names the operation behind a Change.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeToggled ChangeKind = "toggled"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
	ChangeLoaded  ChangeKind = "loaded"
)

// Change describes one applied change. TaskID is empty for ChangeLoaded.
type Change struct {
	Kind    ChangeKind
	TaskID  string
	Version uint64
}

// Errors returned by Resolve.
var (
	ErrNotFound  = errors.New("no task matches")
	ErrAmbiguous = errors.New("id prefix is ambiguous")
)

// maxIDAttempts bounds redraws when the generator repeats an existing id.
const maxIDAttempts = 8

type subscriber struct {
	id int
	fn func(Change)
}

// Store is the single owner of the task collection.
type Store struct {
	backend persist.Backend
	logger  *log.Logger
	now     func() time.Time
	newID   func() string

	tasks      []todo.Task
	version    uint64
	persistErr error
	loadErr    error

	subs    []subscriber
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for persistence errors and diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used to stamp new tasks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the id source for new tasks.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New returns an empty store saving to backend. Call Load to read the
// previous snapshot.
func New(backend persist.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  log.New(io.Discard),
		now:     time.Now,
		newID:   uuid.NewString,
		tasks:   []todo.Task{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the stored snapshot. A missing snapshot
// leaves the collection as it is; so does a snapshot that fails to load or
// decode, after logging the error.
func (s *Store) Load(ctx context.Context) {
	s.loadErr = nil
	data, err := s.backend.LoadSnapshot(ctx)
	if err != nil {
		if errors.Is(err, persist.ErrNoSnapshot) {
			s.logger.Info("no snapshot found, starting empty", "backend", s.backend.Describe())
			return
		}
		s.loadErr = err
		s.logger.Error("load snapshot", "backend", s.backend.Describe(), "err", err)
		return
	}

	tasks, err := todo.Decode(data)
	if err != nil {
		s.loadErr = err
		s.logger.Error("decode snapshot", "backend", s.backend.Describe(), "err", err)
		return
	}

	s.tasks = tasks
	s.version++
	s.logger.Debug("snapshot loaded", "tasks", len(tasks), "version", s.version)
	s.notify(Change{Kind: ChangeLoaded, Version: s.version})
}

// Create appends a new incomplete task built from d and returns it. The
// title is stored as given; callers validate it with todo.ValidateTitle.
func (s *Store) Create(ctx context.Context, d todo.Draft) todo.Task {
	d = d.Normalize()
	t := todo.Task{
		ID:          s.freshID(),
		Title:       d.Title,
		DateCreated: s.now().UTC(),
		DueDate:     d.DueDate,
		Priority:    d.Priority,
		Category:    d.Category,
	}
	s.tasks = append(s.tasks, t)
	s.commit(ctx, ChangeCreated, t.ID)
	return t.Clone()
}

// Toggle flips the completion state of task id. Unknown ids are ignored.
func (s *Store) Toggle(ctx context.Context, id string) {
	i := s.index(id)
	if i < 0 {
		s.logger.Debug("toggle: no such task", "id", id)
		return
	}
	s.tasks[i].IsCompleted = !s.tasks[i].IsCompleted
	s.commit(ctx, ChangeToggled, id)
}

// Update overwrites the editable fields of task id with d. The id,
// completion state and creation time are kept. Unknown ids are ignored.
func (s *Store) Update(ctx context.Context, id string, d todo.Draft) {
	i := s.index(id)
	if i < 0 {
		s.logger.Debug("update: no such task", "id", id)
		return
	}
	d = d.Normalize()
	t := &s.tasks[i]
	t.Title = d.Title
	t.DueDate = d.DueDate
	t.Priority = d.Priority
	t.Category = d.Category
	s.commit(ctx, ChangeUpdated, id)
}

// Delete removes every task with the given id. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) {
	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t todo.Task) bool {
		return t.ID == id
	})
	if len(s.tasks) == before {
		s.logger.Debug("delete: no such task", "id", id)
		return
	}
	s.commit(ctx, ChangeDeleted, id)
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []todo.Task {
	return todo.CloneTasks(s.tasks)
}

// Get returns a copy of task id.
func (s *Store) Get(id string) (todo.Task, bool) {
	i := s.index(id)
	if i < 0 {
		return todo.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Categories returns the distinct categories, sorted.
func (s *Store) Categories() []string {
	return view.Categories(s.tasks)
}

// View derives the displayed list from the current collection.
func (s *Store) View(p view.Params) []todo.Task {
	return view.Derive(s.tasks, p)
}

// Version increases by one with every applied change.
func (s *Store) Version() uint64 {
	return s.version
}

// PersistErr returns the error of the most recent save, or nil if it
// succeeded.
func (s *Store) PersistErr() error {
	return s.persistErr
}

// LoadErr returns the error of the most recent Load, or nil if it succeeded
// or found no snapshot.
func (s *Store) LoadErr() error {
	return s.loadErr
}

// Backend returns the persistence backend.
func (s *Store) Backend() persist.Backend {
	return s.backend
}

// Resolve maps a full id or a unique id prefix to a task id.
func (s *Store) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNotFound
	}
	if s.index(ref) >= 0 {
		return ref, nil
	}
	var match string
	for _, t := range s.tasks {
		if !strings.HasPrefix(t.ID, ref) {
			continue
		}
		if match != "" && match != t.ID {
			return "", ErrAmbiguous
		}
		match = t.ID
	}
	if match == "" {
		return "", ErrNotFound
	}
	return match, nil
}

// Subscribe registers fn to receive every change after it has been applied
// and persisted. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool {
			return sub.id == id
		})
	}
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t todo.Task) bool {
		return t.ID == id
	})
}

func (s *Store) freshID() string {
	for range maxIDAttempts {
		id := s.newID()
		if id != "" && s.index(id) < 0 {
			return id
		}
	}
	for {
		id := uuid.NewString()
		if s.index(id) < 0 {
			return id
		}
	}
}

func (s *Store) commit(ctx context.Context, kind ChangeKind, id string) {
	s.version++
	s.persist(ctx)
	s.notify(Change{Kind: kind, TaskID: id, Version: s.version})
}

// persist saves the whole collection as one snapshot.
func (s *Store) persist(ctx context.Context) {
	data, err := todo.Encode(s.tasks)
	if err != nil {
		s.persistErr = err
		s.logger.Error("encode snapshot", "err", err)
		return
	}
	if err := s.backend.SaveSnapshot(ctx, data); err != nil {
		s.persistErr = err
		s.logger.Error("save snapshot", "backend", s.backend.Describe(), "err", err)
		return
	}
	s.persistErr = nil
	s.logger.Debug("snapshot saved", "tasks", len(s.tasks), "version", s.version)
}

func (s *Store) notify(c Change) {
	for _, sub := range slices.Clone(s.subs) {
		sub.fn(c)
	}
}
