// Package board holds the authoritative in-memory state of a task board session.
package board

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"proja/internal/models"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrEmptyComment    = errors.New("comment text is empty")
)

// DefaultAuthor signs comments added without an explicit author.
const DefaultAuthor = "Current user"

// Notifier receives notifications emitted by state-changing operations.
type Notifier interface {
	Notify(models.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(models.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n models.Notification) { f(n) }

// Labeler renders the human-readable parts of notifications and columns.
type Labeler interface {
	StatusLabel(models.Status) string
	TaskMoved(taskTitle string, s models.Status) (title, description string)
	CommentAdded(taskTitle string) (title, description string)
}

// Snapshot is the seed state of a board.
type Snapshot struct {
	Projects []models.Project
	Tasks    []models.Task
}

// Column is one status column of the board.
type Column struct {
	Status models.Status `json:"status"`
	Label  string        `json:"label"`
	Tasks  []models.Task `json:"tasks"`
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets where notifications are delivered.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithLabeler sets the label renderer.
func WithLabeler(l Labeler) Option {
	return func(s *Store) { s.labeler = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDefaultAuthor overrides the author used for anonymous comments.
func WithDefaultAuthor(name string) Option {
	return func(s *Store) {
		if strings.TrimSpace(name) != "" {
			s.defaultAuthor = strings.TrimSpace(name)
		}
	}
}

// Store owns tasks and projects. All methods are safe for concurrent use;
// each operation touches a single task and is applied atomically.
// Notifications are delivered outside mu, in the order the mutations were applied.
type Store struct {
	mu       sync.RWMutex
	notifyMu sync.Mutex
	tasks    []models.Task
	index    map[string]int
	projects []models.Project

	notifier      Notifier
	labeler       Labeler
	now           func() time.Time
	defaultAuthor string
}

// New validates the snapshot and builds a Store from a private copy of it.
func New(snap Snapshot, opts ...Option) (*Store, error) {
	s := &Store{
		index:         make(map[string]int, len(snap.Tasks)),
		notifier:      NotifierFunc(func(models.Notification) {}),
		labeler:       plainLabeler{},
		now:           time.Now,
		defaultAuthor: DefaultAuthor,
	}
	for _, opt := range opts {
		opt(s)
	}

	projectIDs := make(map[string]struct{}, len(snap.Projects))
	for _, p := range snap.Projects {
		if p.ID == "" {
			return nil, fmt.Errorf("project %q has an empty id", p.Name)
		}
		if _, dup := projectIDs[p.ID]; dup {
			return nil, fmt.Errorf("duplicate project id %q", p.ID)
		}
		projectIDs[p.ID] = struct{}{}
		s.projects = append(s.projects, p)
	}

	for _, t := range snap.Tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("task %q has an empty id", t.Title)
		}
		if _, dup := s.index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %q", t.ID)
		}
		if !t.Status.Valid() {
			return nil, fmt.Errorf("task %q: invalid status %q", t.ID, t.Status)
		}
		if !t.Priority.Valid() {
			return nil, fmt.Errorf("task %q: invalid priority %q", t.ID, t.Priority)
		}
		if _, ok := projectIDs[t.ProjectID]; !ok {
			return nil, fmt.Errorf("task %q: %w: %q", t.ID, ErrProjectNotFound, t.ProjectID)
		}
		s.index[t.ID] = len(s.tasks)
		s.tasks = append(s.tasks, t.Clone())
	}
	return s, nil
}

// MoveTask puts the task into column status and resets its time-in-status label.
// Moving into the current column is allowed and still counts as a move.
// An unknown id leaves the board untouched and returns ErrTaskNotFound.
func (s *Store) MoveTask(taskID string, status models.Status) (models.Task, error) {
	mustValid(status)

	s.mu.Lock()
	i, ok := s.index[taskID]
	if !ok {
		s.mu.Unlock()
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	now := s.now()
	t := &s.tasks[i]
	t.Status = status
	t.TimeInStatus = models.JustChanged
	t.StatusChangedAt = now
	out := t.Clone()
	s.handOff()

	title, desc := s.labeler.TaskMoved(out.Title, status)
	s.deliver(models.Notification{
		Kind:        models.NotificationTaskMoved,
		TaskID:      out.ID,
		Title:       title,
		Description: desc,
		Status:      status,
		CreatedAt:   now,
	})
	return out, nil
}

// AddComment appends a comment to the task. Blank text is rejected with
// ErrEmptyComment and an unknown id with ErrTaskNotFound; neither changes state.
func (s *Store) AddComment(taskID, author, text string) (models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, ErrEmptyComment
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = s.defaultAuthor
	}

	s.mu.Lock()
	i, ok := s.index[taskID]
	if !ok {
		s.mu.Unlock()
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	now := s.now()
	t := &s.tasks[i]
	t.Comments = append(t.Comments, models.Comment{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		Timestamp: now.Format("15:04"),
		CreatedAt: now,
	})
	out := t.Clone()
	s.handOff()

	title, desc := s.labeler.CommentAdded(out.Title)
	s.deliver(models.Notification{
		Kind:        models.NotificationCommentAdded,
		TaskID:      out.ID,
		Title:       title,
		Description: desc,
		CreatedAt:   now,
	})
	return out, nil
}

// TasksByStatus returns the tasks in column status in board order.
// An empty projectID disables project filtering.
func (s *Store) TasksByStatus(status models.Status, projectID string) []models.Task {
	mustValid(status)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasksByStatusLocked(status, projectID)
}

// Board returns every column, in column order, filtered by projectID when set.
// All columns come from the same state, so each task appears exactly once.
func (s *Store) Board(projectID string) []Column {
	statuses := models.Statuses()
	cols := make([]Column, 0, len(statuses))

	s.mu.RLock()
	for _, st := range statuses {
		cols = append(cols, Column{
			Status: st,
			Tasks:  s.tasksByStatusLocked(st, projectID),
		})
	}
	s.mu.RUnlock()

	for i := range cols {
		cols[i].Label = s.labeler.StatusLabel(cols[i].Status)
	}
	return cols
}

func (s *Store) tasksByStatusLocked(status models.Status, projectID string) []models.Task {
	out := []models.Task{}
	for _, t := range s.tasks {
		if t.Status != status {
			continue
		}
		if projectID != "" && t.ProjectID != projectID {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

// Task returns a copy of a single task.
func (s *Store) Task(id string) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.tasks[i].Clone(), nil
}

// Tasks returns copies of all tasks in board order.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

// Projects returns the projects in seed order.
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Project{}, s.projects...)
}

// ActiveProject resolves the selected project against the store's projects.
func (s *Store) ActiveProject(selectedID string) (models.Project, bool) {
	return ActiveProject(s.Projects(), selectedID)
}

// ActiveProject returns the project with id selectedID, or the first project
// when nothing matches. It reports false only for an empty list.
func ActiveProject(projects []models.Project, selectedID string) (models.Project, bool) {
	if len(projects) == 0 {
		return models.Project{}, false
	}
	for _, p := range projects {
		if p.ID == selectedID {
			return p, true
		}
	}
	return projects[0], true
}

// handOff releases the write lock while holding the delivery lock, so the next
// mutation cannot notify before this one does. Callers must hold s.mu.
func (s *Store) handOff() {
	s.notifyMu.Lock()
	s.mu.Unlock()
}

// deliver sends n and releases the delivery lock taken by handOff.
func (s *Store) deliver(n models.Notification) {
	defer s.notifyMu.Unlock()
	s.notifier.Notify(n)
}

func mustValid(s models.Status) {
	if !s.Valid() {
		panic(fmt.Sprintf("board: status %q is not a board column", s))
	}
}

type plainLabeler struct{}

func (plainLabeler) StatusLabel(s models.Status) string { return string(s) }

func (plainLabeler) TaskMoved(title string, s models.Status) (string, string) {
	return "Status updated", fmt.Sprintf("Task %q moved to %q", title, s)
}

func (plainLabeler) CommentAdded(string) (string, string) {
	return "Comment added", "Your comment was added to the task"
}
