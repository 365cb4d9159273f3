package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Status is the board column a task currently occupies.
type Status string

const (
	StatusOpen     Status = "open"
	StatusReview   Status = "review"
	StatusProgress Status = "progress"
	StatusTesting  Status = "testing"
	StatusDone     Status = "done"
)

// statusOrder lists the board columns from left to right.
var statusOrder = []Status{StatusOpen, StatusReview, StatusProgress, StatusTesting, StatusDone}

// Statuses returns the supported statuses in column order.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// Valid reports whether s is one of the board columns.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusReview, StatusProgress, StatusTesting, StatusDone:
		return true
	default:
		return false
	}
}

// ParseStatus converts raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid status: %q", raw)
	}
	return s, nil
}

// Priority is an optional importance marker. The empty value means unset.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is unset or one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// JustChanged is the time-in-status label of a task that was moved a moment ago.
const JustChanged = "just now"

// Person is someone a task is assigned to.
type Person struct {
	Name     string `json:"name" yaml:"name"`
	Initials string `json:"initials" yaml:"initials,omitempty"`
	Avatar   string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Initials derives display initials from a full name, e.g. "Anna Smirnova" -> "AS".
func Initials(name string) string {
	var b strings.Builder
	n := 0
	for _, part := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(part)
		if r == utf8.RuneError {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if n++; n == 3 {
			break
		}
	}
	return b.String()
}

// Comment is a timestamped note attached to a task.
type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	Author    string    `json:"author" yaml:"author"`
	Text      string    `json:"text" yaml:"text"`
	Timestamp string    `json:"timestamp" yaml:"timestamp"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at,omitempty"`
}

// Project groups tasks under a manager.
type Project struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Manager      string    `json:"manager" yaml:"manager"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	Participants int       `json:"participants" yaml:"participants"`
	Description  string    `json:"description" yaml:"description"`
}

// Task represents a single card on the board.
type Task struct {
	ID              string    `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	Description     string    `json:"description" yaml:"description"`
	Status          Status    `json:"status" yaml:"status"`
	Assignees       []Person  `json:"assignees" yaml:"assignees"`
	ProjectID       string    `json:"project_id" yaml:"project"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	TimeInStatus    string    `json:"time_in_status" yaml:"time_in_status"`
	StatusChangedAt time.Time `json:"status_changed_at,omitempty" yaml:"-"`
	Priority        Priority  `json:"priority,omitempty" yaml:"priority,omitempty"`
	Comments        []Comment `json:"comments" yaml:"comments"`
}

// Clone returns a deep copy so callers cannot alias store-owned slices.
func (t Task) Clone() Task {
	out := t
	out.Assignees = append([]Person(nil), t.Assignees...)
	out.Comments = append([]Comment(nil), t.Comments...)
	if out.Assignees == nil {
		out.Assignees = []Person{}
	}
	if out.Comments == nil {
		out.Comments = []Comment{}
	}
	return out
}

// NotificationKind tells the presentation layer what happened.
type NotificationKind string

const (
	NotificationTaskMoved    NotificationKind = "task_moved"
	NotificationCommentAdded NotificationKind = "comment_added"
)

// Notification describes a state change worth surfacing to the user, e.g. as a toast.
type Notification struct {
	Kind        NotificationKind `json:"kind" db:"kind"`
	TaskID      string           `json:"task_id" db:"task_id"`
	Title       string           `json:"title" db:"title"`
	Description string           `json:"description" db:"description"`
	Status      Status           `json:"status,omitempty" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}
