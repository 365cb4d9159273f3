package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"proja/internal/models"
	"proja/internal/seed"
)

// Store is the board catalog: it seeds sessions and journals notifications.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *zap.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS projects (
            id TEXT PRIMARY KEY,
            position INTEGER NOT NULL,
            name TEXT NOT NULL,
            manager TEXT NOT NULL DEFAULT '',
            participants INTEGER NOT NULL DEFAULT 0,
            description TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            position INTEGER NOT NULL,
            project_id TEXT NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL CHECK (status IN ('open', 'review', 'progress', 'testing', 'done')),
            time_in_status TEXT NOT NULL DEFAULT '',
            priority TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS task_assignees (
            task_id TEXT NOT NULL,
            position INTEGER NOT NULL,
            name TEXT NOT NULL,
            initials TEXT NOT NULL DEFAULT '',
            avatar TEXT NOT NULL DEFAULT '',
            PRIMARY KEY(task_id, position),
            FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS comments (
            id TEXT PRIMARY KEY,
            task_id TEXT NOT NULL,
            position INTEGER NOT NULL,
            author TEXT NOT NULL,
            text TEXT NOT NULL,
            timestamp TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS notifications (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            kind TEXT NOT NULL,
            task_id TEXT NOT NULL,
            title TEXT NOT NULL,
            description TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_task ON comments(task_id, position);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

type projectRow struct {
	ID           string    `db:"id"`
	Position     int       `db:"position"`
	Name         string    `db:"name"`
	Manager      string    `db:"manager"`
	Participants int       `db:"participants"`
	Description  string    `db:"description"`
	CreatedAt    time.Time `db:"created_at"`
}

type taskRow struct {
	ID           string    `db:"id"`
	Position     int       `db:"position"`
	ProjectID    string    `db:"project_id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	Status       string    `db:"status"`
	TimeInStatus string    `db:"time_in_status"`
	Priority     string    `db:"priority"`
	CreatedAt    time.Time `db:"created_at"`
}

type assigneeRow struct {
	TaskID   string `db:"task_id"`
	Position int    `db:"position"`
	Name     string `db:"name"`
	Initials string `db:"initials"`
	Avatar   string `db:"avatar"`
}

type commentRow struct {
	ID        string    `db:"id"`
	TaskID    string    `db:"task_id"`
	Position  int       `db:"position"`
	Author    string    `db:"author"`
	Text      string    `db:"text"`
	Timestamp string    `db:"timestamp"`
	CreatedAt time.Time `db:"created_at"`
}

// IsEmpty reports whether no board has been imported yet.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects`); err != nil {
		return false, fmt.Errorf("count projects: %w", err)
	}
	return n == 0, nil
}

// ImportBoard writes a seed board in a single transaction, preserving its order.
func (s *Store) ImportBoard(ctx context.Context, b seed.Board) error {
	if err := seed.Validate(b); err != nil {
		return fmt.Errorf("import board: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, p := range b.Projects {
		row := projectRow{
			ID:           p.ID,
			Position:     i,
			Name:         p.Name,
			Manager:      p.Manager,
			Participants: p.Participants,
			Description:  p.Description,
			CreatedAt:    p.CreatedAt,
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO projects(id, position, name, manager, participants, description, created_at)
            VALUES(:id, :position, :name, :manager, :participants, :description, :created_at)`, row); err != nil {
			return fmt.Errorf("insert project %s: %w", p.ID, err)
		}
	}

	for i, t := range b.Tasks {
		row := taskRow{
			ID:           t.ID,
			Position:     i,
			ProjectID:    t.ProjectID,
			Title:        t.Title,
			Description:  t.Description,
			Status:       string(t.Status),
			TimeInStatus: t.TimeInStatus,
			Priority:     string(t.Priority),
			CreatedAt:    t.CreatedAt,
		}
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO tasks(id, position, project_id, title, description, status, time_in_status, priority, created_at)
            VALUES(:id, :position, :project_id, :title, :description, :status, :time_in_status, :priority, :created_at)`, row); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}

		for j, a := range t.Assignees {
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO task_assignees(task_id, position, name, initials, avatar)
                VALUES(:task_id, :position, :name, :initials, :avatar)`, assigneeRow{
				TaskID: t.ID, Position: j, Name: a.Name, Initials: a.Initials, Avatar: a.Avatar,
			}); err != nil {
				return fmt.Errorf("insert assignee of %s: %w", t.ID, err)
			}
		}

		for j, c := range t.Comments {
			if _, err := tx.NamedExecContext(ctx, `INSERT INTO comments(id, task_id, position, author, text, timestamp, created_at)
                VALUES(:id, :task_id, :position, :author, :text, :timestamp, :created_at)`, commentRow{
				ID: c.ID, TaskID: t.ID, Position: j, Author: c.Author, Text: c.Text, Timestamp: c.Timestamp, CreatedAt: c.CreatedAt,
			}); err != nil {
				return fmt.Errorf("insert comment %s: %w", c.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	s.logger.Info("board imported", zap.Int("projects", len(b.Projects)), zap.Int("tasks", len(b.Tasks)))
	return nil
}

// LoadBoard reads the stored board in seed order.
func (s *Store) LoadBoard(ctx context.Context) (seed.Board, error) {
	var projects []projectRow
	if err := s.db.SelectContext(ctx, &projects, `SELECT id, position, name, manager, participants, description, created_at
        FROM projects ORDER BY position, id`); err != nil {
		return seed.Board{}, fmt.Errorf("list projects: %w", err)
	}

	var tasks []taskRow
	if err := s.db.SelectContext(ctx, &tasks, `SELECT id, position, project_id, title, description, status, time_in_status, priority, created_at
        FROM tasks ORDER BY position, id`); err != nil {
		return seed.Board{}, fmt.Errorf("list tasks: %w", err)
	}

	var assignees []assigneeRow
	if err := s.db.SelectContext(ctx, &assignees, `SELECT task_id, position, name, initials, avatar
        FROM task_assignees ORDER BY task_id, position`); err != nil {
		return seed.Board{}, fmt.Errorf("list assignees: %w", err)
	}

	var comments []commentRow
	if err := s.db.SelectContext(ctx, &comments, `SELECT id, task_id, position, author, text, timestamp, created_at
        FROM comments ORDER BY task_id, position`); err != nil {
		return seed.Board{}, fmt.Errorf("list comments: %w", err)
	}

	people := make(map[string][]models.Person)
	for _, a := range assignees {
		people[a.TaskID] = append(people[a.TaskID], models.Person{Name: a.Name, Initials: a.Initials, Avatar: a.Avatar})
	}
	notes := make(map[string][]models.Comment)
	for _, c := range comments {
		notes[c.TaskID] = append(notes[c.TaskID], models.Comment{
			ID:        c.ID,
			Author:    c.Author,
			Text:      c.Text,
			Timestamp: c.Timestamp,
			CreatedAt: c.CreatedAt,
		})
	}

	b := seed.Board{
		Projects: make([]models.Project, 0, len(projects)),
		Tasks:    make([]models.Task, 0, len(tasks)),
	}
	for _, p := range projects {
		b.Projects = append(b.Projects, models.Project{
			ID:           p.ID,
			Name:         p.Name,
			Manager:      p.Manager,
			CreatedAt:    p.CreatedAt,
			Participants: p.Participants,
			Description:  p.Description,
		})
	}
	for _, t := range tasks {
		b.Tasks = append(b.Tasks, models.Task{
			ID:           t.ID,
			Title:        t.Title,
			Description:  t.Description,
			Status:       models.Status(t.Status),
			Assignees:    people[t.ID],
			ProjectID:    t.ProjectID,
			CreatedAt:    t.CreatedAt,
			TimeInStatus: t.TimeInStatus,
			Priority:     models.Priority(t.Priority),
			Comments:     notes[t.ID],
		})
	}
	return b, nil
}

// RecordNotification appends a notification to the journal.
func (s *Store) RecordNotification(ctx context.Context, n models.Notification) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO notifications(kind, task_id, title, description, status, created_at)
        VALUES(:kind, :task_id, :title, :description, :status, :created_at)`, n)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns up to limit journal entries, oldest first.
func (s *Store) ListNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []models.Notification
	if err := s.db.SelectContext(ctx, &out, `SELECT kind, task_id, title, description, status, created_at
        FROM notifications ORDER BY id DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if out == nil {
		out = []models.Notification{}
	}
	return out, nil
}
