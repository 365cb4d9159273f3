// Package notify delivers board notifications to the places that surface them.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"proja/internal/board"
	"proja/internal/models"
)

// Feed keeps the most recent notifications in memory, oldest first.
type Feed struct {
	mu    sync.Mutex
	items []models.Notification
	size  int
}

// NewFeed returns a Feed holding at most size notifications.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 50
	}
	return &Feed{size: size}
}

// Notify appends n, evicting the oldest entry when the feed is full.
func (f *Feed) Notify(n models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == f.size {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, n)
}

// Recent returns up to limit notifications, newest last. A non-positive limit returns all of them.
func (f *Feed) Recent(limit int) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := 0
	if limit > 0 && len(f.items) > limit {
		start = len(f.items) - limit
	}
	return append([]models.Notification{}, f.items[start:]...)
}

// Logger writes notifications to a zap logger.
type Logger struct {
	log *zap.Logger
}

// NewLogger wraps log; a nil logger falls back to zap.L().
func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.L()
	}
	return &Logger{log: log}
}

func (l *Logger) Notify(n models.Notification) {
	l.log.Info("board notification",
		zap.String("kind", string(n.Kind)),
		zap.String("task_id", n.TaskID),
		zap.String("status", string(n.Status)),
		zap.String("description", n.Description),
	)
}

// Recorder persists notifications.
type Recorder interface {
	RecordNotification(ctx context.Context, n models.Notification) error
}

// Journal forwards notifications to a Recorder. Failures are logged and dropped.
type Journal struct {
	rec     Recorder
	log     *zap.Logger
	timeout time.Duration
}

// NewJournal builds a Journal with a per-write timeout.
func NewJournal(rec Recorder, log *zap.Logger, timeout time.Duration) *Journal {
	if log == nil {
		log = zap.L()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Journal{rec: rec, log: log, timeout: timeout}
}

func (j *Journal) Notify(n models.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	if err := j.rec.RecordNotification(ctx, n); err != nil {
		j.log.Warn("failed to journal notification", zap.String("task_id", n.TaskID), zap.Error(err))
	}
}

// Multi delivers each notification to every notifier in order.
type Multi []board.Notifier

func (m Multi) Notify(n models.Notification) {
	for _, target := range m {
		target.Notify(n)
	}
}

var (
	_ board.Notifier = (*Feed)(nil)
	_ board.Notifier = (*Logger)(nil)
	_ board.Notifier = (*Journal)(nil)
	_ board.Notifier = Multi(nil)
)
