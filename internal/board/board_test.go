package board

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proja/internal/models"
)

var fixedNow = time.Date(2024, 3, 16, 9, 5, 0, 0, time.UTC)

type recorder struct {
	mu   sync.Mutex
	seen []models.Notification
}

func (r *recorder) Notify(n models.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

func (r *recorder) all() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Notification(nil), r.seen...)
}

// fiveColumnSnapshot seeds one task per status.
func fiveColumnSnapshot() Snapshot {
	created := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return Snapshot{
		Projects: []models.Project{
			{ID: "backend", Name: "Backend API", Manager: "Anna", Participants: 4},
			{ID: "frontend", Name: "Frontend", Manager: "Dmitry", Participants: 3},
		},
		Tasks: []models.Task{
			{ID: "1", Title: "INDEX-1", Status: models.StatusOpen, ProjectID: "backend", CreatedAt: created, TimeInStatus: "2 days",
				Assignees: []models.Person{{Name: "Anna Smirnova", Initials: "AS"}}, Priority: models.PriorityHigh,
				Comments: []models.Comment{{ID: "c1", Author: "Petr", Text: "remember password reset", Timestamp: "10:30"}}},
			{ID: "2", Title: "INDEX-2", Status: models.StatusProgress, ProjectID: "frontend", CreatedAt: created, TimeInStatus: "1 day"},
			{ID: "3", Title: "INDEX-3", Status: models.StatusTesting, ProjectID: "backend", CreatedAt: created, TimeInStatus: "3 hours"},
			{ID: "4", Title: "INDEX-4", Status: models.StatusReview, ProjectID: "frontend", CreatedAt: created, TimeInStatus: "4 hours"},
			{ID: "5", Title: "INDEX-5", Status: models.StatusDone, ProjectID: "frontend", CreatedAt: created, TimeInStatus: "Done"},
		},
	}
}

func newStore(t *testing.T, rec *recorder) *Store {
	t.Helper()
	opts := []Option{WithClock(func() time.Time { return fixedNow })}
	if rec != nil {
		opts = append(opts, WithNotifier(rec))
	}
	s, err := New(fiveColumnSnapshot(), opts...)
	require.NoError(t, err)
	return s
}

func TestNewRejectsInvalidSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"duplicate task id", func(s *Snapshot) { s.Tasks[1].ID = "1" }},
		{"empty task id", func(s *Snapshot) { s.Tasks[0].ID = "" }},
		{"unknown status", func(s *Snapshot) { s.Tasks[0].Status = "blocked" }},
		{"unknown priority", func(s *Snapshot) { s.Tasks[0].Priority = "urgent" }},
		{"dangling project", func(s *Snapshot) { s.Tasks[0].ProjectID = "mobile" }},
		{"duplicate project", func(s *Snapshot) { s.Projects[1].ID = "backend" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := fiveColumnSnapshot()
			tt.mutate(&snap)
			_, err := New(snap)
			require.Error(t, err)
		})
	}
}

func TestNewCopiesSnapshot(t *testing.T) {
	snap := fiveColumnSnapshot()
	s, err := New(snap)
	require.NoError(t, err)

	snap.Tasks[0].Comments[0].Text = "mutated"
	got, err := s.Task("1")
	require.NoError(t, err)
	assert.Equal(t, "remember password reset", got.Comments[0].Text)
}

func TestMoveTaskToEveryStatus(t *testing.T) {
	for _, st := range models.Statuses() {
		t.Run(string(st), func(t *testing.T) {
			s := newStore(t, nil)
			before := s.Tasks()

			moved, err := s.MoveTask("3", st)
			require.NoError(t, err)
			assert.Equal(t, st, moved.Status)
			assert.Equal(t, models.JustChanged, moved.TimeInStatus)
			assert.Equal(t, fixedNow, moved.StatusChangedAt)

			after := s.Tasks()
			require.Len(t, after, len(before))
			for i := range before {
				if before[i].ID == "3" {
					assert.Equal(t, moved, after[i])
					continue
				}
				assert.Equal(t, before[i], after[i], "task %s changed", before[i].ID)
			}
		})
	}
}

func TestMoveTaskKeepsIdentityAndComments(t *testing.T) {
	s := newStore(t, nil)

	moved, err := s.MoveTask("1", models.StatusReview)
	require.NoError(t, err)
	assert.Equal(t, "1", moved.ID)
	assert.Equal(t, "INDEX-1", moved.Title)
	require.Len(t, moved.Comments, 1)
	assert.Equal(t, "c1", moved.Comments[0].ID)
}

func TestMoveTaskSameStatusIsAWrite(t *testing.T) {
	rec := &recorder{}
	s := newStore(t, rec)

	moved, err := s.MoveTask("1", models.StatusOpen)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, moved.Status)
	assert.Equal(t, models.JustChanged, moved.TimeInStatus)
	assert.Len(t, rec.all(), 1)
}

func TestMoveTaskUnknownIDLeavesBoardUnchanged(t *testing.T) {
	rec := &recorder{}
	s := newStore(t, rec)
	before := s.Tasks()

	_, err := s.MoveTask("missing", models.StatusDone)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskNotFound))

	assert.Equal(t, before, s.Tasks())
	assert.Empty(t, rec.all())
}

func TestMoveTaskPanicsOnUnknownStatus(t *testing.T) {
	s := newStore(t, nil)
	assert.Panics(t, func() {
		_, _ = s.MoveTask("1", models.Status("blocked"))
	})
}

func TestMoveTaskNotification(t *testing.T) {
	rec := &recorder{}
	s := newStore(t, rec)

	_, err := s.MoveTask("2", models.StatusDone)
	require.NoError(t, err)

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationTaskMoved, got[0].Kind)
	assert.Equal(t, "2", got[0].TaskID)
	assert.Equal(t, models.StatusDone, got[0].Status)
	assert.Equal(t, "Status updated", got[0].Title)
	assert.Contains(t, got[0].Description, "INDEX-2")
	assert.Contains(t, got[0].Description, "done")
	assert.Equal(t, fixedNow, got[0].CreatedAt)
}

func TestMoveOpenTaskToDoneScenario(t *testing.T) {
	s := newStore(t, nil)

	_, err := s.MoveTask("1", models.StatusDone)
	require.NoError(t, err)

	assert.Empty(t, s.TasksByStatus(models.StatusOpen, ""))
	done := s.TasksByStatus(models.StatusDone, "")
	require.Len(t, done, 2)
	assert.Equal(t, "1", done[0].ID, "board order is preserved, task 1 precedes task 5")
	assert.Equal(t, "5", done[1].ID)
}

func TestAddComment(t *testing.T) {
	rec := &recorder{}
	s := newStore(t, rec)
	before, err := s.Task("1")
	require.NoError(t, err)

	updated, err := s.AddComment("1", "Olga", "hello")
	require.NoError(t, err)

	require.Len(t, updated.Comments, len(before.Comments)+1)
	assert.Equal(t, before.Comments, updated.Comments[:len(before.Comments)])
	last := updated.Comments[len(updated.Comments)-1]
	assert.Equal(t, "hello", last.Text)
	assert.Equal(t, "Olga", last.Author)
	assert.Equal(t, "09:05", last.Timestamp)
	assert.Equal(t, fixedNow, last.CreatedAt)
	assert.NotEmpty(t, last.ID)

	stored, err := s.Task("1")
	require.NoError(t, err)
	assert.Equal(t, updated, stored)

	got := rec.all()
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationCommentAdded, got[0].Kind)
	assert.Equal(t, "1", got[0].TaskID)
}

func TestAddCommentTrimsAndDefaultsAuthor(t *testing.T) {
	s, err := New(fiveColumnSnapshot(), WithDefaultAuthor("Текущий пользователь"))
	require.NoError(t, err)

	updated, err := s.AddComment("2", "  ", "  looks good \n")
	require.NoError(t, err)
	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "looks good", updated.Comments[0].Text)
	assert.Equal(t, "Текущий пользователь", updated.Comments[0].Author)
}

func TestAddCommentIDsAreUnique(t *testing.T) {
	s := newStore(t, nil)

	_, err := s.AddComment("2", "a", "one")
	require.NoError(t, err)
	updated, err := s.AddComment("2", "a", "two")
	require.NoError(t, err)

	require.Len(t, updated.Comments, 2)
	assert.NotEqual(t, updated.Comments[0].ID, updated.Comments[1].ID)
	assert.Equal(t, "one", updated.Comments[0].Text)
	assert.Equal(t, "two", updated.Comments[1].Text)
}

func TestAddCommentRejectsBlankText(t *testing.T) {
	rec := &recorder{}
	s := newStore(t, rec)
	before := s.Tasks()

	_, err := s.AddComment("1", "Olga", "  \t ")
	assert.ErrorIs(t, err, ErrEmptyComment)
	assert.Equal(t, before, s.Tasks())
	assert.Empty(t, rec.all())
}

func TestAddCommentUnknownTask(t *testing.T) {
	rec := &recorder{}
	s := newStore(t, rec)
	before := s.Tasks()

	_, err := s.AddComment("missing", "Olga", "hello")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Equal(t, before, s.Tasks())
	assert.Empty(t, rec.all())
}

func TestReturnedTasksDoNotAliasStore(t *testing.T) {
	s := newStore(t, nil)

	got, err := s.Task("1")
	require.NoError(t, err)
	got.Comments[0].Text = "mutated"
	got.Assignees[0].Name = "mutated"

	again, err := s.Task("1")
	require.NoError(t, err)
	assert.Equal(t, "remember password reset", again.Comments[0].Text)
	assert.Equal(t, "Anna Smirnova", again.Assignees[0].Name)
}

func TestTasksByStatusPartitionsBoard(t *testing.T) {
	s := newStore(t, nil)
	_, err := s.MoveTask("4", models.StatusProgress)
	require.NoError(t, err)

	all := s.Tasks()
	seen := map[string]int{}
	for _, st := range models.Statuses() {
		var want []models.Task
		for _, task := range all {
			if task.Status == st {
				want = append(want, task)
			}
		}
		got := s.TasksByStatus(st, "")
		if want == nil {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, want, got)
		}
		for _, task := range got {
			seen[task.ID]++
		}
	}

	require.Len(t, seen, len(all))
	for id, n := range seen {
		assert.Equal(t, 1, n, "task %s listed %d times", id, n)
	}
}

func TestTasksByStatusProjectFilter(t *testing.T) {
	s := newStore(t, nil)
	_, err := s.MoveTask("3", models.StatusOpen)
	require.NoError(t, err)

	assert.Len(t, s.TasksByStatus(models.StatusOpen, ""), 2)
	backend := s.TasksByStatus(models.StatusOpen, "backend")
	require.Len(t, backend, 2)
	assert.Equal(t, "1", backend[0].ID)
	assert.Equal(t, "3", backend[1].ID)
	assert.Empty(t, s.TasksByStatus(models.StatusOpen, "frontend"))
}

func TestBoardColumns(t *testing.T) {
	s := newStore(t, nil)

	cols := s.Board("frontend")
	require.Len(t, cols, 5)
	for i, st := range models.Statuses() {
		assert.Equal(t, st, cols[i].Status)
		assert.Equal(t, string(st), cols[i].Label)
	}
	assert.Empty(t, cols[0].Tasks)
	require.Len(t, cols[2].Tasks, 1)
	assert.Equal(t, "2", cols[2].Tasks[0].ID)
}

func TestActiveProject(t *testing.T) {
	projects := fiveColumnSnapshot().Projects

	p, ok := ActiveProject(projects, "frontend")
	require.True(t, ok)
	assert.Equal(t, "frontend", p.ID)

	p, ok = ActiveProject(projects, "nonexistent-id")
	require.True(t, ok)
	assert.Equal(t, projects[0], p)

	_, ok = ActiveProject(nil, "frontend")
	assert.False(t, ok)
}

func TestStoreActiveProject(t *testing.T) {
	s := newStore(t, nil)
	p, ok := s.ActiveProject("")
	require.True(t, ok)
	assert.Equal(t, "backend", p.ID)
}

func TestConcurrentCommentsAreAllAppended(t *testing.T) {
	s := newStore(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.AddComment("2", "worker", "note")
			_, _ = s.MoveTask("2", models.StatusTesting)
		}()
	}
	wg.Wait()

	got, err := s.Task("2")
	require.NoError(t, err)
	assert.Len(t, got.Comments, 50)
	assert.Equal(t, models.StatusTesting, got.Status)
}

func TestBoardPartitionsUnderConcurrentMoves(t *testing.T) {
	s := newStore(t, nil)
	statuses := models.Statuses()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-done:
				return
			default:
			}
			_, _ = s.MoveTask("1", statuses[i%len(statuses)])
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	for i := 0; i < 2000; i++ {
		seen := map[string]int{}
		for _, col := range s.Board("") {
			for _, task := range col.Tasks {
				assert.Equal(t, col.Status, task.Status)
				seen[task.ID]++
			}
		}
		require.Len(t, seen, 5, "iteration %d", i)
		for id, n := range seen {
			require.Equal(t, 1, n, "task %s listed %d times in iteration %d", id, n, i)
		}
	}
}

func TestNotificationsFollowMutationOrder(t *testing.T) {
	rec := &recorder{}
	s := newStore(t, rec)
	statuses := models.Statuses()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(st models.Status) {
			defer wg.Done()
			_, _ = s.MoveTask("1", st)
		}(statuses[i%len(statuses)])
	}
	wg.Wait()

	got, err := s.Task("1")
	require.NoError(t, err)
	seen := rec.all()
	require.Len(t, seen, 200)
	assert.Equal(t, got.Status, seen[len(seen)-1].Status)
}
