package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"proja/internal/board"
	"proja/internal/models"
)

func note(id string) models.Notification {
	return models.Notification{Kind: models.NotificationTaskMoved, TaskID: id, Status: models.StatusDone}
}

func TestFeedKeepsNewest(t *testing.T) {
	f := NewFeed(3)
	for _, id := range []string{"1", "2", "3", "4"} {
		f.Notify(note(id))
	}

	got := f.Recent(0)
	require.Len(t, got, 3)
	assert.Equal(t, "2", got[0].TaskID)
	assert.Equal(t, "4", got[2].TaskID)

	last := f.Recent(1)
	require.Len(t, last, 1)
	assert.Equal(t, "4", last[0].TaskID)
}

func TestFeedRecentReturnsCopy(t *testing.T) {
	f := NewFeed(0)
	f.Notify(note("1"))

	got := f.Recent(0)
	got[0].TaskID = "mutated"
	assert.Equal(t, "1", f.Recent(0)[0].TaskID)
}

func TestLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	NewLogger(zap.New(core)).Notify(note("7"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "board notification", entries[0].Message)
	assert.Equal(t, "7", entries[0].ContextMap()["task_id"])
	assert.Equal(t, "done", entries[0].ContextMap()["status"])
}

type recorderStub struct {
	got []models.Notification
	err error
}

func (r *recorderStub) RecordNotification(ctx context.Context, n models.Notification) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	r.got = append(r.got, n)
	return r.err
}

func TestJournalRecords(t *testing.T) {
	rec := &recorderStub{}
	NewJournal(rec, zap.NewNop(), time.Second).Notify(note("1"))

	require.Len(t, rec.got, 1)
	assert.Equal(t, "1", rec.got[0].TaskID)
}

func TestJournalLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := &recorderStub{err: errors.New("disk full")}

	NewJournal(rec, zap.New(core), 0).Notify(note("1"))

	require.Equal(t, 1, logs.FilterMessage("failed to journal notification").Len())
}

func TestMultiFansOutInOrder(t *testing.T) {
	var order []string
	m := Multi{
		board.NotifierFunc(func(models.Notification) { order = append(order, "a") }),
		board.NotifierFunc(func(models.Notification) { order = append(order, "b") }),
	}
	m.Notify(note("1"))
	assert.Equal(t, []string{"a", "b"}, order)
}
