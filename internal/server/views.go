package server

import (
	"time"

	"proja/internal/board"
	"proja/internal/locale"
	"proja/internal/models"
)

type taskView struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Status          models.Status    `json:"status"`
	StatusLabel     string           `json:"status_label"`
	Assignees       []models.Person  `json:"assignees"`
	ProjectID       string           `json:"project_id"`
	CreatedAt       string           `json:"created_at"`
	TimeInStatus    string           `json:"time_in_status"`
	StatusChangedAt *string          `json:"status_changed_at,omitempty"`
	Priority        models.Priority  `json:"priority,omitempty"`
	PriorityLabel   string           `json:"priority_label,omitempty"`
	Comments        []models.Comment `json:"comments"`
}

type columnView struct {
	Status models.Status `json:"status"`
	Label  string        `json:"label"`
	Tasks  []taskView    `json:"tasks"`
}

func toTaskViews(cat *locale.Catalog, tasks []models.Task) []taskView {
	out := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskView(cat, t))
	}
	return out
}

func toTaskView(cat *locale.Catalog, t models.Task) taskView {
	t = t.Clone()
	v := taskView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		StatusLabel:   cat.StatusLabel(t.Status),
		Assignees:     t.Assignees,
		ProjectID:     t.ProjectID,
		CreatedAt:     t.CreatedAt.Format(time.DateOnly),
		TimeInStatus:  cat.TimeInStatus(t.TimeInStatus),
		Priority:      t.Priority,
		PriorityLabel: cat.PriorityLabel(t.Priority),
		Comments:      t.Comments,
	}
	if !t.StatusChangedAt.IsZero() {
		value := t.StatusChangedAt.Format(time.RFC3339)
		v.StatusChangedAt = &value
	}
	return v
}

func toColumnViews(cat *locale.Catalog, cols []board.Column) []columnView {
	out := make([]columnView, 0, len(cols))
	for _, col := range cols {
		out = append(out, columnView{
			Status: col.Status,
			Label:  cat.StatusLabel(col.Status),
			Tasks:  toTaskViews(cat, col.Tasks),
		})
	}
	return out
}
