// Package seed reads the initial board state from YAML.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"proja/internal/board"
	"proja/internal/models"
)

//go:embed default.yaml
var defaultBoard []byte

// Board is the on-disk shape of a seed file.
type Board struct {
	Projects []models.Project `yaml:"projects"`
	Tasks    []models.Task    `yaml:"tasks"`
}

// Snapshot converts the seed into the store's input.
func (b Board) Snapshot() board.Snapshot {
	return board.Snapshot{Projects: b.Projects, Tasks: b.Tasks}
}

// Default returns the built-in demo board.
func Default() (Board, error) {
	return Parse(bytes.NewReader(defaultBoard))
}

// LoadFile reads a seed file from disk.
func LoadFile(path string) (Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return Board{}, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	b, err := Parse(f)
	if err != nil {
		return Board{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes, normalizes and validates a seed document.
func Parse(r io.Reader) (Board, error) {
	var b Board
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return Board{}, fmt.Errorf("decode seed: %w", err)
	}
	normalize(&b)
	if err := Validate(b); err != nil {
		return Board{}, err
	}
	return b, nil
}

func normalize(b *Board) {
	for i := range b.Tasks {
		t := &b.Tasks[i]
		t.Status = models.Status(strings.ToLower(strings.TrimSpace(string(t.Status))))
		t.Priority = models.Priority(strings.ToLower(strings.TrimSpace(string(t.Priority))))
		for j := range t.Assignees {
			if t.Assignees[j].Initials == "" {
				t.Assignees[j].Initials = models.Initials(t.Assignees[j].Name)
			}
		}
	}
}

// Validate reports the first structural problem in b.
func Validate(b Board) error {
	if len(b.Projects) == 0 {
		return fmt.Errorf("seed has no projects")
	}
	projects := make(map[string]struct{}, len(b.Projects))
	for _, p := range b.Projects {
		if strings.TrimSpace(p.ID) == "" {
			return fmt.Errorf("project %q: id is required", p.Name)
		}
		if _, dup := projects[p.ID]; dup {
			return fmt.Errorf("project %q: duplicate id", p.ID)
		}
		if p.Participants < 0 {
			return fmt.Errorf("project %q: negative participant count", p.ID)
		}
		projects[p.ID] = struct{}{}
	}

	tasks := make(map[string]struct{}, len(b.Tasks))
	comments := make(map[string]struct{})
	for _, t := range b.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("task %q: id is required", t.Title)
		}
		if _, dup := tasks[t.ID]; dup {
			return fmt.Errorf("task %q: duplicate id", t.ID)
		}
		tasks[t.ID] = struct{}{}
		if !t.Status.Valid() {
			return fmt.Errorf("task %q: invalid status %q", t.ID, t.Status)
		}
		if !t.Priority.Valid() {
			return fmt.Errorf("task %q: invalid priority %q", t.ID, t.Priority)
		}
		if _, ok := projects[t.ProjectID]; !ok {
			return fmt.Errorf("task %q: unknown project %q", t.ID, t.ProjectID)
		}
		for _, c := range t.Comments {
			if c.ID == "" || strings.TrimSpace(c.Text) == "" {
				return fmt.Errorf("task %q: comment needs an id and text", t.ID)
			}
			if _, dup := comments[c.ID]; dup {
				return fmt.Errorf("task %q: duplicate comment id %q", t.ID, c.ID)
			}
			comments[c.ID] = struct{}{}
		}
	}
	return nil
}
