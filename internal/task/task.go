// Package task is the read-only view of the organization's task store.
package task

import (
	"context"
	"errors"
	"time"

	taskDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/task"
)

const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

type Task struct {
	ID          int64      `json:"id"`
	OrgID       int64      `json:"org_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	AssigneeID  *int64     `json:"assignee_id,omitempty"`
	Category    *string    `json:"category,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (t *Task) AssignedTo(userID int64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

var ErrNotFound = errors.New("task not found")

type Repository interface {
	GetByID(ctx context.Context, orgID, taskID int64) (*Task, error)
	// CompletedBetween lists tasks assigned to userID whose completion falls in [from, to).
	CompletedBetween(ctx context.Context, orgID, userID int64, from, to time.Time) ([]*Task, error)
}

func FromDataModel(t *taskDatamodel.Task) *Task {
	return &Task{
		ID:          t.ID,
		OrgID:       t.OrgID,
		Title:       t.Title,
		Status:      t.Status,
		AssigneeID:  t.AssigneeID,
		Category:    t.Category,
		CompletedAt: t.CompletedAt,
	}
}
