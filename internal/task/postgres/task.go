package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	taskDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/task"
	"github.com/frahmantamala/worktrack/internal/task"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) GetByID(ctx context.Context, orgID, taskID int64) (*task.Task, error) {
	var row taskDatamodel.Task
	err := r.db.WithContext(ctx).Where("id = ? AND org_id = ?", taskID, orgID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task.FromDataModel(&row), nil
}

func (r *TaskRepository) CompletedBetween(ctx context.Context, orgID, userID int64, from, to time.Time) ([]*task.Task, error) {
	var rows []taskDatamodel.Task
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND assignee_id = ? AND status = ?", orgID, userID, task.StatusDone).
		Where("completed_at >= ? AND completed_at < ?", from, to).
		Order("completed_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}

	tasks := make([]*task.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, task.FromDataModel(&rows[i]))
	}
	return tasks, nil
}
