package task

import "time"

type Task struct {
	ID          int64      `gorm:"primaryKey"`
	OrgID       int64      `gorm:"column:org_id;not null;index"`
	Title       string     `gorm:"column:title;not null"`
	Status      string     `gorm:"column:status;not null;default:todo"`
	AssigneeID  *int64     `gorm:"column:assignee_id"`
	Category    *string    `gorm:"column:category"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
}

func (Task) TableName() string {
	return "tasks"
}
