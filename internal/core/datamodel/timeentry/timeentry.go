package timeentry

import "time"

type TimeEntry struct {
	ID              int64      `gorm:"primaryKey"`
	OrgID           int64      `gorm:"column:org_id;not null;index:idx_time_entries_org_user_date"`
	UserID          int64      `gorm:"column:user_id;not null;index:idx_time_entries_org_user_date"`
	EntryDate       string     `gorm:"column:entry_date;type:varchar(10);not null;index:idx_time_entries_org_user_date"`
	Type            string     `gorm:"column:type;not null"`
	TaskID          *int64     `gorm:"column:task_id"`
	StartAt         *time.Time `gorm:"column:start_at"`
	EndAt           *time.Time `gorm:"column:end_at"`
	DurationMinutes *int       `gorm:"column:duration_minutes"`
	Note            *string    `gorm:"column:note"`
	Status          string     `gorm:"column:status;not null;default:pending"`
	ReviewerID      *int64     `gorm:"column:reviewer_id"`
	ReviewNote      *string    `gorm:"column:review_note"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
}

func (TimeEntry) TableName() string {
	return "time_entries"
}
