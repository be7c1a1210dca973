package report

import "time"

type DailyReport struct {
	ID               int64      `gorm:"primaryKey"`
	OrgID            int64      `gorm:"column:org_id;not null;uniqueIndex:ux_daily_reports_user_org_date,priority:2"`
	UserID           int64      `gorm:"column:user_id;not null;uniqueIndex:ux_daily_reports_user_org_date,priority:1"`
	ReportDate       string     `gorm:"column:report_date;type:varchar(10);not null;uniqueIndex:ux_daily_reports_user_org_date,priority:3"`
	Status           string     `gorm:"column:status;not null;default:submitted"`
	SubmittedAt      time.Time  `gorm:"column:submitted_at;not null"`
	ApprovedByUserID *int64     `gorm:"column:approved_by_user_id"`
	ApprovedAt       *time.Time `gorm:"column:approved_at"`
	RejectionReason  *string    `gorm:"column:rejection_reason"`
	ReviewedAt       *time.Time `gorm:"column:reviewed_at"`
}

func (DailyReport) TableName() string {
	return "daily_reports"
}

type ExtraWorkItem struct {
	ID              int64  `gorm:"primaryKey"`
	ReportID        int64  `gorm:"column:report_id;not null;index"`
	Description     string `gorm:"column:description;not null"`
	DurationMinutes int    `gorm:"column:duration_minutes;not null;default:0"`
}

func (ExtraWorkItem) TableName() string {
	return "extra_work_items"
}

type FormAnswer struct {
	ID            int64    `gorm:"primaryKey"`
	ReportID      int64    `gorm:"column:report_id;not null;uniqueIndex:ux_form_answers_report_question"`
	FormID        int64    `gorm:"column:form_id;not null"`
	QuestionID    int64    `gorm:"column:question_id;not null;uniqueIndex:ux_form_answers_report_question"`
	AnswerText    *string  `gorm:"column:answer_text"`
	AnswerChoices []string `gorm:"column:answer_choices;serializer:json"`
}

func (FormAnswer) TableName() string {
	return "form_answers"
}
