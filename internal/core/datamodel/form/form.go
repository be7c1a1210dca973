package form

import "time"

type Form struct {
	ID          int64     `gorm:"primaryKey"`
	OrgID       int64     `gorm:"column:org_id;not null;index"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Form) TableName() string {
	return "forms"
}

type FormQuestion struct {
	ID       int64    `gorm:"primaryKey"`
	FormID   int64    `gorm:"column:form_id;not null;index"`
	Position int      `gorm:"column:position;not null;default:0"`
	Prompt   string   `gorm:"column:prompt;not null"`
	Kind     string   `gorm:"column:kind;not null;default:text"`
	Required bool     `gorm:"column:required;not null;default:false"`
	Choices  []string `gorm:"column:choices;serializer:json"`
}

func (FormQuestion) TableName() string {
	return "form_questions"
}

type FormAssignment struct {
	ID         int64     `gorm:"primaryKey"`
	OrgID      int64     `gorm:"column:org_id;not null;index"`
	FormID     int64     `gorm:"column:form_id;not null;index"`
	TargetType string    `gorm:"column:target_type;not null"`
	TargetID   int64     `gorm:"column:target_id;not null;default:0"`
	TargetRole *string   `gorm:"column:target_role"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (FormAssignment) TableName() string {
	return "form_assignments"
}
