package form

import (
	"context"
	"errors"
	"time"

	formDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/form"
)

type TargetType string

const (
	TargetUser  TargetType = "user"
	TargetGroup TargetType = "group"
	TargetRole  TargetType = "role"
)

func (t TargetType) Valid() bool {
	return t == TargetUser || t == TargetGroup || t == TargetRole
}

type Form struct {
	ID          int64       `json:"id"`
	OrgID       int64       `json:"org_id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	IsActive    bool        `json:"is_active"`
	Questions   []*Question `json:"questions"`
}

type Question struct {
	ID       int64    `json:"id"`
	FormID   int64    `json:"form_id"`
	Position int      `json:"position"`
	Prompt   string   `json:"prompt"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Choices  []string `json:"choices,omitempty"`
}

type Assignment struct {
	ID         int64      `json:"id"`
	OrgID      int64      `json:"org_id"`
	FormID     int64      `json:"form_id"`
	TargetType TargetType `json:"target_type"`
	TargetID   int64      `json:"target_id"`
	TargetRole *string    `json:"target_role,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

var (
	ErrFormNotFound       = errors.New("form not found")
	ErrAssignmentNotFound = errors.New("form assignment not found")
)

type Repository interface {
	// ListActive returns active forms of the org with questions ordered by position.
	ListActive(ctx context.Context, orgID int64) ([]*Form, error)
	GetForm(ctx context.Context, orgID, formID int64) (*Form, error)
	ListOrgAssignments(ctx context.Context, orgID int64) ([]*Assignment, error)
	ListAssignments(ctx context.Context, orgID, formID int64) ([]*Assignment, error)
	CreateAssignment(ctx context.Context, a *Assignment) error
	DeleteAssignment(ctx context.Context, orgID, assignmentID int64) error
}

func FromDataModel(f *formDatamodel.Form, qs []formDatamodel.FormQuestion) *Form {
	out := &Form{
		ID:          f.ID,
		OrgID:       f.OrgID,
		Title:       f.Title,
		Description: f.Description,
		IsActive:    f.IsActive,
		Questions:   make([]*Question, 0, len(qs)),
	}
	for _, q := range qs {
		out.Questions = append(out.Questions, &Question{
			ID:       q.ID,
			FormID:   q.FormID,
			Position: q.Position,
			Prompt:   q.Prompt,
			Kind:     q.Kind,
			Required: q.Required,
			Choices:  q.Choices,
		})
	}
	return out
}

func AssignmentToDataModel(a *Assignment) *formDatamodel.FormAssignment {
	return &formDatamodel.FormAssignment{
		ID:         a.ID,
		OrgID:      a.OrgID,
		FormID:     a.FormID,
		TargetType: string(a.TargetType),
		TargetID:   a.TargetID,
		TargetRole: a.TargetRole,
		CreatedAt:  a.CreatedAt,
	}
}

func AssignmentFromDataModel(a *formDatamodel.FormAssignment) *Assignment {
	return &Assignment{
		ID:         a.ID,
		OrgID:      a.OrgID,
		FormID:     a.FormID,
		TargetType: TargetType(a.TargetType),
		TargetID:   a.TargetID,
		TargetRole: a.TargetRole,
		CreatedAt:  a.CreatedAt,
	}
}
