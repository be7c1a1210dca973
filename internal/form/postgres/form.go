package postgres

import (
	"context"
	"errors"
	"fmt"

	formDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/form"
	"github.com/frahmantamala/worktrack/internal/form"
	"gorm.io/gorm"
)

type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

func (r *FormRepository) ListActive(ctx context.Context, orgID int64) ([]*form.Form, error) {
	var rows []formDatamodel.Form
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	if len(rows) == 0 {
		return []*form.Form{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, f := range rows {
		ids = append(ids, f.ID)
	}

	var questions []formDatamodel.FormQuestion
	if err := r.db.WithContext(ctx).
		Where("form_id IN ?", ids).
		Order("form_id ASC, position ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list form questions: %w", err)
	}

	byForm := make(map[int64][]formDatamodel.FormQuestion, len(rows))
	for _, q := range questions {
		byForm[q.FormID] = append(byForm[q.FormID], q)
	}

	forms := make([]*form.Form, 0, len(rows))
	for i := range rows {
		forms = append(forms, form.FromDataModel(&rows[i], byForm[rows[i].ID]))
	}
	return forms, nil
}

func (r *FormRepository) GetForm(ctx context.Context, orgID, formID int64) (*form.Form, error) {
	var row formDatamodel.Form
	if err := r.db.WithContext(ctx).Where("id = ? AND org_id = ?", formID, orgID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, form.ErrFormNotFound
		}
		return nil, fmt.Errorf("get form: %w", err)
	}

	var questions []formDatamodel.FormQuestion
	if err := r.db.WithContext(ctx).Where("form_id = ?", formID).Order("position ASC, id ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list form questions: %w", err)
	}
	return form.FromDataModel(&row, questions), nil
}

func (r *FormRepository) ListOrgAssignments(ctx context.Context, orgID int64) ([]*form.Assignment, error) {
	return r.listAssignments(r.db.WithContext(ctx).Where("org_id = ?", orgID))
}

func (r *FormRepository) ListAssignments(ctx context.Context, orgID, formID int64) ([]*form.Assignment, error) {
	return r.listAssignments(r.db.WithContext(ctx).Where("org_id = ? AND form_id = ?", orgID, formID))
}

func (r *FormRepository) listAssignments(q *gorm.DB) ([]*form.Assignment, error) {
	var rows []formDatamodel.FormAssignment
	if err := q.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list form assignments: %w", err)
	}
	out := make([]*form.Assignment, 0, len(rows))
	for i := range rows {
		out = append(out, form.AssignmentFromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *FormRepository) CreateAssignment(ctx context.Context, a *form.Assignment) error {
	row := form.AssignmentToDataModel(a)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create form assignment: %w", err)
	}
	a.ID = row.ID
	return nil
}

func (r *FormRepository) DeleteAssignment(ctx context.Context, orgID, assignmentID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND org_id = ?", assignmentID, orgID).
		Delete(&formDatamodel.FormAssignment{})
	if res.Error != nil {
		return fmt.Errorf("delete form assignment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return form.ErrAssignmentNotFound
	}
	return nil
}
