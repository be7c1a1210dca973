package form

import (
	"strings"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/org"
)

type AssignDTO struct {
	TargetType string  `json:"target_type"`
	TargetID   *int64  `json:"target_id,omitempty"`
	TargetRole *string `json:"target_role,omitempty"`
}

// ToAssignment validates the target and builds the row. Role targets store
// TargetID 0; user and group targets store no role.
func (d AssignDTO) ToAssignment(orgID, formID int64) (*Assignment, error) {
	tt := TargetType(strings.TrimSpace(d.TargetType))
	if !tt.Valid() {
		return nil, internal.ErrInvalidTargetType
	}

	a := &Assignment{OrgID: orgID, FormID: formID, TargetType: tt}

	if tt == TargetRole {
		if d.TargetRole == nil || strings.TrimSpace(*d.TargetRole) == "" {
			return nil, internal.ErrMissingTarget
		}
		role := org.Role(strings.TrimSpace(*d.TargetRole))
		if !role.Valid() {
			return nil, internal.NewValidationFieldError("target_role", "target_role must be one of owner, admin, leader, employee", internal.ErrCodeValidationFailed)
		}
		r := string(role)
		a.TargetRole = &r
		a.TargetID = 0
		return a, nil
	}

	if d.TargetID == nil || *d.TargetID <= 0 {
		return nil, internal.ErrMissingTarget
	}
	a.TargetID = *d.TargetID
	return a, nil
}
