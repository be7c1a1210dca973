package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/auth"
	"github.com/frahmantamala/worktrack/internal/clock"
	"github.com/frahmantamala/worktrack/internal/org"
)

// GroupLookup supplies group membership for the visibility check.
type GroupLookup interface {
	GroupIDs(ctx context.Context, m *org.Member) ([]int64, error)
}

type Service struct {
	repo   Repository
	groups GroupLookup
	clock  clock.Clock
	logger *slog.Logger
}

func NewService(repo Repository, groups GroupLookup, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{repo: repo, groups: groups, clock: clk, logger: logger}
}

// VisibleForms returns the active forms assigned to the member, questions included.
func (s *Service) VisibleForms(ctx context.Context, m *org.Member) ([]*Form, error) {
	forms, err := s.repo.ListActive(ctx, m.OrgID)
	if err != nil {
		s.logger.Error("failed to list forms", "error", err, "org_id", m.OrgID)
		return nil, internal.NewInternalError("failed to list forms", err)
	}
	if len(forms) == 0 {
		return []*Form{}, nil
	}

	assignments, err := s.repo.ListOrgAssignments(ctx, m.OrgID)
	if err != nil {
		s.logger.Error("failed to list form assignments", "error", err, "org_id", m.OrgID)
		return nil, internal.NewInternalError("failed to list form assignments", err)
	}

	groupIDs, err := s.groups.GroupIDs(ctx, m)
	if err != nil {
		s.logger.Error("failed to list groups", "error", err, "user_id", m.UserID, "org_id", m.OrgID)
		return nil, internal.NewInternalError("failed to list groups", err)
	}

	return Visible(forms, assignments, Audience{UserID: m.UserID, Role: m.Role, GroupIDs: groupIDs}), nil
}

func (s *Service) ListAssignments(ctx context.Context, m *org.Member, formID int64) ([]*Assignment, error) {
	if !auth.CanManageForms(m.Role) {
		s.logger.Warn("list assignments denied", "user_id", m.UserID, "role", m.Role)
		return nil, internal.ErrForbidden
	}
	if err := s.ensureForm(ctx, m.OrgID, formID); err != nil {
		return nil, err
	}

	as, err := s.repo.ListAssignments(ctx, m.OrgID, formID)
	if err != nil {
		s.logger.Error("failed to list assignments", "error", err, "form_id", formID)
		return nil, internal.NewInternalError("failed to list assignments", err)
	}
	return as, nil
}

// Assign adds a targeting row. Duplicate rows are accepted as-is.
func (s *Service) Assign(ctx context.Context, m *org.Member, formID int64, dto AssignDTO) (*Assignment, error) {
	if !auth.CanManageForms(m.Role) {
		s.logger.Warn("assign form denied", "user_id", m.UserID, "role", m.Role, "form_id", formID)
		return nil, internal.ErrForbidden
	}

	a, err := dto.ToAssignment(m.OrgID, formID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureForm(ctx, m.OrgID, formID); err != nil {
		return nil, err
	}

	a.CreatedAt = s.clock.Now()
	if err := s.repo.CreateAssignment(ctx, a); err != nil {
		s.logger.Error("failed to create assignment", "error", err, "form_id", formID)
		return nil, internal.NewInternalError("failed to create assignment", err)
	}

	s.logger.Info("form assigned",
		"assignment_id", a.ID,
		"form_id", formID,
		"target_type", a.TargetType,
		"target_id", a.TargetID,
		"by", m.UserID)
	return a, nil
}

// Unassign deletes the row if it exists in the member's org. Missing rows
// are not an error.
func (s *Service) Unassign(ctx context.Context, m *org.Member, assignmentID int64) error {
	if !auth.CanManageForms(m.Role) {
		s.logger.Warn("unassign form denied", "user_id", m.UserID, "role", m.Role)
		return internal.ErrForbidden
	}

	if err := s.repo.DeleteAssignment(ctx, m.OrgID, assignmentID); err != nil {
		if errors.Is(err, ErrAssignmentNotFound) {
			s.logger.Info("unassign on missing assignment", "assignment_id", assignmentID, "org_id", m.OrgID)
			return nil
		}
		s.logger.Error("failed to delete assignment", "error", err, "assignment_id", assignmentID)
		return internal.NewInternalError("failed to delete assignment", err)
	}

	s.logger.Info("form unassigned", "assignment_id", assignmentID, "by", m.UserID)
	return nil
}

func (s *Service) ensureForm(ctx context.Context, orgID, formID int64) error {
	if _, err := s.repo.GetForm(ctx, orgID, formID); err != nil {
		if errors.Is(err, ErrFormNotFound) {
			return internal.ErrNotFound
		}
		return internal.NewInternalError("failed to load form", fmt.Errorf("form %d: %w", formID, err))
	}
	return nil
}
