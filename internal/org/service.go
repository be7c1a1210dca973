package org

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Repository is the read side of the organization directory.
type Repository interface {
	GetRole(ctx context.Context, orgID, userID int64) (Role, error)
	IsInScope(ctx context.Context, orgID, leaderID, memberID int64) (bool, error)
	ScopeMemberIDs(ctx context.Context, orgID, leaderID int64) ([]int64, error)
	GroupIDs(ctx context.Context, orgID, userID int64) ([]int64, error)
	ListMemberships(ctx context.Context, userID int64) ([]Membership, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Resolve looks up the caller's role in orgID. ErrNotAMember when absent.
func (s *Service) Resolve(ctx context.Context, userID, orgID int64) (*Member, error) {
	role, err := s.repo.GetRole(ctx, orgID, userID)
	if err != nil {
		if errors.Is(err, ErrNotAMember) {
			s.logger.Warn("membership lookup denied", "user_id", userID, "org_id", orgID)
			return nil, ErrNotAMember
		}
		s.logger.Error("failed to resolve membership", "error", err, "user_id", userID, "org_id", orgID)
		return nil, fmt.Errorf("resolve membership: %w", err)
	}
	if !role.Valid() {
		s.logger.Error("unknown role in directory", "role", role, "user_id", userID, "org_id", orgID)
		return nil, fmt.Errorf("unknown role %q", role)
	}
	return &Member{UserID: userID, OrgID: orgID, Role: role}, nil
}

// InScope reports whether reviewer may act on memberID's records.
// Admins and owners cover the whole org; leaders only their explicit scope.
func (s *Service) InScope(ctx context.Context, reviewer *Member, memberID int64) (bool, error) {
	switch {
	case reviewer.Role.OrgWide():
		return true, nil
	case reviewer.Role == RoleLeader:
		ok, err := s.repo.IsInScope(ctx, reviewer.OrgID, reviewer.UserID, memberID)
		if err != nil {
			return false, fmt.Errorf("check leader scope: %w", err)
		}
		return ok, nil
	default:
		return false, nil
	}
}

// ScopeMemberIDs lists the members a leader manages. Nil for org-wide roles.
func (s *Service) ScopeMemberIDs(ctx context.Context, reviewer *Member) ([]int64, error) {
	if reviewer.Role.OrgWide() {
		return nil, nil
	}
	if reviewer.Role != RoleLeader {
		return []int64{}, nil
	}
	ids, err := s.repo.ScopeMemberIDs(ctx, reviewer.OrgID, reviewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("list leader scope: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func (s *Service) GroupIDs(ctx context.Context, m *Member) ([]int64, error) {
	ids, err := s.repo.GroupIDs(ctx, m.OrgID, m.UserID)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return ids, nil
}

func (s *Service) Memberships(ctx context.Context, userID int64) ([]Membership, error) {
	ms, err := s.repo.ListMemberships(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list memberships", "error", err, "user_id", userID)
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	return ms, nil
}
