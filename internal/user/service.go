package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/org"
)

type MembershipLister interface {
	Memberships(ctx context.Context, userID int64) ([]org.Membership, error)
}

type Service struct {
	repo        Repository
	memberships MembershipLister
	logger      *slog.Logger
}

func NewService(repo Repository, memberships MembershipLister, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		memberships: memberships,
		logger:      logger,
	}
}

func (s *Service) Profile(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrNotFound
		}
		s.logger.Error("failed to load user", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to load user", err)
	}

	ms, err := s.memberships.Memberships(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load memberships", err)
	}
	if ms == nil {
		ms = []org.Membership{}
	}
	return &Profile{User: u, Memberships: ms}, nil
}
