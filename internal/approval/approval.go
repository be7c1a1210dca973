package approval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/auth"
	"github.com/frahmantamala/worktrack/internal/clock"
	"github.com/frahmantamala/worktrack/internal/org"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Reviewable is true for the initial state of either machine: pending for
// time entries, submitted for reports.
func (s Status) Reviewable() bool {
	return s == StatusPending || s == StatusSubmitted
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Transition returns the state a decision moves from into.
func Transition(from Status, d Decision) (Status, error) {
	if !from.Reviewable() {
		return from, internal.ErrAlreadyProcessed
	}
	switch d {
	case DecisionApprove:
		return StatusApproved, nil
	case DecisionReject:
		return StatusRejected, nil
	default:
		return from, fmt.Errorf("unknown decision %q", d)
	}
}

// Review is an authorized decision ready to be written with a
// compare-and-set on the subject's current status.
type Review struct {
	Decision   Decision
	From       Status
	To         Status
	ReviewerID int64
	Note       *string
	At         time.Time
}

type ScopeChecker interface {
	InScope(ctx context.Context, reviewer *org.Member, memberID int64) (bool, error)
}

// Gate applies the reviewer rules shared by time entries and reports.
type Gate struct {
	scope  ScopeChecker
	clock  clock.Clock
	logger *slog.Logger
}

func NewGate(scope ScopeChecker, clk clock.Clock, logger *slog.Logger) *Gate {
	return &Gate{scope: scope, clock: clk, logger: logger}
}

// Review authorizes reviewer to decide on a record owned by ownerID that is
// currently in state current. Authorization is checked before state so a
// caller without rights learns nothing about the record's progress.
func (g *Gate) Review(ctx context.Context, reviewer *org.Member, ownerID int64, current Status, d Decision, reason string) (*Review, error) {
	inScope, err := g.scope.InScope(ctx, reviewer, ownerID)
	if err != nil {
		g.logger.Error("failed to check review scope", "error", err, "reviewer_id", reviewer.UserID, "owner_id", ownerID)
		return nil, internal.NewInternalError("failed to check review scope", err)
	}
	if !auth.CanReview(reviewer.Role, inScope) {
		g.logger.Warn("review denied",
			"reviewer_id", reviewer.UserID,
			"role", reviewer.Role,
			"owner_id", ownerID,
			"in_scope", inScope)
		return nil, internal.ErrForbidden
	}

	to, err := Transition(current, d)
	if err != nil {
		return nil, err
	}

	r := &Review{
		Decision:   d,
		From:       current,
		To:         to,
		ReviewerID: reviewer.UserID,
		At:         g.clock.Now(),
	}
	if d == DecisionReject {
		if note := strings.TrimSpace(reason); note != "" {
			r.Note = &note
		}
	}
	return r, nil
}

// RejectDTO is the body of the reject endpoints. The reason is optional.
type RejectDTO struct {
	Reason string `json:"reason"`
}
