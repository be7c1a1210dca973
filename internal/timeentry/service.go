package timeentry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/approval"
	"github.com/frahmantamala/worktrack/internal/auth"
	"github.com/frahmantamala/worktrack/internal/clock"
	"github.com/frahmantamala/worktrack/internal/core/events"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/task"
)

type TaskLookup interface {
	GetByID(ctx context.Context, orgID, taskID int64) (*task.Task, error)
}

// Reviewer authorizes approve/reject decisions.
type Reviewer interface {
	Review(ctx context.Context, reviewer *org.Member, ownerID int64, current approval.Status, d approval.Decision, reason string) (*approval.Review, error)
}

type Service struct {
	repo      Repository
	tasks     TaskLookup
	reviewer  Reviewer
	publisher events.Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

func NewService(repo Repository, tasks TaskLookup, reviewer Reviewer, publisher events.Publisher, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		tasks:     tasks,
		reviewer:  reviewer,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

func (s *Service) dateOrToday(date string) (string, error) {
	if date == "" {
		return clock.Today(s.clock), nil
	}
	if err := validationDate(date); err != nil {
		return "", err
	}
	return date, nil
}

func (s *Service) OpenDaySession(ctx context.Context, m *org.Member, date string) (*Entry, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	e := &Entry{
		OrgID:     m.OrgID,
		UserID:    m.UserID,
		Date:      date,
		Type:      TypeDaySession,
		State:     Running{StartAt: now},
		Status:    approval.StatusPending,
		CreatedAt: now,
	}
	if err := s.repo.Open(ctx, e); err != nil {
		if errors.Is(err, ErrAlreadyOpen) {
			s.logger.Warn("day session already open", "user_id", m.UserID, "org_id", m.OrgID, "date", date)
			return nil, internal.ErrAlreadyOpen
		}
		s.logger.Error("failed to open day session", "error", err, "user_id", m.UserID, "org_id", m.OrgID)
		return nil, internal.NewInternalError("failed to open day session", err)
	}

	s.logger.Info("day session opened", "entry_id", e.ID, "user_id", m.UserID, "org_id", m.OrgID, "date", date)
	s.publish(ctx, events.NewTimeEntryOpenedEvent(m.OrgID, m.UserID, e.ID, string(e.Type), nil, now))
	return e, nil
}

// CloseDaySession ends the open session for date. Running task timers are
// left alone.
func (s *Service) CloseDaySession(ctx context.Context, m *org.Member, date string) (*Entry, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return nil, err
	}

	q := OpenQuery{OrgID: m.OrgID, UserID: m.UserID, Type: TypeDaySession, Date: date}
	e, err := s.repo.CloseOpen(ctx, q, s.clock.Now())
	if err != nil {
		if errors.Is(err, ErrNoOpenEntry) {
			s.logger.Warn("no open day session", "user_id", m.UserID, "org_id", m.OrgID, "date", date)
			return nil, internal.ErrNoOpenSession
		}
		s.logger.Error("failed to close day session", "error", err, "user_id", m.UserID, "org_id", m.OrgID)
		return nil, internal.NewInternalError("failed to close day session", err)
	}

	s.logger.Info("day session closed", "entry_id", e.ID, "user_id", m.UserID, "duration_minutes", e.DurationMinutes())
	s.publishClosed(ctx, m, e, false)
	return e, nil
}

// StartTaskTimer requires today's day session, checks the task, then swaps
// any running timer of the user for a new one on taskID. The repository
// re-checks the day session inside the swap.
func (s *Service) StartTaskTimer(ctx context.Context, m *org.Member, taskID int64) (*Entry, error) {
	today := clock.Today(s.clock)

	if _, err := s.repo.FindOpen(ctx, OpenQuery{OrgID: m.OrgID, UserID: m.UserID, Type: TypeDaySession, Date: today}); err != nil {
		if errors.Is(err, ErrNoOpenEntry) {
			s.logger.Warn("timer start before day session", "user_id", m.UserID, "org_id", m.OrgID, "date", today)
			return nil, internal.ErrDayNotStarted
		}
		s.logger.Error("failed to look up day session", "error", err, "user_id", m.UserID)
		return nil, internal.NewInternalError("failed to look up day session", err)
	}

	if err := s.checkTask(ctx, m, taskID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	tid := taskID
	next := &Entry{
		OrgID:     m.OrgID,
		UserID:    m.UserID,
		Date:      today,
		Type:      TypeTaskTimer,
		TaskID:    &tid,
		State:     Running{StartAt: now},
		Status:    approval.StatusPending,
		CreatedAt: now,
	}

	closed, err := s.repo.SwitchTimer(ctx, next, now)
	if err != nil {
		if errors.Is(err, ErrAlreadyOpen) {
			s.logger.Warn("concurrent timer start", "user_id", m.UserID, "task_id", taskID)
			return nil, internal.ErrAlreadyOpen
		}
		if errors.Is(err, ErrDayNotOpen) {
			s.logger.Warn("day session closed during timer start", "user_id", m.UserID, "org_id", m.OrgID, "date", today)
			return nil, internal.ErrDayNotStarted
		}
		s.logger.Error("failed to start task timer", "error", err, "user_id", m.UserID, "task_id", taskID)
		return nil, internal.NewInternalError("failed to start task timer", err)
	}

	if closed != nil {
		s.logger.Info("running timer superseded",
			"entry_id", closed.ID,
			"task_id", closed.TaskID,
			"duration_minutes", closed.DurationMinutes())
		s.publishClosed(ctx, m, closed, true)
	}
	s.logger.Info("task timer started", "entry_id", next.ID, "user_id", m.UserID, "task_id", taskID)
	s.publish(ctx, events.NewTimeEntryOpenedEvent(m.OrgID, m.UserID, next.ID, string(next.Type), next.TaskID, now))
	return next, nil
}

func (s *Service) StopTaskTimer(ctx context.Context, m *org.Member, taskID int64) (*Entry, error) {
	tid := taskID
	q := OpenQuery{OrgID: m.OrgID, UserID: m.UserID, Type: TypeTaskTimer, TaskID: &tid}
	e, err := s.repo.CloseOpen(ctx, q, s.clock.Now())
	if err != nil {
		if errors.Is(err, ErrNoOpenEntry) {
			s.logger.Warn("no active timer", "user_id", m.UserID, "task_id", taskID)
			return nil, internal.ErrNoActiveTimer
		}
		s.logger.Error("failed to stop task timer", "error", err, "user_id", m.UserID, "task_id", taskID)
		return nil, internal.NewInternalError("failed to stop task timer", err)
	}

	s.logger.Info("task timer stopped", "entry_id", e.ID, "task_id", taskID, "duration_minutes", e.DurationMinutes())
	s.publishClosed(ctx, m, e, false)
	return e, nil
}

// QuickLog records a closed manual entry. Manual entries never conflict
// with each other or with running timers.
func (s *Service) QuickLog(ctx context.Context, m *org.Member, dto QuickLogDTO) (*Entry, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	date := dto.Date
	if date == "" {
		date = clock.Today(s.clock)
	}
	if dto.TaskID != nil {
		if err := s.checkTask(ctx, m, *dto.TaskID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	e := &Entry{
		OrgID:     m.OrgID,
		UserID:    m.UserID,
		Date:      date,
		Type:      TypeManual,
		TaskID:    dto.TaskID,
		State:     Closed{DurationMinutes: int(dto.DurationMinutes)},
		Note:      dto.Note,
		Status:    approval.StatusPending,
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("failed to create manual entry", "error", err, "user_id", m.UserID)
		return nil, internal.NewInternalError("failed to create manual entry", err)
	}

	s.logger.Info("manual entry logged", "entry_id", e.ID, "user_id", m.UserID, "date", date, "duration_minutes", dto.DurationMinutes)
	s.publishClosed(ctx, m, e, false)
	return e, nil
}

func (s *Service) ListForDate(ctx context.Context, m *org.Member, date string) ([]*Entry, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListForDate(ctx, m.OrgID, m.UserID, date)
	if err != nil {
		s.logger.Error("failed to list entries", "error", err, "user_id", m.UserID, "date", date)
		return nil, internal.NewInternalError("failed to list time entries", err)
	}
	return entries, nil
}

func (s *Service) ListActive(ctx context.Context, m *org.Member) ([]*Entry, error) {
	entries, err := s.repo.ListActive(ctx, m.OrgID, m.UserID)
	if err != nil {
		s.logger.Error("failed to list active entries", "error", err, "user_id", m.UserID)
		return nil, internal.NewInternalError("failed to list active entries", err)
	}
	return entries, nil
}

// DeleteEntry removes an entry, running or not, for its owner or any
// manager-tier member.
func (s *Service) DeleteEntry(ctx context.Context, m *org.Member, id int64) error {
	e, err := s.get(ctx, m.OrgID, id)
	if err != nil {
		return err
	}
	if !auth.CanActOnTimeEntry(m.Role, e.UserID == m.UserID) {
		s.logger.Warn("delete entry denied", "entry_id", id, "user_id", m.UserID, "role", m.Role)
		return internal.ErrForbidden
	}

	if err := s.repo.Delete(ctx, m.OrgID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.ErrNotFound
		}
		s.logger.Error("failed to delete entry", "error", err, "entry_id", id)
		return internal.NewInternalError("failed to delete time entry", err)
	}

	s.logger.Info("time entry deleted", "entry_id", id, "owner_id", e.UserID, "by", m.UserID, "running", e.Running())
	return nil
}

func (s *Service) Approve(ctx context.Context, m *org.Member, id int64) (*Entry, error) {
	return s.review(ctx, m, id, approval.DecisionApprove, "")
}

func (s *Service) Reject(ctx context.Context, m *org.Member, id int64, reason string) (*Entry, error) {
	return s.review(ctx, m, id, approval.DecisionReject, reason)
}

func (s *Service) review(ctx context.Context, m *org.Member, id int64, d approval.Decision, reason string) (*Entry, error) {
	e, err := s.get(ctx, m.OrgID, id)
	if err != nil {
		return nil, err
	}

	r, err := s.reviewer.Review(ctx, m, e.UserID, e.Status, d, reason)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Review(ctx, m.OrgID, id, r)
	if err != nil {
		switch {
		case errors.Is(err, ErrStatusChanged):
			s.logger.Warn("entry reviewed concurrently", "entry_id", id, "reviewer_id", m.UserID)
			return nil, internal.ErrAlreadyProcessed
		case errors.Is(err, ErrNotFound):
			return nil, internal.ErrNotFound
		}
		s.logger.Error("failed to review entry", "error", err, "entry_id", id)
		return nil, internal.NewInternalError("failed to review time entry", err)
	}

	s.logger.Info("time entry reviewed", "entry_id", id, "status", updated.Status, "reviewer_id", m.UserID)
	s.publish(ctx, events.NewTimeEntryReviewedEvent(m.OrgID, m.UserID, id, updated.UserID, string(updated.Status), r.At))
	return updated, nil
}

func (s *Service) get(ctx context.Context, orgID, id int64) (*Entry, error) {
	e, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrNotFound
		}
		s.logger.Error("failed to load entry", "error", err, "entry_id", id)
		return nil, internal.NewInternalError("failed to load time entry", err)
	}
	return e, nil
}

// checkTask enforces that the task exists in the org and, for employees,
// is assigned to the caller.
func (s *Service) checkTask(ctx context.Context, m *org.Member, taskID int64) error {
	t, err := s.tasks.GetByID(ctx, m.OrgID, taskID)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			s.logger.Warn("task not found", "task_id", taskID, "org_id", m.OrgID)
			return internal.ErrTaskNotFound
		}
		s.logger.Error("failed to load task", "error", err, "task_id", taskID)
		return internal.NewInternalError("failed to load task", err)
	}
	if auth.MustOwnTask(m.Role) && !t.AssignedTo(m.UserID) {
		s.logger.Warn("task not assigned to caller", "task_id", taskID, "user_id", m.UserID)
		return internal.ErrForbidden
	}
	return nil
}

func (s *Service) publishClosed(ctx context.Context, m *org.Member, e *Entry, auto bool) {
	at := s.clock.Now()
	if end := e.EndAt(); end != nil {
		at = *end
	}
	s.publish(ctx, events.NewTimeEntryClosedEvent(m.OrgID, e.UserID, e.ID, string(e.Type), e.DurationMinutes(), auto, at))
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", ev.EventType())
	}
}

func validationDate(date string) error {
	if appErr := (DayDTO{Date: date}).Validate(); appErr != nil {
		return appErr
	}
	return nil
}
