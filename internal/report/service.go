package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/approval"
	"github.com/frahmantamala/worktrack/internal/auth"
	"github.com/frahmantamala/worktrack/internal/clock"
	"github.com/frahmantamala/worktrack/internal/core/events"
	"github.com/frahmantamala/worktrack/internal/form"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/task"
	"github.com/frahmantamala/worktrack/internal/timeentry"
)

type EntryReader interface {
	ListForDate(ctx context.Context, orgID, userID int64, date string) ([]*timeentry.Entry, error)
}

type TaskReader interface {
	CompletedBetween(ctx context.Context, orgID, userID int64, from, to time.Time) ([]*task.Task, error)
}

type FormResolver interface {
	VisibleForms(ctx context.Context, m *org.Member) ([]*form.Form, error)
}

type Reviewer interface {
	Review(ctx context.Context, reviewer *org.Member, ownerID int64, current approval.Status, d approval.Decision, reason string) (*approval.Review, error)
}

type ScopeLister interface {
	ScopeMemberIDs(ctx context.Context, reviewer *org.Member) ([]int64, error)
}

type Config struct {
	Location        *time.Location
	HistoryLimit    int
	MaxHistoryLimit int
}

type Service struct {
	repo      Repository
	entries   EntryReader
	tasks     TaskReader
	forms     FormResolver
	reviewer  Reviewer
	scope     ScopeLister
	publisher events.Publisher
	clock     clock.Clock
	cfg       Config
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	entries EntryReader,
	tasks TaskReader,
	forms FormResolver,
	reviewer Reviewer,
	scope ScopeLister,
	publisher events.Publisher,
	clk clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 30
	}
	if cfg.MaxHistoryLimit < cfg.HistoryLimit {
		cfg.MaxHistoryLimit = cfg.HistoryLimit
	}
	return &Service{
		repo:      repo,
		entries:   entries,
		tasks:     tasks,
		forms:     forms,
		reviewer:  reviewer,
		scope:     scope,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
		logger:    logger,
	}
}

// GetReportData projects the member's day. It never writes.
func (s *Service) GetReportData(ctx context.Context, m *org.Member, date string) (*Data, error) {
	if date == "" {
		date = clock.Today(s.clock)
	}
	if appErr := validationDate("date", date); appErr != nil {
		return nil, appErr
	}

	data := &Data{Date: date}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data.CompletedTasks, data.TimeEntries, data.TotalMinutes, err = s.dayActivity(gctx, m.OrgID, m.UserID, date)
		return err
	})
	g.Go(func() error {
		forms, err := s.forms.VisibleForms(gctx, m)
		if err != nil {
			return err
		}
		data.AssignedForms = forms
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, s.internalError("failed to build report data", err, "user_id", m.UserID, "date", date)
	}
	return data, nil
}

// dayActivity loads completed tasks and time entries of userID on date.
// Running entries add nothing to the total.
func (s *Service) dayActivity(ctx context.Context, orgID, userID int64, date string) ([]*task.Task, []*timeentry.Entry, int, error) {
	from, to, err := clock.DayBounds(date, s.cfg.Location)
	if err != nil {
		return nil, nil, 0, err
	}

	var (
		tasks   []*task.Task
		entries []*timeentry.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.CompletedBetween(gctx, orgID, userID, from, to)
		if err != nil {
			return fmt.Errorf("completed tasks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		entries, err = s.entries.ListForDate(gctx, orgID, userID, date)
		if err != nil {
			return fmt.Errorf("time entries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, 0, err
	}

	total := 0
	for _, e := range entries {
		total += e.DurationMinutes()
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	if entries == nil {
		entries = []*timeentry.Entry{}
	}
	return tasks, entries, total, nil
}

// Submit checks, in order, the day session, an earlier report, and the
// required answers of every visible form, then writes the report.
func (s *Service) Submit(ctx context.Context, m *org.Member, dto SubmitDTO) (*Report, error) {
	dto.Normalize()
	if dto.ReportDate == "" {
		dto.ReportDate = clock.Today(s.clock)
	}
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}
	date := dto.ReportDate

	started, err := s.repo.HasDaySession(ctx, m.OrgID, m.UserID, date)
	if err != nil {
		return nil, s.internalError("failed to check day session", err, "user_id", m.UserID, "date", date)
	}
	if !started {
		s.logger.Warn("report submitted before day session", "user_id", m.UserID, "org_id", m.OrgID, "date", date)
		return nil, internal.ErrDayNotStarted
	}

	exists, err := s.repo.Exists(ctx, m.OrgID, m.UserID, date)
	if err != nil {
		return nil, s.internalError("failed to check existing report", err, "user_id", m.UserID, "date", date)
	}
	if exists {
		s.logger.Warn("report already submitted", "user_id", m.UserID, "org_id", m.OrgID, "date", date)
		return nil, internal.ErrAlreadySubmitted
	}

	forms, err := s.forms.VisibleForms(ctx, m)
	if err != nil {
		return nil, s.internalError("failed to resolve forms", err, "user_id", m.UserID)
	}
	answers, appErr := matchAnswers(forms, dto.FormAnswers)
	if appErr != nil {
		s.logger.Warn("report answers rejected", "user_id", m.UserID, "date", date, "code", appErr.Code)
		return nil, appErr
	}

	now := s.clock.Now()
	sub := &Submission{
		Report: &Report{
			OrgID:       m.OrgID,
			UserID:      m.UserID,
			ReportDate:  date,
			Status:      approval.StatusSubmitted,
			SubmittedAt: now,
		},
		Answers: answers,
	}
	for _, it := range dto.ExtraWorkItems {
		sub.ExtraWork = append(sub.ExtraWork, &ExtraWorkItem{
			Description:     it.Description,
			DurationMinutes: int(it.DurationMinutes),
		})
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		switch {
		case errors.Is(err, ErrAlreadySubmitted):
			s.logger.Warn("concurrent report submission", "user_id", m.UserID, "date", date)
			return nil, internal.ErrAlreadySubmitted
		case errors.Is(err, ErrDayNotStarted):
			return nil, internal.ErrDayNotStarted
		}
		return nil, s.internalError("failed to save report", err, "user_id", m.UserID, "date", date)
	}

	s.logger.Info("report submitted",
		"report_id", sub.Report.ID,
		"user_id", m.UserID,
		"org_id", m.OrgID,
		"date", date,
		"extra_work_items", len(sub.ExtraWork),
		"answers", len(sub.Answers))
	s.publish(ctx, events.NewReportSubmittedEvent(m.OrgID, m.UserID, sub.Report.ID, date, now))
	return sub.Report, nil
}

// matchAnswers ties each answer to its visible form and lists every required
// question left blank. Answers to questions outside the visible forms are
// rejected.
func matchAnswers(forms []*form.Form, given []AnswerDTO) ([]*Answer, *internal.AppError) {
	byQuestion := make(map[int64]AnswerDTO, len(given))
	for _, a := range given {
		byQuestion[a.QuestionID] = a
	}

	var (
		answers []*Answer
		missing []MissingAnswer
		invalid []internal.ValidationError
	)
	known := make(map[int64]bool)
	for _, f := range forms {
		for _, q := range f.Questions {
			known[q.ID] = true
			dto, ok := byQuestion[q.ID]
			a := &Answer{FormID: f.ID, QuestionID: q.ID, AnswerText: dto.AnswerText, AnswerChoices: dto.AnswerChoices}

			if q.Required && (!ok || !a.Filled()) {
				missing = append(missing, MissingAnswer{FormID: f.ID, FormTitle: f.Title, QuestionID: q.ID, Prompt: q.Prompt})
				continue
			}
			if !ok {
				continue
			}
			if bad := outsideChoices(q.Choices, a.AnswerChoices); bad != "" {
				invalid = append(invalid, internal.ValidationError{
					Field:   fmt.Sprintf("form_answers[question_id=%d]", q.ID),
					Message: fmt.Sprintf("%q is not a choice of this question", bad),
					Code:    string(internal.ErrCodeValidationFailed),
				})
				continue
			}
			answers = append(answers, a)
		}
	}

	if len(missing) > 0 {
		return nil, internal.ErrMissingRequiredAnswers.WithDetails(MissingAnswers{Missing: missing})
	}
	for _, a := range given {
		if !known[a.QuestionID] {
			invalid = append(invalid, internal.ValidationError{
				Field:   fmt.Sprintf("form_answers[question_id=%d]", a.QuestionID),
				Message: "question is not part of a form assigned to you",
				Code:    string(internal.ErrCodeValidationFailed),
			})
		}
	}
	if len(invalid) > 0 {
		return nil, internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: invalid})
	}
	return answers, nil
}

func outsideChoices(allowed, picked []string) string {
	if len(allowed) == 0 {
		return ""
	}
	set := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		set[c] = true
	}
	for _, c := range picked {
		if !set[c] {
			return c
		}
	}
	return ""
}

// DeleteReport removes a report with its extra work and answers. Authors
// lose the right once the report is approved; admins and owners keep it.
func (s *Service) DeleteReport(ctx context.Context, m *org.Member, id int64) error {
	r, err := s.get(ctx, m.OrgID, id)
	if err != nil {
		return err
	}
	if !auth.CanDeleteReport(m.Role, r.UserID == m.UserID, r.Status == approval.StatusApproved) {
		s.logger.Warn("delete report denied", "report_id", id, "user_id", m.UserID, "role", m.Role, "status", r.Status)
		return internal.ErrForbidden
	}

	if err := s.repo.Delete(ctx, m.OrgID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.ErrNotFound
		}
		return s.internalError("failed to delete report", err, "report_id", id)
	}

	s.logger.Info("report deleted", "report_id", id, "owner_id", r.UserID, "by", m.UserID)
	s.publish(ctx, events.NewReportDeletedEvent(m.OrgID, m.UserID, id, r.UserID, s.clock.Now()))
	return nil
}

// GetHistory pages the caller's own reports. limit falls back to the
// configured default and is capped at the configured maximum.
func (s *Service) GetHistory(ctx context.Context, m *org.Member, limit int) ([]*Report, error) {
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}
	if limit > s.cfg.MaxHistoryLimit {
		limit = s.cfg.MaxHistoryLimit
	}

	reports, err := s.repo.History(ctx, m.OrgID, m.UserID, limit)
	if err != nil {
		return nil, s.internalError("failed to load report history", err, "user_id", m.UserID)
	}
	return reports, nil
}

func (s *Service) GetDetail(ctx context.Context, m *org.Member, id int64) (*Detail, error) {
	r, err := s.get(ctx, m.OrgID, id)
	if err != nil {
		return nil, err
	}
	if !auth.CanViewReport(m.Role, r.UserID == m.UserID) {
		s.logger.Warn("view report denied", "report_id", id, "user_id", m.UserID, "role", m.Role)
		return nil, internal.ErrForbidden
	}

	detail := &Detail{Report: r}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.repo.ExtraWork(gctx, id)
		detail.ExtraWork = items
		return err
	})
	g.Go(func() error {
		answers, err := s.repo.Answers(gctx, id)
		detail.Answers = answers
		return err
	})
	g.Go(func() error {
		var err error
		detail.CompletedTasks, detail.TimeEntries, detail.TotalMinutes, err = s.dayActivity(gctx, r.OrgID, r.UserID, r.ReportDate)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.internalError("failed to load report detail", err, "report_id", id)
	}
	return detail, nil
}

// PendingReviews lists submitted reports the reviewer may decide on.
func (s *Service) PendingReviews(ctx context.Context, m *org.Member) ([]*Report, error) {
	if !m.Role.ManagerTier() {
		return nil, internal.ErrForbidden
	}
	ids, err := s.scope.ScopeMemberIDs(ctx, m)
	if err != nil {
		return nil, s.internalError("failed to load review scope", err, "user_id", m.UserID)
	}
	if ids != nil && len(ids) == 0 {
		return []*Report{}, nil
	}

	reports, err := s.repo.Pending(ctx, m.OrgID, ids)
	if err != nil {
		return nil, s.internalError("failed to list pending reports", err, "user_id", m.UserID)
	}
	return reports, nil
}

func (s *Service) Approve(ctx context.Context, m *org.Member, id int64) (*Report, error) {
	return s.review(ctx, m, id, approval.DecisionApprove, "")
}

func (s *Service) Reject(ctx context.Context, m *org.Member, id int64, reason string) (*Report, error) {
	return s.review(ctx, m, id, approval.DecisionReject, reason)
}

func (s *Service) review(ctx context.Context, m *org.Member, id int64, d approval.Decision, reason string) (*Report, error) {
	r, err := s.get(ctx, m.OrgID, id)
	if err != nil {
		return nil, err
	}

	rv, err := s.reviewer.Review(ctx, m, r.UserID, r.Status, d, reason)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Review(ctx, m.OrgID, id, rv)
	if err != nil {
		switch {
		case errors.Is(err, ErrStatusChanged):
			s.logger.Warn("report reviewed concurrently", "report_id", id, "reviewer_id", m.UserID)
			return nil, internal.ErrAlreadyProcessed
		case errors.Is(err, ErrNotFound):
			return nil, internal.ErrNotFound
		}
		return nil, s.internalError("failed to review report", err, "report_id", id)
	}

	s.logger.Info("report reviewed", "report_id", id, "status", updated.Status, "reviewer_id", m.UserID)
	s.publish(ctx, events.NewReportReviewedEvent(m.OrgID, m.UserID, id, updated.UserID, string(updated.Status), rv.At))
	return updated, nil
}

func (s *Service) get(ctx context.Context, orgID, id int64) (*Report, error) {
	r, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.ErrNotFound
		}
		return nil, s.internalError("failed to load report", err, "report_id", id)
	}
	return r, nil
}

func (s *Service) internalError(msg string, err error, attrs ...any) *internal.AppError {
	s.logger.Error(msg, append([]any{"error", err}, attrs...)...)
	return internal.NewInternalError(msg, err)
}

func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", ev.EventType())
	}
}

func validationDate(field, date string) *internal.AppError {
	if !clock.IsDate(date) {
		return internal.ErrInvalidDate.WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
			{Field: field, Message: field + " must be formatted as YYYY-MM-DD", Code: string(internal.ErrCodeInvalidDate)},
		}})
	}
	return nil
}
