package report

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/worktrack/internal/approval"
	reportDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/report"
	"github.com/frahmantamala/worktrack/internal/form"
	"github.com/frahmantamala/worktrack/internal/task"
	"github.com/frahmantamala/worktrack/internal/timeentry"
)

type Report struct {
	ID               int64           `json:"id"`
	OrgID            int64           `json:"org_id"`
	UserID           int64           `json:"user_id"`
	ReportDate       string          `json:"report_date"`
	Status           approval.Status `json:"status"`
	SubmittedAt      time.Time       `json:"submitted_at"`
	ApprovedByUserID *int64          `json:"approved_by_user_id,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	RejectionReason  *string         `json:"rejection_reason,omitempty"`
	ReviewedAt       *time.Time      `json:"reviewed_at,omitempty"`
}

type ExtraWorkItem struct {
	ID              int64  `json:"id"`
	ReportID        int64  `json:"report_id"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
}

type Answer struct {
	ID            int64    `json:"id"`
	ReportID      int64    `json:"report_id"`
	FormID        int64    `json:"form_id"`
	QuestionID    int64    `json:"question_id"`
	AnswerText    *string  `json:"answer_text,omitempty"`
	AnswerChoices []string `json:"answer_choices,omitempty"`
}

// Filled is true when the answer carries non-blank text or at least one choice.
func (a *Answer) Filled() bool {
	if a == nil {
		return false
	}
	if a.AnswerText != nil && *a.AnswerText != "" {
		return true
	}
	return len(a.AnswerChoices) > 0
}

// Data is the read-only projection of one user's day.
type Data struct {
	Date           string             `json:"date"`
	CompletedTasks []*task.Task       `json:"completed_tasks"`
	TimeEntries    []*timeentry.Entry `json:"time_entries"`
	TotalMinutes   int                `json:"total_minutes"`
	AssignedForms  []*form.Form       `json:"assigned_forms"`
}

type Detail struct {
	Report         *Report            `json:"report"`
	ExtraWork      []*ExtraWorkItem   `json:"extra_work_items"`
	Answers        []*Answer          `json:"form_answers"`
	CompletedTasks []*task.Task       `json:"completed_tasks"`
	TimeEntries    []*timeentry.Entry `json:"time_entries"`
	TotalMinutes   int                `json:"total_minutes"`
}

// Submission is everything written by one submit, in one transaction.
type Submission struct {
	Report    *Report
	ExtraWork []*ExtraWorkItem
	Answers   []*Answer
}

// MissingAnswer names a required question left blank.
type MissingAnswer struct {
	FormID     int64  `json:"form_id"`
	FormTitle  string `json:"form_title"`
	QuestionID int64  `json:"question_id"`
	Prompt     string `json:"prompt"`
}

type MissingAnswers struct {
	Missing []MissingAnswer `json:"missing"`
}

var (
	ErrNotFound         = errors.New("report not found")
	ErrAlreadySubmitted = errors.New("report already exists")
	ErrDayNotStarted    = errors.New("no day session for report date")
	ErrStatusChanged    = errors.New("report status changed")
)

type Repository interface {
	HasDaySession(ctx context.Context, orgID, userID int64, date string) (bool, error)
	Exists(ctx context.Context, orgID, userID int64, date string) (bool, error)
	// Create re-checks the day session and the per-date uniqueness inside
	// its transaction, then writes the report, extra work and answers.
	Create(ctx context.Context, s *Submission) error
	Get(ctx context.Context, orgID, id int64) (*Report, error)
	ExtraWork(ctx context.Context, reportID int64) ([]*ExtraWorkItem, error)
	Answers(ctx context.Context, reportID int64) ([]*Answer, error)
	// History lists the user's reports, newest report date first.
	History(ctx context.Context, orgID, userID int64, limit int) ([]*Report, error)
	// Pending lists submitted reports. A nil userIDs means every member.
	Pending(ctx context.Context, orgID int64, userIDs []int64) ([]*Report, error)
	// Delete removes answers and extra work before the report.
	Delete(ctx context.Context, orgID, id int64) error
	Review(ctx context.Context, orgID, id int64, r *approval.Review) (*Report, error)
}

func ToDataModel(r *Report) *reportDatamodel.DailyReport {
	return &reportDatamodel.DailyReport{
		ID:               r.ID,
		OrgID:            r.OrgID,
		UserID:           r.UserID,
		ReportDate:       r.ReportDate,
		Status:           string(r.Status),
		SubmittedAt:      r.SubmittedAt,
		ApprovedByUserID: r.ApprovedByUserID,
		ApprovedAt:       r.ApprovedAt,
		RejectionReason:  r.RejectionReason,
		ReviewedAt:       r.ReviewedAt,
	}
}

func FromDataModel(row *reportDatamodel.DailyReport) *Report {
	return &Report{
		ID:               row.ID,
		OrgID:            row.OrgID,
		UserID:           row.UserID,
		ReportDate:       row.ReportDate,
		Status:           approval.Status(row.Status),
		SubmittedAt:      row.SubmittedAt,
		ApprovedByUserID: row.ApprovedByUserID,
		ApprovedAt:       row.ApprovedAt,
		RejectionReason:  row.RejectionReason,
		ReviewedAt:       row.ReviewedAt,
	}
}

func ExtraWorkToDataModel(it *ExtraWorkItem) *reportDatamodel.ExtraWorkItem {
	return &reportDatamodel.ExtraWorkItem{
		ID:              it.ID,
		ReportID:        it.ReportID,
		Description:     it.Description,
		DurationMinutes: it.DurationMinutes,
	}
}

func ExtraWorkFromDataModel(row *reportDatamodel.ExtraWorkItem) *ExtraWorkItem {
	return &ExtraWorkItem{
		ID:              row.ID,
		ReportID:        row.ReportID,
		Description:     row.Description,
		DurationMinutes: row.DurationMinutes,
	}
}

func AnswerToDataModel(a *Answer) *reportDatamodel.FormAnswer {
	return &reportDatamodel.FormAnswer{
		ID:            a.ID,
		ReportID:      a.ReportID,
		FormID:        a.FormID,
		QuestionID:    a.QuestionID,
		AnswerText:    a.AnswerText,
		AnswerChoices: a.AnswerChoices,
	}
}

func AnswerFromDataModel(row *reportDatamodel.FormAnswer) *Answer {
	return &Answer{
		ID:            row.ID,
		ReportID:      row.ReportID,
		FormID:        row.FormID,
		QuestionID:    row.QuestionID,
		AnswerText:    row.AnswerText,
		AnswerChoices: row.AnswerChoices,
	}
}
