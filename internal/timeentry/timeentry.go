package timeentry

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/frahmantamala/worktrack/internal/approval"
	"github.com/frahmantamala/worktrack/internal/clock"
	entryDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/timeentry"
)

type Type string

const (
	TypeDaySession         Type = "day_session"
	TypeTaskTimer          Type = "task_timer"
	TypeManual             Type = "manual"
	TypeAutoTaskCompletion Type = "auto_task_completion"
)

// State is either Running or Closed.
type State interface {
	isState()
}

type Running struct {
	StartAt time.Time
}

// Closed entries created by quick log carry no start or end.
type Closed struct {
	StartAt         *time.Time
	EndAt           *time.Time
	DurationMinutes int
}

func (Running) isState() {}
func (Closed) isState()  {}

// Close ends a running state at end. The duration is computed once here and
// never recomputed.
func (r Running) Close(end time.Time) Closed {
	start := r.StartAt
	return Closed{
		StartAt:         &start,
		EndAt:           &end,
		DurationMinutes: clock.Minutes(start, end),
	}
}

type Entry struct {
	ID         int64
	OrgID      int64
	UserID     int64
	Date       string
	Type       Type
	TaskID     *int64
	State      State
	Note       *string
	Status     approval.Status
	ReviewerID *int64
	ReviewNote *string
	ReviewedAt *time.Time
	CreatedAt  time.Time
}

func (e *Entry) Running() bool {
	_, ok := e.State.(Running)
	return ok
}

// DurationMinutes is the closed duration; running entries count as zero.
func (e *Entry) DurationMinutes() int {
	if c, ok := e.State.(Closed); ok {
		return c.DurationMinutes
	}
	return 0
}

func (e *Entry) StartAt() *time.Time {
	switch s := e.State.(type) {
	case Running:
		t := s.StartAt
		return &t
	case Closed:
		return s.StartAt
	}
	return nil
}

func (e *Entry) EndAt() *time.Time {
	if c, ok := e.State.(Closed); ok {
		return c.EndAt
	}
	return nil
}

type entryJSON struct {
	ID              int64           `json:"id"`
	OrgID           int64           `json:"org_id"`
	UserID          int64           `json:"user_id"`
	Date            string          `json:"date"`
	Type            Type            `json:"type"`
	TaskID          *int64          `json:"task_id"`
	Running         bool            `json:"running"`
	StartAt         *time.Time      `json:"start_at"`
	EndAt           *time.Time      `json:"end_at"`
	DurationMinutes *int            `json:"duration_minutes"`
	Note            *string         `json:"note,omitempty"`
	Status          approval.Status `json:"status"`
	ReviewerID      *int64          `json:"reviewer_id,omitempty"`
	ReviewNote      *string         `json:"review_note,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MarshalJSON flattens the state; duration_minutes is null while running.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		ID:         e.ID,
		OrgID:      e.OrgID,
		UserID:     e.UserID,
		Date:       e.Date,
		Type:       e.Type,
		TaskID:     e.TaskID,
		Running:    e.Running(),
		StartAt:    e.StartAt(),
		EndAt:      e.EndAt(),
		Note:       e.Note,
		Status:     e.Status,
		ReviewerID: e.ReviewerID,
		ReviewNote: e.ReviewNote,
		ReviewedAt: e.ReviewedAt,
		CreatedAt:  e.CreatedAt,
	}
	if !out.Running {
		d := e.DurationMinutes()
		out.DurationMinutes = &d
	}
	return json.Marshal(out)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Entry{
		ID:         in.ID,
		OrgID:      in.OrgID,
		UserID:     in.UserID,
		Date:       in.Date,
		Type:       in.Type,
		TaskID:     in.TaskID,
		Note:       in.Note,
		Status:     in.Status,
		ReviewerID: in.ReviewerID,
		ReviewNote: in.ReviewNote,
		ReviewedAt: in.ReviewedAt,
		CreatedAt:  in.CreatedAt,
	}
	e.State = stateOf(in.StartAt, in.EndAt, in.DurationMinutes)
	return nil
}

func stateOf(start, end *time.Time, minutes *int) State {
	if end == nil && minutes == nil {
		r := Running{}
		if start != nil {
			r.StartAt = *start
		}
		return r
	}
	c := Closed{StartAt: start, EndAt: end}
	if minutes != nil {
		c.DurationMinutes = *minutes
	}
	return c
}

var (
	ErrNotFound      = errors.New("time entry not found")
	ErrAlreadyOpen   = errors.New("open entry already exists")
	ErrNoOpenEntry   = errors.New("no open entry")
	ErrStatusChanged = errors.New("entry status changed")
	ErrDayNotOpen    = errors.New("no open day session for timer date")
)

// OpenQuery selects the running entry of one kind. Date and TaskID narrow
// the match when set.
type OpenQuery struct {
	OrgID  int64
	UserID int64
	Type   Type
	Date   string
	TaskID *int64
}

type Repository interface {
	// Open inserts a running entry. ErrAlreadyOpen when the partial unique
	// index rejects it.
	Open(ctx context.Context, e *Entry) error
	// Create inserts an already closed entry.
	Create(ctx context.Context, e *Entry) error
	FindOpen(ctx context.Context, q OpenQuery) (*Entry, error)
	// CloseOpen closes the entry matched by q at end. ErrNoOpenEntry when
	// nothing is running.
	CloseOpen(ctx context.Context, q OpenQuery, end time.Time) (*Entry, error)
	// SwitchTimer closes the user's running task timer, if any, and opens
	// next in the same transaction. The closed entry is nil when no timer
	// was running. ErrDayNotOpen when no day session is open on next.Date
	// at write time.
	SwitchTimer(ctx context.Context, next *Entry, at time.Time) (*Entry, error)
	Get(ctx context.Context, orgID, id int64) (*Entry, error)
	ListForDate(ctx context.Context, orgID, userID int64, date string) ([]*Entry, error)
	ListActive(ctx context.Context, orgID, userID int64) ([]*Entry, error)
	Delete(ctx context.Context, orgID, id int64) error
	// Review writes a decision if the status is still r.From.
	// ErrStatusChanged otherwise.
	Review(ctx context.Context, orgID, id int64, r *approval.Review) (*Entry, error)
}

func ToDataModel(e *Entry) *entryDatamodel.TimeEntry {
	row := &entryDatamodel.TimeEntry{
		ID:         e.ID,
		OrgID:      e.OrgID,
		UserID:     e.UserID,
		EntryDate:  e.Date,
		Type:       string(e.Type),
		TaskID:     e.TaskID,
		Note:       e.Note,
		Status:     string(e.Status),
		ReviewerID: e.ReviewerID,
		ReviewNote: e.ReviewNote,
		ReviewedAt: e.ReviewedAt,
		CreatedAt:  e.CreatedAt,
	}
	switch s := e.State.(type) {
	case Running:
		start := s.StartAt
		row.StartAt = &start
	case Closed:
		d := s.DurationMinutes
		row.StartAt = s.StartAt
		row.EndAt = s.EndAt
		row.DurationMinutes = &d
	}
	return row
}

func FromDataModel(row *entryDatamodel.TimeEntry) *Entry {
	return &Entry{
		ID:         row.ID,
		OrgID:      row.OrgID,
		UserID:     row.UserID,
		Date:       row.EntryDate,
		Type:       Type(row.Type),
		TaskID:     row.TaskID,
		State:      stateOf(row.StartAt, row.EndAt, row.DurationMinutes),
		Note:       row.Note,
		Status:     approval.Status(row.Status),
		ReviewerID: row.ReviewerID,
		ReviewNote: row.ReviewNote,
		ReviewedAt: row.ReviewedAt,
		CreatedAt:  row.CreatedAt,
	}
}
