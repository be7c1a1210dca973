package timeentry

import (
	"strings"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/core/common/validation"
)

// DayDTO is the optional body of the day-session endpoints. An empty date
// means today.
type DayDTO struct {
	Date string `json:"date"`
}

func (d DayDTO) Validate() *internal.AppError {
	return validation.ValidateDate("date", d.Date)
}

type QuickLogDTO struct {
	TaskID          *int64  `json:"task_id,omitempty"`
	DurationMinutes int64   `json:"duration_minutes"`
	Date            string  `json:"date"`
	Note            *string `json:"note,omitempty"`
}

func (d *QuickLogDTO) Normalize() {
	d.Date = strings.TrimSpace(d.Date)
	if d.Note != nil {
		n := strings.TrimSpace(*d.Note)
		if n == "" {
			d.Note = nil
		} else {
			d.Note = &n
		}
	}
}

// Validate checks duration first so a zero-minute log always reports
// INVALID_DURATION.
func (d QuickLogDTO) Validate() *internal.AppError {
	if err := validation.ValidateDurationMinutes(d.DurationMinutes); err != nil {
		return err
	}
	if err := validation.ValidateDate("date", d.Date); err != nil {
		return err
	}
	v := validation.NewValidator()
	if d.TaskID != nil {
		v.Field("task_id", *d.TaskID).MinInt(1, internal.ErrCodeValidationFailed)
	}
	v.Field("note", derefString(d.Note)).MaxLength(1000)
	return v.Validate()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
