package report

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/core/common/validation"
)

type ExtraWorkDTO struct {
	Description     string `json:"description"`
	DurationMinutes int64  `json:"duration_minutes"`
}

type AnswerDTO struct {
	QuestionID    int64    `json:"question_id"`
	AnswerText    *string  `json:"answer_text,omitempty"`
	AnswerChoices []string `json:"answer_choices,omitempty"`
}

type SubmitDTO struct {
	ReportDate     string         `json:"report_date"`
	ExtraWorkItems []ExtraWorkDTO `json:"extra_work_items"`
	FormAnswers    []AnswerDTO    `json:"form_answers"`
}

// Normalize trims input, drops blank extra-work rows and blank choices, and
// keeps the last answer given for a question.
func (d *SubmitDTO) Normalize() {
	d.ReportDate = strings.TrimSpace(d.ReportDate)

	items := make([]ExtraWorkDTO, 0, len(d.ExtraWorkItems))
	for _, it := range d.ExtraWorkItems {
		it.Description = strings.TrimSpace(it.Description)
		if it.Description == "" {
			continue
		}
		items = append(items, it)
	}
	d.ExtraWorkItems = items

	pos := make(map[int64]int, len(d.FormAnswers))
	answers := make([]AnswerDTO, 0, len(d.FormAnswers))
	for _, a := range d.FormAnswers {
		if a.AnswerText != nil {
			t := strings.TrimSpace(*a.AnswerText)
			a.AnswerText = &t
		}
		choices := make([]string, 0, len(a.AnswerChoices))
		for _, c := range a.AnswerChoices {
			if c = strings.TrimSpace(c); c != "" {
				choices = append(choices, c)
			}
		}
		a.AnswerChoices = choices

		if i, ok := pos[a.QuestionID]; ok {
			answers[i] = a
			continue
		}
		pos[a.QuestionID] = len(answers)
		answers = append(answers, a)
	}
	d.FormAnswers = answers
}

func (d SubmitDTO) Validate() *internal.AppError {
	if err := validation.ValidateDate("report_date", d.ReportDate); err != nil {
		return err
	}

	v := validation.NewValidator()
	for i, it := range d.ExtraWorkItems {
		v.Field(fmt.Sprintf("extra_work_items[%d].description", i), it.Description).MaxLength(1000)
		v.Field(fmt.Sprintf("extra_work_items[%d].duration_minutes", i), it.DurationMinutes).
			MinInt(0, internal.ErrCodeValidationFailed).
			MaxInt(24*60, internal.ErrCodeValidationFailed)
	}
	for i, a := range d.FormAnswers {
		v.Field(fmt.Sprintf("form_answers[%d].question_id", i), a.QuestionID).Required()
	}
	return v.Validate()
}
