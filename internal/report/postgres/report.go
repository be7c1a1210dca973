package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/worktrack/internal/approval"
	reportDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/report"
	entryDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/timeentry"
	"github.com/frahmantamala/worktrack/internal/core/storage"
	"github.com/frahmantamala/worktrack/internal/report"
	"github.com/frahmantamala/worktrack/internal/timeentry"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func hasDaySession(tx *gorm.DB, orgID, userID int64, date string) (bool, error) {
	var n int64
	err := tx.Model(&entryDatamodel.TimeEntry{}).
		Where("org_id = ? AND user_id = ? AND entry_date = ? AND type = ?", orgID, userID, date, string(timeentry.TypeDaySession)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count day sessions: %w", err)
	}
	return n > 0, nil
}

func reportExists(tx *gorm.DB, orgID, userID int64, date string) (bool, error) {
	var n int64
	err := tx.Model(&reportDatamodel.DailyReport{}).
		Where("org_id = ? AND user_id = ? AND report_date = ?", orgID, userID, date).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count reports: %w", err)
	}
	return n > 0, nil
}

func (r *ReportRepository) HasDaySession(ctx context.Context, orgID, userID int64, date string) (bool, error) {
	return hasDaySession(r.db.WithContext(ctx), orgID, userID, date)
}

func (r *ReportRepository) Exists(ctx context.Context, orgID, userID int64, date string) (bool, error) {
	return reportExists(r.db.WithContext(ctx), orgID, userID, date)
}

func (r *ReportRepository) Create(ctx context.Context, s *report.Submission) error {
	rep := s.Report
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		started, err := hasDaySession(tx, rep.OrgID, rep.UserID, rep.ReportDate)
		if err != nil {
			return err
		}
		if !started {
			return report.ErrDayNotStarted
		}
		exists, err := reportExists(tx, rep.OrgID, rep.UserID, rep.ReportDate)
		if err != nil {
			return err
		}
		if exists {
			return report.ErrAlreadySubmitted
		}

		row := report.ToDataModel(rep)
		if err := tx.Create(row).Error; err != nil {
			if storage.IsUniqueViolation(err) {
				return report.ErrAlreadySubmitted
			}
			return fmt.Errorf("insert report: %w", err)
		}
		rep.ID = row.ID

		if len(s.ExtraWork) > 0 {
			items := make([]*reportDatamodel.ExtraWorkItem, 0, len(s.ExtraWork))
			for _, it := range s.ExtraWork {
				it.ReportID = row.ID
				items = append(items, report.ExtraWorkToDataModel(it))
			}
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("insert extra work: %w", err)
			}
			for i, it := range s.ExtraWork {
				it.ID = items[i].ID
			}
		}

		if len(s.Answers) > 0 {
			answers := make([]*reportDatamodel.FormAnswer, 0, len(s.Answers))
			for _, a := range s.Answers {
				a.ReportID = row.ID
				answers = append(answers, report.AnswerToDataModel(a))
			}
			if err := tx.Create(&answers).Error; err != nil {
				return fmt.Errorf("insert answers: %w", err)
			}
			for i, a := range s.Answers {
				a.ID = answers[i].ID
			}
		}
		return nil
	})
}

func (r *ReportRepository) Get(ctx context.Context, orgID, id int64) (*report.Report, error) {
	var row reportDatamodel.DailyReport
	if err := r.db.WithContext(ctx).Where("id = ? AND org_id = ?", id, orgID).First(&row).Error; err != nil {
		if storage.IsNotFound(err) {
			return nil, report.ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report.FromDataModel(&row), nil
}

func (r *ReportRepository) ExtraWork(ctx context.Context, reportID int64) ([]*report.ExtraWorkItem, error) {
	var rows []reportDatamodel.ExtraWorkItem
	if err := r.db.WithContext(ctx).Where("report_id = ?", reportID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list extra work: %w", err)
	}
	out := make([]*report.ExtraWorkItem, 0, len(rows))
	for i := range rows {
		out = append(out, report.ExtraWorkFromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *ReportRepository) Answers(ctx context.Context, reportID int64) ([]*report.Answer, error) {
	var rows []reportDatamodel.FormAnswer
	if err := r.db.WithContext(ctx).Where("report_id = ?", reportID).Order("form_id ASC, question_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	out := make([]*report.Answer, 0, len(rows))
	for i := range rows {
		out = append(out, report.AnswerFromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *ReportRepository) History(ctx context.Context, orgID, userID int64, limit int) ([]*report.Report, error) {
	return r.list(r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Order("report_date DESC, id DESC").
		Limit(limit))
}

func (r *ReportRepository) Pending(ctx context.Context, orgID int64, userIDs []int64) ([]*report.Report, error) {
	q := r.db.WithContext(ctx).Where("org_id = ? AND status = ?", orgID, string(approval.StatusSubmitted))
	if userIDs != nil {
		q = q.Where("user_id IN ?", userIDs)
	}
	return r.list(q.Order("report_date ASC, id ASC"))
}

func (r *ReportRepository) list(q *gorm.DB) ([]*report.Report, error) {
	var rows []reportDatamodel.DailyReport
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := make([]*report.Report, 0, len(rows))
	for i := range rows {
		out = append(out, report.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *ReportRepository) Delete(ctx context.Context, orgID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row reportDatamodel.DailyReport
		if err := tx.Where("id = ? AND org_id = ?", id, orgID).First(&row).Error; err != nil {
			if storage.IsNotFound(err) {
				return report.ErrNotFound
			}
			return fmt.Errorf("get report: %w", err)
		}
		if err := tx.Where("report_id = ?", id).Delete(&reportDatamodel.FormAnswer{}).Error; err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		if err := tx.Where("report_id = ?", id).Delete(&reportDatamodel.ExtraWorkItem{}).Error; err != nil {
			return fmt.Errorf("delete extra work: %w", err)
		}
		res := tx.Where("id = ? AND org_id = ?", id, orgID).Delete(&reportDatamodel.DailyReport{})
		if res.Error != nil {
			return fmt.Errorf("delete report: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return report.ErrNotFound
		}
		return nil
	})
}

// Review writes the decision only while the report is still in rv.From.
func (r *ReportRepository) Review(ctx context.Context, orgID, id int64, rv *approval.Review) (*report.Report, error) {
	fields := map[string]interface{}{
		"status":      string(rv.To),
		"reviewed_at": rv.At,
	}
	switch rv.To {
	case approval.StatusApproved:
		at := rv.At
		fields["approved_by_user_id"] = rv.ReviewerID
		fields["approved_at"] = &at
	case approval.StatusRejected:
		fields["rejection_reason"] = rv.Note
	}

	var updated *report.Report
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&reportDatamodel.DailyReport{}).
			Where("id = ? AND org_id = ? AND status = ?", id, orgID, string(rv.From)).
			Updates(fields)
		if res.Error != nil {
			return fmt.Errorf("review report: %w", res.Error)
		}

		var row reportDatamodel.DailyReport
		if err := tx.Where("id = ? AND org_id = ?", id, orgID).First(&row).Error; err != nil {
			if storage.IsNotFound(err) {
				return report.ErrNotFound
			}
			return fmt.Errorf("reload report: %w", err)
		}
		if res.RowsAffected == 0 {
			return report.ErrStatusChanged
		}
		updated = report.FromDataModel(&row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

