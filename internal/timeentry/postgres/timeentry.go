package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/worktrack/internal/approval"
	entryDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/timeentry"
	"github.com/frahmantamala/worktrack/internal/core/storage"
	"github.com/frahmantamala/worktrack/internal/timeentry"
)

// TimeEntryRepository relies on two partial unique indexes (see
// db/migrations) for the single-open-entry rules.
type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) Open(ctx context.Context, e *timeentry.Entry) error {
	return insertOpen(r.db.WithContext(ctx), e)
}

func insertOpen(tx *gorm.DB, e *timeentry.Entry) error {
	row := timeentry.ToDataModel(e)
	if err := tx.Create(row).Error; err != nil {
		if storage.IsUniqueViolation(err) {
			return timeentry.ErrAlreadyOpen
		}
		return fmt.Errorf("insert open entry: %w", err)
	}
	e.ID = row.ID
	e.CreatedAt = row.CreatedAt
	return nil
}

func (r *TimeEntryRepository) Create(ctx context.Context, e *timeentry.Entry) error {
	row := timeentry.ToDataModel(e)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	e.ID = row.ID
	e.CreatedAt = row.CreatedAt
	return nil
}

func openScope(tx *gorm.DB, q timeentry.OpenQuery) *gorm.DB {
	tx = tx.Where("org_id = ? AND user_id = ? AND type = ? AND end_at IS NULL", q.OrgID, q.UserID, string(q.Type))
	if q.Date != "" {
		tx = tx.Where("entry_date = ?", q.Date)
	}
	if q.TaskID != nil {
		tx = tx.Where("task_id = ?", *q.TaskID)
	}
	return tx
}

func findOpen(tx *gorm.DB, q timeentry.OpenQuery) (*entryDatamodel.TimeEntry, error) {
	var row entryDatamodel.TimeEntry
	if err := openScope(tx, q).Order("id ASC").First(&row).Error; err != nil {
		if storage.IsNotFound(err) {
			return nil, timeentry.ErrNoOpenEntry
		}
		return nil, fmt.Errorf("find open entry: %w", err)
	}
	return &row, nil
}

func (r *TimeEntryRepository) FindOpen(ctx context.Context, q timeentry.OpenQuery) (*timeentry.Entry, error) {
	row, err := findOpen(r.db.WithContext(ctx), q)
	if err != nil {
		return nil, err
	}
	return timeentry.FromDataModel(row), nil
}

// closeRow ends a running row with a compare-and-set on end_at.
func closeRow(tx *gorm.DB, row *entryDatamodel.TimeEntry, end time.Time) (*timeentry.Entry, error) {
	e := timeentry.FromDataModel(row)
	running, ok := e.State.(timeentry.Running)
	if !ok {
		return nil, timeentry.ErrNoOpenEntry
	}
	closed := running.Close(end)

	res := tx.Model(&entryDatamodel.TimeEntry{}).
		Where("id = ? AND end_at IS NULL", row.ID).
		Updates(map[string]interface{}{
			"end_at":           closed.EndAt,
			"duration_minutes": closed.DurationMinutes,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("close entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, timeentry.ErrNoOpenEntry
	}

	e.State = closed
	return e, nil
}

func (r *TimeEntryRepository) CloseOpen(ctx context.Context, q timeentry.OpenQuery, end time.Time) (*timeentry.Entry, error) {
	var closed *timeentry.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findOpen(tx, q)
		if err != nil {
			return err
		}
		closed, err = closeRow(tx, row, end)
		return err
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// SwitchTimer checks the day session, closes the running timer and inserts
// next atomically. A timer closed by someone else between the read and the
// update is skipped; a timer opened by someone else surfaces as
// ErrAlreadyOpen from the index.
func (r *TimeEntryRepository) SwitchTimer(ctx context.Context, next *timeentry.Entry, at time.Time) (*timeentry.Entry, error) {
	var closed *timeentry.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		day := timeentry.OpenQuery{OrgID: next.OrgID, UserID: next.UserID, Type: timeentry.TypeDaySession, Date: next.Date}
		if _, err := findOpen(tx, day); err != nil {
			if errors.Is(err, timeentry.ErrNoOpenEntry) {
				return timeentry.ErrDayNotOpen
			}
			return err
		}

		q := timeentry.OpenQuery{OrgID: next.OrgID, UserID: next.UserID, Type: timeentry.TypeTaskTimer}
		row, err := findOpen(tx, q)
		switch {
		case err == nil:
			closed, err = closeRow(tx, row, at)
			if err != nil && !errors.Is(err, timeentry.ErrNoOpenEntry) {
				return err
			}
		case !errors.Is(err, timeentry.ErrNoOpenEntry):
			return err
		}
		return insertOpen(tx, next)
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

func (r *TimeEntryRepository) Get(ctx context.Context, orgID, id int64) (*timeentry.Entry, error) {
	var row entryDatamodel.TimeEntry
	if err := r.db.WithContext(ctx).Where("id = ? AND org_id = ?", id, orgID).First(&row).Error; err != nil {
		if storage.IsNotFound(err) {
			return nil, timeentry.ErrNotFound
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return timeentry.FromDataModel(&row), nil
}

func (r *TimeEntryRepository) ListForDate(ctx context.Context, orgID, userID int64, date string) ([]*timeentry.Entry, error) {
	return r.list(r.db.WithContext(ctx).Where("org_id = ? AND user_id = ? AND entry_date = ?", orgID, userID, date))
}

func (r *TimeEntryRepository) ListActive(ctx context.Context, orgID, userID int64) ([]*timeentry.Entry, error) {
	return r.list(r.db.WithContext(ctx).Where("org_id = ? AND user_id = ? AND end_at IS NULL AND duration_minutes IS NULL", orgID, userID))
}

func (r *TimeEntryRepository) list(q *gorm.DB) ([]*timeentry.Entry, error) {
	var rows []entryDatamodel.TimeEntry
	if err := q.Order("COALESCE(start_at, created_at) ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	out := make([]*timeentry.Entry, 0, len(rows))
	for i := range rows {
		out = append(out, timeentry.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *TimeEntryRepository) Delete(ctx context.Context, orgID, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND org_id = ?", id, orgID).Delete(&entryDatamodel.TimeEntry{})
	if res.Error != nil {
		return fmt.Errorf("delete entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return timeentry.ErrNotFound
	}
	return nil
}

// Review only touches status and reviewer columns.
func (r *TimeEntryRepository) Review(ctx context.Context, orgID, id int64, rv *approval.Review) (*timeentry.Entry, error) {
	var updated *timeentry.Entry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entryDatamodel.TimeEntry{}).
			Where("id = ? AND org_id = ? AND status = ?", id, orgID, string(rv.From)).
			Updates(map[string]interface{}{
				"status":      string(rv.To),
				"reviewer_id": rv.ReviewerID,
				"review_note": rv.Note,
				"reviewed_at": rv.At,
			})
		if res.Error != nil {
			return fmt.Errorf("review entry: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&entryDatamodel.TimeEntry{}).Where("id = ? AND org_id = ?", id, orgID).Count(&count).Error; err != nil {
				return fmt.Errorf("count entry: %w", err)
			}
			if count == 0 {
				return timeentry.ErrNotFound
			}
			return timeentry.ErrStatusChanged
		}

		var row entryDatamodel.TimeEntry
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return fmt.Errorf("reload entry: %w", err)
		}
		updated = timeentry.FromDataModel(&row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
