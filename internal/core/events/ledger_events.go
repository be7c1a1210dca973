package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTimeEntryOpened   = "time_entry.opened"
	EventTypeTimeEntryClosed   = "time_entry.closed"
	EventTypeTimeEntryReviewed = "time_entry.reviewed"
	EventTypeReportSubmitted   = "report.submitted"
	EventTypeReportReviewed    = "report.reviewed"
	EventTypeReportDeleted     = "report.deleted"
)

// Types lists every domain event the service publishes.
var Types = []string{
	EventTypeTimeEntryOpened,
	EventTypeTimeEntryClosed,
	EventTypeTimeEntryReviewed,
	EventTypeReportSubmitted,
	EventTypeReportReviewed,
	EventTypeReportDeleted,
}

func newBase(eventType string, orgID, actorID int64, at time.Time, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: at,
		OrgID:     orgID,
		ActorID:   actorID,
		Data:      data,
	}
}

type TimeEntryOpenedEvent struct {
	BaseEvent
	EntryID   int64  `json:"entry_id"`
	EntryType string `json:"entry_type"`
	TaskID    *int64 `json:"task_id,omitempty"`
}

func NewTimeEntryOpenedEvent(orgID, userID, entryID int64, entryType string, taskID *int64, at time.Time) *TimeEntryOpenedEvent {
	return &TimeEntryOpenedEvent{
		BaseEvent: newBase(EventTypeTimeEntryOpened, orgID, userID, at, map[string]interface{}{
			"entry_id":   entryID,
			"entry_type": entryType,
			"task_id":    taskID,
		}),
		EntryID:   entryID,
		EntryType: entryType,
		TaskID:    taskID,
	}
}

// TimeEntryClosedEvent is raised on explicit stops and when a new timer
// supersedes a running one (AutoClosed).
type TimeEntryClosedEvent struct {
	BaseEvent
	EntryID         int64  `json:"entry_id"`
	EntryType       string `json:"entry_type"`
	DurationMinutes int    `json:"duration_minutes"`
	AutoClosed      bool   `json:"auto_closed"`
}

func NewTimeEntryClosedEvent(orgID, userID, entryID int64, entryType string, durationMinutes int, autoClosed bool, at time.Time) *TimeEntryClosedEvent {
	return &TimeEntryClosedEvent{
		BaseEvent: newBase(EventTypeTimeEntryClosed, orgID, userID, at, map[string]interface{}{
			"entry_id":         entryID,
			"entry_type":       entryType,
			"duration_minutes": durationMinutes,
			"auto_closed":      autoClosed,
		}),
		EntryID:         entryID,
		EntryType:       entryType,
		DurationMinutes: durationMinutes,
		AutoClosed:      autoClosed,
	}
}

type TimeEntryReviewedEvent struct {
	BaseEvent
	EntryID int64  `json:"entry_id"`
	OwnerID int64  `json:"owner_id"`
	Status  string `json:"status"`
}

func NewTimeEntryReviewedEvent(orgID, reviewerID, entryID, ownerID int64, status string, at time.Time) *TimeEntryReviewedEvent {
	return &TimeEntryReviewedEvent{
		BaseEvent: newBase(EventTypeTimeEntryReviewed, orgID, reviewerID, at, map[string]interface{}{
			"entry_id": entryID,
			"owner_id": ownerID,
			"status":   status,
		}),
		EntryID: entryID,
		OwnerID: ownerID,
		Status:  status,
	}
}

type ReportSubmittedEvent struct {
	BaseEvent
	ReportID   int64  `json:"report_id"`
	ReportDate string `json:"report_date"`
}

func NewReportSubmittedEvent(orgID, userID, reportID int64, reportDate string, at time.Time) *ReportSubmittedEvent {
	return &ReportSubmittedEvent{
		BaseEvent: newBase(EventTypeReportSubmitted, orgID, userID, at, map[string]interface{}{
			"report_id":   reportID,
			"report_date": reportDate,
		}),
		ReportID:   reportID,
		ReportDate: reportDate,
	}
}

type ReportReviewedEvent struct {
	BaseEvent
	ReportID int64  `json:"report_id"`
	OwnerID  int64  `json:"owner_id"`
	Status   string `json:"status"`
}

func NewReportReviewedEvent(orgID, reviewerID, reportID, ownerID int64, status string, at time.Time) *ReportReviewedEvent {
	return &ReportReviewedEvent{
		BaseEvent: newBase(EventTypeReportReviewed, orgID, reviewerID, at, map[string]interface{}{
			"report_id": reportID,
			"owner_id":  ownerID,
			"status":    status,
		}),
		ReportID: reportID,
		OwnerID:  ownerID,
		Status:   status,
	}
}

type ReportDeletedEvent struct {
	BaseEvent
	ReportID int64 `json:"report_id"`
	OwnerID  int64 `json:"owner_id"`
}

func NewReportDeletedEvent(orgID, actorID, reportID, ownerID int64, at time.Time) *ReportDeletedEvent {
	return &ReportDeletedEvent{
		BaseEvent: newBase(EventTypeReportDeleted, orgID, actorID, at, map[string]interface{}{
			"report_id": reportID,
			"owner_id":  ownerID,
		}),
		ReportID: reportID,
		OwnerID:  ownerID,
	}
}
