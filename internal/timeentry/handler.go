package timeentry

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/worktrack/internal/approval"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/transport"
	"github.com/frahmantamala/worktrack/pkg/logger"
)

type ServiceAPI interface {
	OpenDaySession(ctx context.Context, m *org.Member, date string) (*Entry, error)
	CloseDaySession(ctx context.Context, m *org.Member, date string) (*Entry, error)
	StartTaskTimer(ctx context.Context, m *org.Member, taskID int64) (*Entry, error)
	StopTaskTimer(ctx context.Context, m *org.Member, taskID int64) (*Entry, error)
	QuickLog(ctx context.Context, m *org.Member, dto QuickLogDTO) (*Entry, error)
	ListForDate(ctx context.Context, m *org.Member, date string) ([]*Entry, error)
	ListActive(ctx context.Context, m *org.Member) ([]*Entry, error)
	DeleteEntry(ctx context.Context, m *org.Member, id int64) error
	Approve(ctx context.Context, m *org.Member, id int64) (*Entry, error)
	Reject(ctx context.Context, m *org.Member, id int64, reason string) (*Entry, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

type EntriesResponse struct {
	Entries []*Entry `json:"entries"`
}

func (h *Handler) OpenDaySession(w http.ResponseWriter, r *http.Request) {
	h.daySession(w, r, h.Service.OpenDaySession, http.StatusCreated)
}

func (h *Handler) CloseDaySession(w http.ResponseWriter, r *http.Request) {
	h.daySession(w, r, h.Service.CloseDaySession, http.StatusOK)
}

func (h *Handler) daySession(w http.ResponseWriter, r *http.Request, op func(context.Context, *org.Member, string) (*Entry, error), status int) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}

	var dto DayDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := op(r.Context(), m, dto.Date)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, status, e)
}

func (h *Handler) StartTaskTimer(w http.ResponseWriter, r *http.Request) {
	h.timer(w, r, h.Service.StartTaskTimer, http.StatusCreated)
}

func (h *Handler) StopTaskTimer(w http.ResponseWriter, r *http.Request) {
	h.timer(w, r, h.Service.StopTaskTimer, http.StatusOK)
}

func (h *Handler) timer(w http.ResponseWriter, r *http.Request, op func(context.Context, *org.Member, int64) (*Entry, error), status int) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}
	taskID, ok := h.IDParam(r, "taskID")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	e, err := op(r.Context(), m, taskID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, status, e)
}

// QuickLog handles POST /orgs/{orgID}/time-entries
func (h *Handler) QuickLog(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}

	var dto QuickLogDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("QuickLog: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.QuickLog(r.Context(), m, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, e)
}

// ListForDate handles GET /orgs/{orgID}/time-entries?date=YYYY-MM-DD
func (h *Handler) ListForDate(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}

	entries, err := h.Service.ListForDate(r.Context(), m, r.URL.Query().Get("date"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, EntriesResponse{Entries: entries})
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}

	entries, err := h.Service.ListActive(r.Context(), m)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, EntriesResponse{Entries: entries})
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	if err := h.Service.DeleteEntry(r.Context(), m, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	e, err := h.Service.Approve(r.Context(), m, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	var dto approval.RejectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.Reject(r.Context(), m, id, dto.Reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}
