package report

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/worktrack/internal/approval"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/transport"
	"github.com/frahmantamala/worktrack/pkg/logger"
)

type ServiceAPI interface {
	GetReportData(ctx context.Context, m *org.Member, date string) (*Data, error)
	Submit(ctx context.Context, m *org.Member, dto SubmitDTO) (*Report, error)
	DeleteReport(ctx context.Context, m *org.Member, id int64) error
	GetHistory(ctx context.Context, m *org.Member, limit int) ([]*Report, error)
	GetDetail(ctx context.Context, m *org.Member, id int64) (*Detail, error)
	PendingReviews(ctx context.Context, m *org.Member) ([]*Report, error)
	Approve(ctx context.Context, m *org.Member, id int64) (*Report, error)
	Reject(ctx context.Context, m *org.Member, id int64, reason string) (*Report, error)
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

type ReportsResponse struct {
	Reports []*Report `json:"reports"`
}

// GetReportData handles GET /orgs/{orgID}/reports/data?date=YYYY-MM-DD
func (h *Handler) GetReportData(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}

	data, err := h.Service.GetReportData(r.Context(), m, r.URL.Query().Get("date"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, data)
}

// Submit handles POST /orgs/{orgID}/reports
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}

	var dto SubmitDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("Submit: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rep, err := h.Service.Submit(r.Context(), m, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, rep)
}

// GetHistory handles GET /orgs/{orgID}/reports?limit=N
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	reports, err := h.Service.GetHistory(r.Context(), m, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ReportsResponse{Reports: reports})
}

func (h *Handler) PendingReviews(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}

	reports, err := h.Service.PendingReviews(r.Context(), m)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ReportsResponse{Reports: reports})
}

func (h *Handler) GetDetail(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid report ID")
		return
	}

	detail, err := h.Service.GetDetail(r.Context(), m, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid report ID")
		return
	}

	if err := h.Service.DeleteReport(r.Context(), m, id); err != nil {
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
		h.WriteError(w, http.StatusBadRequest, "invalid report ID")
		return
	}

	rep, err := h.Service.Approve(r.Context(), m, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rep)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid report ID")
		return
	}

	var dto approval.RejectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rep, err := h.Service.Reject(r.Context(), m, id, dto.Reason)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rep)
}
