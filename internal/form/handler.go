package form

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/transport"
	"github.com/frahmantamala/worktrack/pkg/logger"
)

type ServiceAPI interface {
	VisibleForms(ctx context.Context, m *org.Member) ([]*Form, error)
	ListAssignments(ctx context.Context, m *org.Member, formID int64) ([]*Assignment, error)
	Assign(ctx context.Context, m *org.Member, formID int64, dto AssignDTO) (*Assignment, error)
	Unassign(ctx context.Context, m *org.Member, assignmentID int64) error
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

// GetVisibleForms handles GET /orgs/{orgID}/forms/visible
func (h *Handler) GetVisibleForms(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}

	forms, err := h.Service.VisibleForms(r.Context(), m)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"forms": forms})
}

func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}
	formID, ok := h.IDParam(r, "formID")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	as, err := h.Service.ListAssignments(r.Context(), m, formID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"assignments": as})
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}
	formID, ok := h.IDParam(r, "formID")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid form ID")
		return
	}

	var dto AssignDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("Assign: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.Assign(r.Context(), m, formID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	m, ok := h.Member(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(r, "id")
	if !ok {
		h.WriteError(w, http.StatusBadRequest, "invalid assignment ID")
		return
	}

	if err := h.Service.Unassign(r.Context(), m, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
