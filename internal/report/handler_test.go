package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/approval"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/report"
	"github.com/frahmantamala/worktrack/internal/transport"
)

type stubReports struct {
	submitted  *report.SubmitDTO
	limit      int
	rejectNote string
	err        error
}

func (s *stubReports) GetReportData(_ context.Context, _ *org.Member, date string) (*report.Data, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &report.Data{Date: date, TotalMinutes: 65}, nil
}

func (s *stubReports) Submit(_ context.Context, m *org.Member, dto report.SubmitDTO) (*report.Report, error) {
	s.submitted = &dto
	if s.err != nil {
		return nil, s.err
	}
	return &report.Report{ID: 7, OrgID: m.OrgID, UserID: m.UserID, ReportDate: dto.ReportDate, Status: approval.StatusSubmitted}, nil
}

func (s *stubReports) DeleteReport(context.Context, *org.Member, int64) error {
	return s.err
}

func (s *stubReports) GetHistory(_ context.Context, _ *org.Member, limit int) ([]*report.Report, error) {
	s.limit = limit
	return []*report.Report{{ID: 2}, {ID: 1}}, s.err
}

func (s *stubReports) GetDetail(_ context.Context, _ *org.Member, id int64) (*report.Detail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &report.Detail{Report: &report.Report{ID: id}}, nil
}

func (s *stubReports) PendingReviews(context.Context, *org.Member) ([]*report.Report, error) {
	return nil, s.err
}

func (s *stubReports) Approve(_ context.Context, _ *org.Member, id int64) (*report.Report, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &report.Report{ID: id, Status: approval.StatusApproved}, nil
}

func (s *stubReports) Reject(_ context.Context, _ *org.Member, id int64, reason string) (*report.Report, error) {
	s.rejectNote = reason
	if s.err != nil {
		return nil, s.err
	}
	return &report.Report{ID: id, Status: approval.StatusRejected, RejectionReason: &reason}, nil
}

var _ = Describe("Report Handler", func() {
	var (
		router chi.Router
		svc    *stubReports
		member *org.Member
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = &stubReports{}
		handler := &report.Handler{BaseHandler: &transport.BaseHandler{Logger: slogger}, Service: svc}

		member = &org.Member{UserID: 10, OrgID: 1, Role: org.RoleEmployee}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if member != nil {
					r = r.WithContext(org.ContextWithMember(r.Context(), member))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Get("/reports/data", handler.GetReportData)
		router.Get("/reports/pending", handler.PendingReviews)
		router.Get("/reports", handler.GetHistory)
		router.Post("/reports", handler.Submit)
		router.Get("/reports/{id}", handler.GetDetail)
		router.Delete("/reports/{id}", handler.DeleteReport)
		router.Patch("/reports/{id}/approve", handler.Approve)
		router.Patch("/reports/{id}/reject", handler.Reject)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	errorCode := func(w *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body.Error.Code
	}

	It("returns the day's data", func() {
		w := do(http.MethodGet, "/reports/data?date=2025-03-10", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var data report.Data
		Expect(json.NewDecoder(w.Body).Decode(&data)).To(Succeed())
		Expect(data.Date).To(Equal("2025-03-10"))
		Expect(data.TotalMinutes).To(Equal(65))
	})

	It("decodes a submission and answers 201", func() {
		w := do(http.MethodPost, "/reports", `{
			"report_date": "2025-03-10",
			"extra_work_items": [{"description": "pairing", "duration_minutes": 30}],
			"form_answers": [{"question_id": 11, "answer_text": "shipped it"}]
		}`)
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(svc.submitted).NotTo(BeNil())
		Expect(svc.submitted.ExtraWorkItems).To(HaveLen(1))
		Expect(svc.submitted.FormAnswers[0].QuestionID).To(Equal(int64(11)))

		var rep report.Report
		Expect(json.NewDecoder(w.Body).Decode(&rep)).To(Succeed())
		Expect(rep.Status).To(Equal(approval.StatusSubmitted))
	})

	It("rejects unknown body fields", func() {
		w := do(http.MethodPost, "/reports", `{"report_date":"2025-03-10","mood":"great"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(svc.submitted).To(BeNil())
	})

	It("renders missing answers with their details", func() {
		svc.err = internal.ErrMissingRequiredAnswers.WithDetails(report.MissingAnswers{
			Missing: []report.MissingAnswer{{FormID: 1, QuestionID: 11, Prompt: "What did you do?"}},
		})
		w := do(http.MethodPost, "/reports", `{}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring(`"question_id":11`))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeMissingRequiredAnswers)))
	})

	It("maps conflicts to 409", func() {
		svc.err = internal.ErrAlreadySubmitted
		w := do(http.MethodPost, "/reports", `{}`)
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeAlreadySubmitted)))
	})

	It("passes the history limit through", func() {
		w := do(http.MethodGet, "/reports?limit=5", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.limit).To(Equal(5))

		var list report.ReportsResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Reports).To(HaveLen(2))

		Expect(do(http.MethodGet, "/reports?limit=many", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("routes pending ahead of the id route", func() {
		w := do(http.MethodGet, "/reports/pending", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"reports":null`))
	})

	It("validates report ids", func() {
		Expect(do(http.MethodGet, "/reports/abc", "").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodDelete, "/reports/0", "").Code).To(Equal(http.StatusBadRequest))
		Expect(do(http.MethodGet, "/reports/3", "").Code).To(Equal(http.StatusOK))
	})

	It("deletes with 204 and maps forbidden to 403", func() {
		Expect(do(http.MethodDelete, "/reports/3", "").Code).To(Equal(http.StatusNoContent))

		svc.err = internal.ErrForbidden
		w := do(http.MethodDelete, "/reports/3", "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeForbidden)))
	})

	It("approves and rejects with an optional reason", func() {
		Expect(do(http.MethodPatch, "/reports/3/approve", "").Code).To(Equal(http.StatusOK))

		w := do(http.MethodPatch, "/reports/3/reject", `{"reason":"missing standup notes"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(svc.rejectNote).To(Equal("missing standup notes"))

		Expect(do(http.MethodPatch, "/reports/4/reject", "").Code).To(Equal(http.StatusOK))
		Expect(svc.rejectNote).To(BeEmpty())

		svc.err = internal.ErrAlreadyProcessed
		w = do(http.MethodPatch, "/reports/3/approve", "")
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeAlreadyProcessed)))
	})

	It("hides unexpected errors", func() {
		svc.err = errors.New("connection reset by peer")
		w := do(http.MethodGet, "/reports/3", "")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).NotTo(ContainSubstring("connection reset"))
	})

	It("refuses requests without a resolved member", func() {
		member = nil
		w := do(http.MethodGet, "/reports/data", "")
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeNotAMember)))
	})
})
