package timeentry_test

import (
	"encoding/json"
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
	"github.com/frahmantamala/worktrack/internal/clock"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/timeentry"
	"github.com/frahmantamala/worktrack/internal/transport"
)

var _ = Describe("TimeEntry Handler", func() {
	var (
		router chi.Router
		member *org.Member
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		clk := clock.NewMock(at(9, 0))
		svc := timeentry.NewService(newMemoryRepository(), mockTasks{}, approval.NewGate(fixedScope{}, clk, slogger), nil, clk, slogger)
		handler := &timeentry.Handler{BaseHandler: &transport.BaseHandler{Logger: slogger}, Service: svc}

		member = &org.Member{UserID: 10, OrgID: 1, Role: org.RoleEmployee}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(org.ContextWithMember(r.Context(), member)))
			})
		})
		router.Post("/day-sessions/open", handler.OpenDaySession)
		router.Post("/day-sessions/close", handler.CloseDaySession)
		router.Post("/tasks/{taskID}/timer/start", handler.StartTaskTimer)
		router.Post("/time-entries", handler.QuickLog)
		router.Get("/time-entries", handler.ListForDate)
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

	It("rejects a zero-minute quick log and lists a valid one", func() {
		w := do(http.MethodPost, "/time-entries", `{"duration_minutes":0}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeInvalidDuration)))

		w = do(http.MethodPost, "/time-entries", `{"duration_minutes":45,"date":"2025-03-10"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodGet, "/time-entries?date=2025-03-10", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var list timeentry.EntriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&list)).To(Succeed())
		Expect(list.Entries).To(HaveLen(1))
		Expect(list.Entries[0].Type).To(Equal(timeentry.TypeManual))
		Expect(list.Entries[0].DurationMinutes()).To(Equal(45))
	})

	It("maps ledger conflicts to 409", func() {
		w := do(http.MethodPost, "/day-sessions/close", "")
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeNoOpenSession)))

		w = do(http.MethodPost, "/tasks/1/timer/start", "")
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeDayNotStarted)))

		Expect(do(http.MethodPost, "/day-sessions/open", "").Code).To(Equal(http.StatusCreated))
		w = do(http.MethodPost, "/day-sessions/open", "")
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeAlreadyOpen)))
	})

	It("rejects bad dates and task ids", func() {
		w := do(http.MethodGet, "/time-entries?date=yesterday", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeInvalidDate)))

		Expect(do(http.MethodPost, "/tasks/abc/timer/start", "").Code).To(Equal(http.StatusBadRequest))
	})
})
