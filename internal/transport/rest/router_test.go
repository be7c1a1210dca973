package rest_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/auth"
	"github.com/frahmantamala/worktrack/internal/form"
	"github.com/frahmantamala/worktrack/internal/report"
	"github.com/frahmantamala/worktrack/internal/timeentry"
	"github.com/frahmantamala/worktrack/internal/transport/middleware"
	"github.com/frahmantamala/worktrack/internal/transport/rest"
	"github.com/frahmantamala/worktrack/internal/user"
)

const specPath = "../../../api/openapi.yml"

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		db     *sqlx.DB
	)

	BeforeEach(func() {
		var err error
		db, err = sqlx.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		validator, err := middleware.NewOpenAPIValidator(specPath, slogger)
		Expect(err).NotTo(HaveOccurred())

		tokens := auth.NewJWTTokenGenerator(
			"router-access-secret-router-access-secret",
			"router-refresh-secret-router-refresh-secret",
			15*time.Minute, time.Hour)
		authSvc := auth.NewService(nil, tokens, 4, slogger)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Auth:      auth.NewHandler(authSvc),
			User:      &user.Handler{},
			TimeEntry: &timeentry.Handler{},
			Report:    &report.Handler{},
			Form:      &form.Handler{},
		}, rest.Options{
			DB:             db,
			Validator:      validator,
			AllowedOrigins: []string{"https://app.example.com"},
			SpecPath:       specPath,
			Logger:         slogger,
		})
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
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

	It("answers health checks and tags responses with a trace id", func() {
		w := do(http.MethodGet, "/api/v1/ping", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get(middleware.TraceHeader)).NotTo(BeEmpty())

		w = do(http.MethodGet, "/api/v1/health", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		var health rest.HealthResponse
		Expect(json.NewDecoder(w.Body).Decode(&health)).To(Succeed())
		Expect(health.Status).To(Equal(rest.HealthHealthy))
	})

	It("serves the API document", func() {
		w := do(http.MethodGet, "/openapi.yml", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("openapi: 3.0.3"))
	})

	It("requires a bearer token on org routes", func() {
		w := do(http.MethodGet, "/api/v1/orgs/1/reports/data", "")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orgs/1/reports/data", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(errorCode(rec)).To(Equal(string(internal.ErrCodeInvalidToken)))
	})

	It("validates requests against the document before authenticating", func() {
		w := do(http.MethodPost, "/api/v1/orgs/1/time-entries", `{"duration_minutes":"ten"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(w)).To(Equal(string(internal.ErrCodeValidationFailed)))

		w = do(http.MethodGet, "/api/v1/orgs/acme/reports", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		w = do(http.MethodPost, "/api/v1/auth/login", `{"email":"a@example.com"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("leaves domain checks to the services", func() {
		// zero minutes and free-form dates pass the document and reach auth
		w := do(http.MethodPost, "/api/v1/orgs/1/time-entries", `{"duration_minutes":0,"date":"soon"}`)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("answers CORS preflights for allowed origins", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/orgs/1/reports", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.example.com"))
		Expect(w.Header().Get("Access-Control-Allow-Methods")).To(Equal(http.MethodPost))
	})

	It("leaves other origins without CORS headers", func() {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/orgs/1/reports", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("exposes the trace id to allowed origins", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.example.com"))
		Expect(w.Header().Get("Access-Control-Expose-Headers")).To(ContainSubstring(http.CanonicalHeaderKey(middleware.TraceHeader)))
	})

	It("returns 404 for unknown routes", func() {
		Expect(do(http.MethodGet, "/api/v1/nothing-here", "").Code).To(Equal(http.StatusNotFound))
	})
})
