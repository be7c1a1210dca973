package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worktrack/internal/transport/middleware"
)

const quickLogDoc = `
openapi: 3.0.3
info:
  title: test
  version: "1"
paths:
  /api/v1/orgs/{orgID}/time-entries:
    parameters:
      - name: orgID
        in: path
        required: true
        schema:
          type: integer
          minimum: 1
    get:
      parameters:
        - name: date
          in: query
          schema:
            type: string
            pattern: '^\d{4}-\d{2}-\d{2}$'
      responses:
        "200":
          description: ok
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [duration_minutes]
              properties:
                duration_minutes:
                  type: integer
                note:
                  type: string
      responses:
        "201":
          description: created
`

var _ = Describe("OpenAPIValidator", func() {
	var handler http.Handler

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		v, err := middleware.NewOpenAPIValidatorFromData([]byte(quickLogDoc), logger)
		Expect(err).NotTo(HaveOccurred())
		handler = v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	It("passes valid requests through", func() {
		Expect(serve(http.MethodPost, "/api/v1/orgs/1/time-entries", `{"duration_minutes": 30}`).Code).To(Equal(http.StatusTeapot))
		Expect(serve(http.MethodGet, "/api/v1/orgs/1/time-entries?date=2025-03-10", "").Code).To(Equal(http.StatusTeapot))
	})

	It("rejects bodies that break the schema", func() {
		rec := serve(http.MethodPost, "/api/v1/orgs/1/time-entries", `{"note": "x"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(rec)).To(Equal("VALIDATION_FAILED"))

		rec = serve(http.MethodPost, "/api/v1/orgs/1/time-entries", `{"duration_minutes": "thirty"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects malformed parameters", func() {
		Expect(serve(http.MethodGet, "/api/v1/orgs/1/time-entries?date=yesterday", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("leaves undocumented routes alone", func() {
		Expect(serve(http.MethodGet, "/api/v1/unknown", "").Code).To(Equal(http.StatusTeapot))
	})

	It("refuses an invalid document", func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		_, err := middleware.NewOpenAPIValidatorFromData([]byte("openapi: 3.0.3\npaths: 7\n"), logger)
		Expect(err).To(HaveOccurred())
	})
})
