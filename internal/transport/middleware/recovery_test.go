package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worktrack/internal/transport/middleware"
	"github.com/frahmantamala/worktrack/pkg/logger"
)

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into an INTERNAL_ERROR envelope", func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 4}))
		h := middleware.RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(errorCode(rec)).To(Equal("INTERNAL_ERROR"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("boom"))
	})
})

var _ = Describe("RequestID", func() {
	It("keeps an incoming trace id and generates one otherwise", func() {
		h := middleware.RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.TraceHeader, "trace-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		Expect(rec.Header().Get(middleware.TraceHeader)).To(Equal("trace-1"))

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(rec.Header().Get(middleware.TraceHeader)).To(HaveLen(36))
	})

	It("hands handlers the base logger tagged with the trace id", func() {
		var out bytes.Buffer
		base := slog.New(slog.NewTextHandler(&out, nil))
		h := middleware.RequestID(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.From(r.Context()).Info("handled")
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.TraceHeader, "trace-2")
		h.ServeHTTP(httptest.NewRecorder(), req)

		Expect(out.String()).To(ContainSubstring("msg=handled"))
		Expect(out.String()).To(ContainSubstring("traceID=trace-2"))
	})
})
