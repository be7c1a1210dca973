package form_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/clock"
	formDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/form"
	"github.com/frahmantamala/worktrack/internal/form"
	formPostgres "github.com/frahmantamala/worktrack/internal/form/postgres"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/transport"
)

var _ = Describe("Form Handler Integration", func() {
	var (
		db      *gorm.DB
		handler *form.Handler
		router  chi.Router
		member  *org.Member
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&formDatamodel.Form{}, &formDatamodel.FormQuestion{}, &formDatamodel.FormAssignment{})).To(Succeed())

		Expect(db.Create(&[]formDatamodel.Form{
			{ID: 1, OrgID: 7, Title: "standup", IsActive: true},
			{ID: 2, OrgID: 7, Title: "leader checklist", IsActive: true},
		}).Error).To(Succeed())

		repo := formPostgres.NewFormRepository(db)
		service := form.NewService(repo, staticGroups{}, clock.NewMock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)), slogger)
		handler = &form.Handler{BaseHandler: &transport.BaseHandler{Logger: slogger}, Service: service}

		member = &org.Member{UserID: 1, OrgID: 7, Role: org.RoleAdmin}
		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(org.ContextWithMember(r.Context(), member)))
			})
		})
		router.Get("/forms/visible", handler.GetVisibleForms)
		router.Post("/forms/{formID}/assignments", handler.Assign)
		router.Delete("/form-assignments/{id}", handler.Unassign)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	visibleTitles := func() []string {
		req := httptest.NewRequest(http.MethodGet, "/forms/visible", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))

		var body struct {
			Forms []form.Form `json:"forms"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		titles := []string{}
		for _, f := range body.Forms {
			titles = append(titles, f.Title)
		}
		return titles
	}

	It("narrows visibility after a role assignment", func() {
		req := httptest.NewRequest(http.MethodPost, "/forms/2/assignments",
			strings.NewReader(`{"target_type":"role","target_role":"leader"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusCreated))

		var created form.Assignment
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		Expect(created.TargetID).To(Equal(int64(0)))

		member = &org.Member{UserID: 2, OrgID: 7, Role: org.RoleLeader}
		Expect(visibleTitles()).To(ConsistOf("standup", "leader checklist"))

		member = &org.Member{UserID: 3, OrgID: 7, Role: org.RoleEmployee}
		Expect(visibleTitles()).To(ConsistOf("standup"))
	})

	It("returns 400 with the error code for bad target types", func() {
		req := httptest.NewRequest(http.MethodPost, "/forms/1/assignments",
			strings.NewReader(`{"target_type":"team","target_id":3}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		var body map[string]map[string]interface{}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body["error"]["code"]).To(Equal(string(internal.ErrCodeInvalidTargetType)))
	})

	It("returns 403 for employees", func() {
		member = &org.Member{UserID: 3, OrgID: 7, Role: org.RoleEmployee}
		req := httptest.NewRequest(http.MethodPost, "/forms/1/assignments",
			strings.NewReader(`{"target_type":"user","target_id":3}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("answers 204 for unassigning a missing row", func() {
		req := httptest.NewRequest(http.MethodDelete, "/form-assignments/999", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		Expect(w.Code).To(Equal(http.StatusNoContent))
	})

	It("rejects requests without a resolved member", func() {
		req := httptest.NewRequest(http.MethodGet, "/forms/visible", nil).WithContext(context.Background())
		w := httptest.NewRecorder()
		handler.GetVisibleForms(w, req)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})
})
