package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worktrack/internal/auth"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/transport/middleware"
)

type stubResolver struct {
	roles map[int64]org.Role
	err   error
}

func (s stubResolver) Resolve(_ context.Context, userID, orgID int64) (*org.Member, error) {
	if s.err != nil {
		return nil, s.err
	}
	role, ok := s.roles[orgID]
	if !ok {
		return nil, org.ErrNotAMember
	}
	return &org.Member{UserID: userID, OrgID: orgID, Role: role}, nil
}

func errorCode(rec *httptest.ResponseRecorder) string {
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body.Error.Code
}

var _ = Describe("Membership", func() {
	var (
		resolver stubResolver
		user     *auth.User
		seen     *org.Member
	)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	serve := func(method, path string) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if user != nil {
					req = req.WithContext(auth.ContextWithUser(req.Context(), user))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Route("/orgs/{orgID}", func(or chi.Router) {
			or.Use(middleware.Membership(resolver, logger))
			or.Get("/things", func(w http.ResponseWriter, req *http.Request) {
				seen, _ = org.MemberFromContext(req.Context())
				w.WriteHeader(http.StatusOK)
			})
			or.With(middleware.RequireRoles(logger, org.RoleAdmin, org.RoleOwner)).
				Post("/admin", func(w http.ResponseWriter, req *http.Request) {
					w.WriteHeader(http.StatusNoContent)
				})
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	BeforeEach(func() {
		resolver = stubResolver{roles: map[int64]org.Role{1: org.RoleEmployee, 2: org.RoleAdmin}}
		user = &auth.User{ID: 7}
		seen = nil
	})

	It("puts the resolved member into the context", func() {
		rec := serve(http.MethodGet, "/orgs/1/things")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(seen).To(Equal(&org.Member{UserID: 7, OrgID: 1, Role: org.RoleEmployee}))
	})

	It("rejects non-members with NOT_A_MEMBER", func() {
		rec := serve(http.MethodGet, "/orgs/3/things")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(errorCode(rec)).To(Equal("NOT_A_MEMBER"))
	})

	It("rejects malformed org ids", func() {
		Expect(serve(http.MethodGet, "/orgs/abc/things").Code).To(Equal(http.StatusBadRequest))
		Expect(serve(http.MethodGet, "/orgs/0/things").Code).To(Equal(http.StatusBadRequest))
	})

	It("requires an authenticated user", func() {
		user = nil
		Expect(serve(http.MethodGet, "/orgs/1/things").Code).To(Equal(http.StatusUnauthorized))
	})

	It("reports directory failures as 500", func() {
		resolver.err = errors.New("db down")
		rec := serve(http.MethodGet, "/orgs/1/things")
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("db down"))
	})

	Describe("RequireRoles", func() {
		It("allows listed roles", func() {
			Expect(serve(http.MethodPost, "/orgs/2/admin").Code).To(Equal(http.StatusNoContent))
		})

		It("forbids other roles", func() {
			rec := serve(http.MethodPost, "/orgs/1/admin")
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			Expect(errorCode(rec)).To(Equal("FORBIDDEN"))
		})
	})
})
