package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worktrack/internal/auth"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/user"
)

type stubUsers map[int64]*user.User

func (s stubUsers) GetByID(_ context.Context, id int64) (*user.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

type stubMemberships struct {
	rows []org.Membership
	err  error
}

func (s stubMemberships) Memberships(context.Context, int64) ([]org.Membership, error) {
	return s.rows, s.err
}

var _ = Describe("GetCurrentUser", func() {
	var (
		users       stubUsers
		memberships stubMemberships
	)

	serve := func(u *auth.User) *httptest.ResponseRecorder {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := user.NewHandler(user.NewService(users, memberships, logger))

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		if u != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), u))
		}
		rec := httptest.NewRecorder()
		handler.GetCurrentUser(rec, req)
		return rec
	}

	BeforeEach(func() {
		users = stubUsers{7: {ID: 7, Email: "ana@example.com", Name: "Ana", IsActive: true, CreatedAt: time.Now()}}
		memberships = stubMemberships{rows: []org.Membership{{OrgID: 1, OrgName: "Acme", Role: org.RoleLeader}}}
	})

	It("returns the profile with memberships", func() {
		rec := serve(&auth.User{ID: 7})
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body struct {
			ID          int64            `json:"id"`
			Email       string           `json:"email"`
			Memberships []org.Membership `json:"memberships"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Email).To(Equal("ana@example.com"))
		Expect(body.Memberships).To(ConsistOf(org.Membership{OrgID: 1, OrgName: "Acme", Role: org.RoleLeader}))
	})

	It("renders an empty membership list as []", func() {
		memberships = stubMemberships{}
		rec := serve(&auth.User{ID: 7})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"memberships":[]`))
	})

	It("requires an authenticated user", func() {
		Expect(serve(nil).Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns 404 for a vanished user", func() {
		Expect(serve(&auth.User{ID: 99}).Code).To(Equal(http.StatusNotFound))
	})

	It("hides storage failures behind a 500", func() {
		memberships = stubMemberships{err: errors.New("connection reset")}
		rec := serve(&auth.User{ID: 7})
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("connection reset"))
	})
})
