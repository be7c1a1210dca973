package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/worktrack/internal"
	"github.com/frahmantamala/worktrack/internal/auth"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/frahmantamala/worktrack/internal/transport"
	"github.com/frahmantamala/worktrack/pkg/logger"
)

type MembershipResolver interface {
	Resolve(ctx context.Context, userID, orgID int64) (*org.Member, error)
}

// Membership resolves the authenticated user's role in the {orgID} path
// parameter and stores the resulting org.Member in the request context.
// It must run after the auth middleware.
func Membership(resolver MembershipResolver, lg *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := auth.UserFromContext(r.Context())
			if !ok {
				base.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			orgID, err := strconv.ParseInt(chi.URLParam(r, "orgID"), 10, 64)
			if err != nil || orgID <= 0 {
				base.WriteError(w, http.StatusBadRequest, "invalid organization id")
				return
			}

			m, err := resolver.Resolve(r.Context(), u.ID, orgID)
			if err != nil {
				if errors.Is(err, org.ErrNotAMember) {
					base.HandleServiceError(w, internal.ErrNotAMember)
					return
				}
				base.HandleServiceError(w, internal.NewInternalError("failed to resolve membership", err))
				return
			}

			ctx := org.ContextWithMember(r.Context(), m)
			ctx = internal.ContextWithOrgID(ctx, orgID)
			ctx = logger.With(ctx, "org_id", orgID, "role", string(m.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles lets the request through only when the resolved member holds
// one of roles.
func RequireRoles(lg *slog.Logger, roles ...org.Role) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m, ok := org.MemberFromContext(r.Context())
			if !ok {
				base.HandleServiceError(w, internal.ErrNotAMember)
				return
			}

			for _, role := range roles {
				if m.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			lg.Warn("access denied: role not allowed",
				"user_id", m.UserID,
				"org_id", m.OrgID,
				"role", m.Role,
				"required_roles", roles)
			base.HandleServiceError(w, internal.ErrForbidden)
		})
	}
}
