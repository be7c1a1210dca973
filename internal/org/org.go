package org

import (
	"context"
	"errors"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleLeader   Role = "leader"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleLeader, RoleEmployee:
		return true
	}
	return false
}

// ManagerTier is leader, admin or owner.
func (r Role) ManagerTier() bool {
	return r == RoleLeader || r == RoleAdmin || r == RoleOwner
}

// OrgWide roles act on every member without a scope lookup.
func (r Role) OrgWide() bool {
	return r == RoleAdmin || r == RoleOwner
}

// Member is the caller resolved against one organization.
type Member struct {
	UserID int64 `json:"user_id"`
	OrgID  int64 `json:"org_id"`
	Role   Role  `json:"role"`
}

// Membership is one row of a user's organizations.
type Membership struct {
	OrgID   int64  `json:"org_id"`
	OrgName string `json:"org_name"`
	Role    Role   `json:"role"`
}

var ErrNotAMember = errors.New("not a member of organization")

type memberCtxKey struct{}

func ContextWithMember(ctx context.Context, m *Member) context.Context {
	return context.WithValue(ctx, memberCtxKey{}, m)
}

func MemberFromContext(ctx context.Context) (*Member, bool) {
	m, ok := ctx.Value(memberCtxKey{}).(*Member)
	return m, ok && m != nil
}
