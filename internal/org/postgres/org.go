package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	orgDatamodel "github.com/frahmantamala/worktrack/internal/core/datamodel/org"
	"github.com/frahmantamala/worktrack/internal/org"
	"github.com/jmoiron/sqlx"
)

// OrgRepository reads the org directory tables through sqlx.
// Queries are written with ? placeholders and rebound per driver.
type OrgRepository struct {
	db *sqlx.DB
}

func NewOrgRepository(db *sqlx.DB) *OrgRepository {
	return &OrgRepository{db: db}
}

func (r *OrgRepository) GetRole(ctx context.Context, orgID, userID int64) (org.Role, error) {
	var m orgDatamodel.Member
	query := r.db.Rebind(`SELECT org_id, user_id, role, created_at FROM org_members WHERE org_id = ? AND user_id = ?`)
	if err := r.db.GetContext(ctx, &m, query, orgID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", org.ErrNotAMember
		}
		return "", fmt.Errorf("get member role: %w", err)
	}
	return org.Role(m.Role), nil
}

func (r *OrgRepository) IsInScope(ctx context.Context, orgID, leaderID, memberID int64) (bool, error) {
	var n int
	query := r.db.Rebind(`SELECT COUNT(1) FROM leader_scopes WHERE org_id = ? AND leader_id = ? AND member_id = ?`)
	if err := r.db.GetContext(ctx, &n, query, orgID, leaderID, memberID); err != nil {
		return false, fmt.Errorf("check leader scope: %w", err)
	}
	return n > 0, nil
}

func (r *OrgRepository) ScopeMemberIDs(ctx context.Context, orgID, leaderID int64) ([]int64, error) {
	var rows []orgDatamodel.LeaderScope
	query := r.db.Rebind(`SELECT org_id, leader_id, member_id FROM leader_scopes WHERE org_id = ? AND leader_id = ? ORDER BY member_id`)
	if err := r.db.SelectContext(ctx, &rows, query, orgID, leaderID); err != nil {
		return nil, fmt.Errorf("list leader scope: %w", err)
	}
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.MemberID)
	}
	return ids, nil
}

func (r *OrgRepository) GroupIDs(ctx context.Context, orgID, userID int64) ([]int64, error) {
	var ids []int64
	query := r.db.Rebind(`
		SELECT gm.group_id
		FROM group_members gm
		JOIN org_groups g ON g.id = gm.group_id
		WHERE g.org_id = ? AND gm.user_id = ?
		ORDER BY gm.group_id`)
	if err := r.db.SelectContext(ctx, &ids, query, orgID, userID); err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}
	return ids, nil
}

func (r *OrgRepository) ListMemberships(ctx context.Context, userID int64) ([]org.Membership, error) {
	var rows []orgDatamodel.Membership
	query := r.db.Rebind(`
		SELECT m.org_id, o.name AS org_name, m.role
		FROM org_members m
		JOIN organizations o ON o.id = m.org_id
		WHERE m.user_id = ?
		ORDER BY o.name`)
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	out := make([]org.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, org.Membership{OrgID: row.OrgID, OrgName: row.OrgName, Role: org.Role(row.Role)})
	}
	return out, nil
}
