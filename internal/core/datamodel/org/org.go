package org

import "time"

// Rows of the org directory tables. Read through sqlx, hence db tags.

type Organization struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type Member struct {
	OrgID     int64     `db:"org_id"`
	UserID    int64     `db:"user_id"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

// Membership joins Member with the organization name.
type Membership struct {
	OrgID   int64  `db:"org_id"`
	OrgName string `db:"org_name"`
	Role    string `db:"role"`
}

type LeaderScope struct {
	OrgID    int64 `db:"org_id"`
	LeaderID int64 `db:"leader_id"`
	MemberID int64 `db:"member_id"`
}

type Group struct {
	ID    int64  `db:"id"`
	OrgID int64  `db:"org_id"`
	Name  string `db:"name"`
}

type GroupMember struct {
	GroupID int64 `db:"group_id"`
	UserID  int64 `db:"user_id"`
}
