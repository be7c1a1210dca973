package auth

import "github.com/frahmantamala/worktrack/internal/org"

// Authorization rules, one function per operation family. Handlers and
// services call these instead of comparing role strings inline.

// CanActOnTimeEntry covers deleting an entry: its owner or any manager-tier role.
func CanActOnTimeEntry(role org.Role, isOwner bool) bool {
	return isOwner || role.ManagerTier()
}

// CanReview gates approve/reject. Leaders need the subject in scope;
// admins and owners act org-wide.
func CanReview(role org.Role, inScope bool) bool {
	switch role {
	case org.RoleAdmin, org.RoleOwner:
		return true
	case org.RoleLeader:
		return inScope
	default:
		return false
	}
}

// CanDeleteReport lets the author delete until approval; admins and owners always.
func CanDeleteReport(role org.Role, isOwner, approved bool) bool {
	if role.OrgWide() {
		return true
	}
	return isOwner && !approved
}

func CanViewReport(role org.Role, isOwner bool) bool {
	return isOwner || role.ManagerTier()
}

// MustOwnTask reports whether role may only time tasks assigned to itself.
func MustOwnTask(role org.Role) bool {
	return role == org.RoleEmployee
}

func CanManageForms(role org.Role) bool {
	return role.OrgWide()
}
