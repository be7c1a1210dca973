package form

import "github.com/frahmantamala/worktrack/internal/org"

// Audience is who a visibility decision is made for.
type Audience struct {
	UserID   int64
	Role     org.Role
	GroupIDs []int64
}

// Matches reports whether a single assignment row targets the audience.
func (a *Assignment) Matches(aud Audience) bool {
	switch a.TargetType {
	case TargetUser:
		return a.TargetID == aud.UserID
	case TargetRole:
		return a.TargetRole != nil && org.Role(*a.TargetRole) == aud.Role
	case TargetGroup:
		for _, g := range aud.GroupIDs {
			if g == a.TargetID {
				return true
			}
		}
	}
	return false
}

// Visible filters active forms down to those the audience may see. A form
// without assignment rows is visible to everyone; otherwise any one
// matching row is enough.
func Visible(forms []*Form, assignments []*Assignment, aud Audience) []*Form {
	byForm := make(map[int64][]*Assignment, len(forms))
	for _, a := range assignments {
		byForm[a.FormID] = append(byForm[a.FormID], a)
	}

	visible := make([]*Form, 0, len(forms))
	for _, f := range forms {
		if !f.IsActive {
			continue
		}
		rows := byForm[f.ID]
		if len(rows) == 0 {
			visible = append(visible, f)
			continue
		}
		for _, a := range rows {
			if a.Matches(aud) {
				visible = append(visible, f)
				break
			}
		}
	}
	return visible
}
