package form_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/worktrack/internal/form"
	"github.com/frahmantamala/worktrack/internal/org"
)

func roleTarget(r org.Role) *string {
	s := string(r)
	return &s
}

func formIDs(forms []*form.Form) []int64 {
	ids := make([]int64, 0, len(forms))
	for _, f := range forms {
		ids = append(ids, f.ID)
	}
	return ids
}

var _ = Describe("Visible", func() {
	var (
		forms    []*form.Form
		leader   form.Audience
		employee form.Audience
	)

	BeforeEach(func() {
		forms = []*form.Form{
			{ID: 1, Title: "daily standup", IsActive: true},
			{ID: 2, Title: "leader checklist", IsActive: true},
			{ID: 3, Title: "backend retro", IsActive: true},
			{ID: 4, Title: "retired", IsActive: false},
		}
		leader = form.Audience{UserID: 10, Role: org.RoleLeader}
		employee = form.Audience{UserID: 20, Role: org.RoleEmployee, GroupIDs: []int64{300}}
	})

	It("shows unassigned forms to everyone", func() {
		Expect(formIDs(form.Visible(forms[:1], nil, leader))).To(Equal([]int64{1}))
		Expect(formIDs(form.Visible(forms[:1], nil, employee))).To(Equal([]int64{1}))
	})

	It("shows a leader-role form to leaders only", func() {
		assignments := []*form.Assignment{
			{FormID: 2, TargetType: form.TargetRole, TargetRole: roleTarget(org.RoleLeader)},
		}

		Expect(formIDs(form.Visible(forms[:2], assignments, leader))).To(Equal([]int64{1, 2}))
		Expect(formIDs(form.Visible(forms[:2], assignments, employee))).To(Equal([]int64{1}))
	})

	It("matches group targets against the audience's groups", func() {
		assignments := []*form.Assignment{
			{FormID: 3, TargetType: form.TargetGroup, TargetID: 300},
		}

		Expect(formIDs(form.Visible(forms, assignments, employee))).To(Equal([]int64{1, 2, 3}))
		Expect(formIDs(form.Visible(forms, assignments, leader))).To(Equal([]int64{1, 2}))
	})

	It("ORs across rows so any single match is enough", func() {
		assignments := []*form.Assignment{
			{FormID: 2, TargetType: form.TargetRole, TargetRole: roleTarget(org.RoleOwner)},
			{FormID: 2, TargetType: form.TargetUser, TargetID: 20},
			{FormID: 2, TargetType: form.TargetGroup, TargetID: 999},
		}

		Expect(formIDs(form.Visible(forms[:2], assignments, employee))).To(Equal([]int64{1, 2}))
		Expect(formIDs(form.Visible(forms[:2], assignments, leader))).To(Equal([]int64{1}))
	})

	It("tolerates duplicate assignment rows", func() {
		row := &form.Assignment{FormID: 2, TargetType: form.TargetUser, TargetID: 10}
		Expect(formIDs(form.Visible(forms[:2], []*form.Assignment{row, row}, leader))).To(Equal([]int64{1, 2}))
	})

	It("never returns inactive forms", func() {
		Expect(formIDs(form.Visible(forms, nil, leader))).NotTo(ContainElement(int64(4)))
	})
})
