package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/worktrack/internal/org"
)

var _ = ginkgo.Describe("Policy", func() {
	ginkgo.DescribeTable("CanActOnTimeEntry",
		func(role org.Role, isOwner, expected bool) {
			gomega.Expect(CanActOnTimeEntry(role, isOwner)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("employee on own entry", org.RoleEmployee, true, true),
		ginkgo.Entry("employee on someone else's entry", org.RoleEmployee, false, false),
		ginkgo.Entry("leader on any entry", org.RoleLeader, false, true),
		ginkgo.Entry("admin on any entry", org.RoleAdmin, false, true),
		ginkgo.Entry("owner on any entry", org.RoleOwner, false, true),
	)

	ginkgo.DescribeTable("CanReview",
		func(role org.Role, inScope, expected bool) {
			gomega.Expect(CanReview(role, inScope)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("employee never", org.RoleEmployee, true, false),
		ginkgo.Entry("leader in scope", org.RoleLeader, true, true),
		ginkgo.Entry("leader out of scope", org.RoleLeader, false, false),
		ginkgo.Entry("admin regardless of scope", org.RoleAdmin, false, true),
		ginkgo.Entry("owner regardless of scope", org.RoleOwner, false, true),
	)

	ginkgo.DescribeTable("CanDeleteReport",
		func(role org.Role, isOwner, approved, expected bool) {
			gomega.Expect(CanDeleteReport(role, isOwner, approved)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("author before approval", org.RoleEmployee, true, false, true),
		ginkgo.Entry("author after approval", org.RoleEmployee, true, true, false),
		ginkgo.Entry("leader author after approval", org.RoleLeader, true, true, false),
		ginkgo.Entry("leader on someone else's report", org.RoleLeader, false, false, false),
		ginkgo.Entry("admin after approval", org.RoleAdmin, false, true, true),
		ginkgo.Entry("owner after approval", org.RoleOwner, false, true, true),
	)

	ginkgo.It("lets manager-tier roles view any report", func() {
		gomega.Expect(CanViewReport(org.RoleEmployee, false)).To(gomega.BeFalse())
		gomega.Expect(CanViewReport(org.RoleEmployee, true)).To(gomega.BeTrue())
		gomega.Expect(CanViewReport(org.RoleLeader, false)).To(gomega.BeTrue())
	})

	ginkgo.It("binds only employees to their own tasks", func() {
		gomega.Expect(MustOwnTask(org.RoleEmployee)).To(gomega.BeTrue())
		gomega.Expect(MustOwnTask(org.RoleLeader)).To(gomega.BeFalse())
		gomega.Expect(MustOwnTask(org.RoleOwner)).To(gomega.BeFalse())
	})

	ginkgo.It("limits form management to admins and owners", func() {
		gomega.Expect(CanManageForms(org.RoleAdmin)).To(gomega.BeTrue())
		gomega.Expect(CanManageForms(org.RoleOwner)).To(gomega.BeTrue())
		gomega.Expect(CanManageForms(org.RoleLeader)).To(gomega.BeFalse())
	})
})
