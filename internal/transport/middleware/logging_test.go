package middleware

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("log filtering", func() {
	It("masks sensitive JSON keys at any depth", func() {
		out := filterSensitiveBody([]byte(`{"email":"a@b.c","password":"hunter2","nested":[{"refresh_token":"x","note":"ok"}]}`))
		Expect(out).To(ContainSubstring(`"email":"a@b.c"`))
		Expect(out).To(ContainSubstring(`"password":"[FILTERED]"`))
		Expect(out).To(ContainSubstring(`"refresh_token":"[FILTERED]"`))
		Expect(out).To(ContainSubstring(`"note":"ok"`))
		Expect(out).NotTo(ContainSubstring("hunter2"))
	})

	It("masks authorization headers", func() {
		h := http.Header{}
		h.Set("Authorization", "Bearer abc")
		h.Set("Content-Type", "application/json")
		filtered := filterSensitiveHeaders(h)
		Expect(filtered["Authorization"]).To(Equal("[FILTERED]"))
		Expect(filtered["Content-Type"]).To(Equal("application/json"))
	})

	It("caps the captured response body", func() {
		rw := &responseWriter{ResponseWriter: discard{}, body: newBuffer()}
		big := make([]byte, maxLoggedBody+100)
		n, err := rw.Write(big)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(len(big)))
		Expect(rw.body.Len()).To(Equal(maxLoggedBody))
		Expect(rw.size).To(Equal(len(big)))
		Expect(rw.status()).To(Equal(http.StatusOK))
	})
})
