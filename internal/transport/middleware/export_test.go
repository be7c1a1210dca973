package middleware

import (
	"bytes"
	"net/http"
)

type discard struct{}

func (discard) Header() http.Header         { return http.Header{} }
func (discard) Write(b []byte) (int, error) { return len(b), nil }
func (discard) WriteHeader(int)             {}

func newBuffer() *bytes.Buffer {
	return &bytes.Buffer{}
}
