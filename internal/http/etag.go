// This succint etag middleware has been borrowed from:
//
// https://github.com/wtg/shuttletracker/blob/cdd56dc4aeca922f333c913f09c1796851d6f677/api/etag.go
//
// It's very well articulated too by the author on their blog:
//
// https://sidney.kochman.org/2018/etag-middleware-go/
package http

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"

	"github.com/leg100/todo/internal/logr"
)

// etagResponseWriter buffers the response so that its hash can be set as a
// header before anything is written.
type etagResponseWriter struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (e *etagResponseWriter) WriteHeader(code int) {
	e.code = code
}

func (e *etagResponseWriter) Write(p []byte) (int, error) {
	return e.buf.Write(p)
}

// ETag adds an ETag header to successful GET responses and responds with a
// 304 if the client already holds the current representation.
func ETag(logger logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			ew := &etagResponseWriter{ResponseWriter: w, code: http.StatusOK}

			next.ServeHTTP(ew, r)

			if ew.code != http.StatusOK {
				w.WriteHeader(ew.code)
				ew.buf.WriteTo(w)
				return
			}

			sum := fmt.Sprintf(`"%x"`, sha1.Sum(ew.buf.Bytes()))
			w.Header().Set("ETag", sum)

			if r.Header.Get("If-None-Match") == sum {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.WriteHeader(http.StatusOK)
			if _, err := ew.buf.WriteTo(w); err != nil {
				logger.Error(err, "etag middleware: writing response")
			}
		})
	}
}
