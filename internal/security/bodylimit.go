package security

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/groundsforsupport/donate/internal/common"
)

// BodyLimit enforces a maximum request payload size.
type BodyLimit struct {
	Max int64
}

// Middleware rejects requests exceeding the configured limit with HTTP 413.
// GET and HEAD requests pass through untouched.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength > b.Max && r.ContentLength != -1 {
			common.Problem(w, common.ProblemBody{Status: http.StatusRequestEntityTooLarge, Detail: "request body exceeds limit"})
			return
		}

		limited := io.LimitReader(r.Body, b.Max+1)
		buf, err := io.ReadAll(limited)
		if err != nil && !errors.Is(err, io.EOF) {
			common.BadRequest(w, "request body could not be read")
			return
		}
		if int64(len(buf)) > b.Max {
			common.Problem(w, common.ProblemBody{Status: http.StatusRequestEntityTooLarge, Detail: "request body exceeds limit"})
			return
		}

		_ = r.Body.Close()

		r.Body = io.NopCloser(bytes.NewReader(buf))
		r.ContentLength = int64(len(buf))
		next.ServeHTTP(w, r)
	})
}
