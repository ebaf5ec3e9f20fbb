package middleware

import (
	"fmt"
	"net/http"
)

// MaxRequestSize caps the request body. Multipart uploads get multipartLimit,
// everything else gets limit. Requests that declare a larger Content-Length are
// rejected before the handler runs; the rest fail on read.
func MaxRequestSize(limit, multipartLimit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			max := limit
			if extractContentType(r.Header.Get("Content-Type")) == "multipart/form-data" {
				max = multipartLimit
			}

			if r.ContentLength > max {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = fmt.Fprintf(w, `{"error":"request body exceeds %d bytes","code":"PAYLOAD_TOO_LARGE"}`, max)
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, max)
			}
			next.ServeHTTP(w, r)
		})
	}
}
