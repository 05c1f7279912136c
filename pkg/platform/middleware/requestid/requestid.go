// Package requestid assigns a correlation ID to every request. Incoming
// X-Request-Id headers are honored so upstream proxies can trace calls end to
// end; otherwise a fresh UUID is generated.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"warga/pkg/requestcontext"
)

const headerName = "X-Request-Id"

// Middleware stores the request correlation ID in the context and echoes it
// back on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerName)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerName, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
