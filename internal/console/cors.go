// file: internal/console/cors.go

package console

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"helix-console/internal/logger"
)

// corsHeaders is the fixed header set sent with every console response.
var corsHeaders = [...][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "POST,OPTIONS,DELETE"},
	{"Access-Control-Allow-Headers", "Content-Type"},
	{"Access-Control-Allow-Credentials", "true"},
	{"Access-Control-Max-Age", "60"},
}

var errHeadersSent = errors.New("response headers already sent")

// AddCORSHeaders sets the console CORS headers on w. It fails when w has
// no header map or the response has already been committed.
func AddCORSHeaders(w http.ResponseWriter) error {
	if w == nil || w.Header() == nil {
		return errors.New("response has no headers")
	}
	if ww, ok := w.(middleware.WrapResponseWriter); ok && ww.Status() != 0 {
		return errHeadersSent
	}
	h := w.Header()
	for _, kv := range corsHeaders {
		h.Set(kv[0], kv[1])
	}
	return nil
}

// cors adds the headers before the handler runs. A failure is logged and
// the request is served without them.
func cors(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := AddCORSHeaders(w); err != nil {
				log.Warn("failed to add CORS headers", "path", r.URL.Path, "error", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}
