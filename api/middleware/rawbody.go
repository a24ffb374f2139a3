package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/angelmondragon/studio-backend/api/responses"
	"github.com/angelmondragon/studio-backend/pkg/logger"
)

// DefaultMaxBodyBytes bounds captured payloads when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// CaptureRawBody reads the request body once, keeps the exact bytes in the
// context, and hands downstream handlers a fresh reader over the same bytes.
// Oversized bodies are refused with 413.
func CaptureRawBody(maxBytes int64, logg *logger.Logger) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			_ = r.Body.Close()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					if logg != nil {
						logg.Warn(logg.WithField(r.Context(), "limit_bytes", maxBytes), "request body too large")
					}
					responses.WriteText(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				if logg != nil {
					logg.Error(r.Context(), "read request body", err)
				}
				responses.WriteText(w, http.StatusBadRequest, "unable to read request body")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r.WithContext(WithRawBody(r.Context(), raw)))
		})
	}
}
