package middleware

import (
	"bytes"
	"net/http"

	"loyalty/internal/idempotency"

	"github.com/sirupsen/logrus"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 255
)

type IdempotencyStore interface {
	Reserve(key string) (idempotency.Record, bool, error)
	Complete(key string, status int, body []byte) error
	Release(key string) error
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST that carries an
// Idempotency-Key the same user already sent to the same path. Requests
// without the header pass through. A nil store disables the middleware.
func Idempotency(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				writeError(w, http.StatusBadRequest, "invalid_idempotency_key")
				return
			}
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			scoped := userID + ":" + r.URL.Path + ":" + key
			record, reserved, err := store.Reserve(scoped)
			if err != nil {
				logrus.WithFields(logrus.Fields{"key": scoped, "error": err.Error()}).Error("idempotency reserve failed")
				writeError(w, http.StatusInternalServerError, "internal_error")
				return
			}
			if !reserved {
				if !record.Completed {
					writeError(w, http.StatusConflict, "request_in_progress")
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(ReplayedHeader, "true")
				w.WriteHeader(record.Status)
				_, _ = w.Write(record.Body)
				return
			}

			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode >= http.StatusInternalServerError {
				if err := store.Release(scoped); err != nil {
					logrus.WithFields(logrus.Fields{"key": scoped, "error": err.Error()}).Warn("idempotency release failed")
				}
				return
			}
			if err := store.Complete(scoped, rec.statusCode, rec.body.Bytes()); err != nil {
				logrus.WithFields(logrus.Fields{"key": scoped, "error": err.Error()}).Warn("idempotency complete failed")
			}
		})
	}
}
