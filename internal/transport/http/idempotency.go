package http

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trannhatgiahuygit/OEM-EV-Warranty-Management-System-sub002/internal/infrastructure/idempotency"
)

const idempotencyHeader = "Idempotency-Key"

type bodyCapturingWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCapturingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotent replays the recorded response for a repeated Idempotency-Key
// instead of re-running the mutation. Requests without the header pass
// through untouched.
func Idempotent(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		record, err := store.Reserve(c.Request.Context(), key)
		if errors.Is(err, idempotency.ErrInFlight) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this idempotency key is in flight"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "idempotency store unavailable"})
			return
		}
		if record != nil {
			c.Header("Idempotency-Replayed", "true")
			c.Data(record.StatusCode, "application/json", record.Body)
			c.Abort()
			return
		}

		writer := &bodyCapturingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		ctx := c.Request.Context()
		if status >= 200 && status < 300 {
			_ = store.Complete(ctx, key, idempotency.Record{
				StatusCode: status,
				Body:       writer.buf.Bytes(),
			})
			return
		}
		// Failed requests free the key so the client can retry.
		_ = store.Release(ctx, key)
	}
}
