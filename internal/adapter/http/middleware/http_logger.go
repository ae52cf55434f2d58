package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gdncomm-andi-r-djunaedi/training-project-2025-11-sub002/internal/logging"
)

// bodyLogLimit caps how much of a request or response body lands in the log.
const bodyLogLimit = 8 * 1024

type responseRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	if w.buf.Len() < bodyLogLimit {
		if remain := bodyLogLimit - w.buf.Len(); len(b) > remain {
			w.buf.Write(b[:remain])
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// redactBody scrubs credential-like fields out of a JSON payload before it
// reaches the log. Non-JSON input is returned untouched.
func redactBody(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var m any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	var scrub func(any) any
	scrub = func(x any) any {
		switch v := x.(type) {
		case map[string]any:
			for k, val := range v {
				switch strings.ToLower(k) {
				case "password", "authorization", "token", "secret":
					v[k] = "***redacted***"
				default:
					v[k] = scrub(val)
				}
			}
			return v
		case []any:
			for i := range v {
				v[i] = scrub(v[i])
			}
			return v
		default:
			return v
		}
	}
	b, err := json.Marshal(scrub(m))
	if err != nil {
		return raw
	}
	return b
}

func capBody(b []byte) (string, bool) {
	if len(b) > bodyLogLimit {
		return string(b[:bodyLogLimit]), true
	}
	return string(b), false
}

// Logging attaches a request-scoped logger to both the gin context and the
// request context, and logs one line per request on the way out, with capped
// and redacted JSON bodies.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)

		l := base.With(
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"remote", c.ClientIP(),
		)
		logging.With(c, l)
		c.Request = c.Request.WithContext(logging.WithCtx(c.Request.Context(), l))

		// Capture the JSON request body, then hand the handler an untouched
		// replay. Redaction runs before capping so a truncated body cannot
		// leak a credential field.
		var reqBody string
		if c.Request.Body != nil && strings.Contains(c.GetHeader("Content-Type"), "application/json") {
			raw, err := io.ReadAll(c.Request.Body)
			_ = c.Request.Body.Close()
			if err == nil {
				c.Request.Body = io.NopCloser(bytes.NewReader(raw))
				body, truncated := capBody(redactBody(raw))
				if truncated {
					body += "...truncated"
				}
				reqBody = body
			}
		}

		rec := &responseRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"dur_ms", time.Since(start).Milliseconds(),
			"resp_bytes", c.Writer.Size(),
		}
		if reqBody != "" {
			attrs = append(attrs, "req_body", reqBody)
		}
		if strings.Contains(c.Writer.Header().Get("Content-Type"), "application/json") && rec.buf.Len() > 0 {
			respBody := string(redactBody(rec.buf.Bytes()))
			if c.Writer.Size() > bodyLogLimit {
				respBody += "...truncated"
			}
			attrs = append(attrs, "resp_body", respBody)
		}
		if uid := c.GetHeader("X-User-Id"); uid != "" {
			attrs = append(attrs, "user_id", uid)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if status >= http.StatusInternalServerError {
			l.Error("http_request", attrs...)
			return
		}
		l.Info("http_request", attrs...)
	}
}
