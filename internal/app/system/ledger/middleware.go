// Package ledger records requests against the public API so failed form
// submissions can be inspected from the back office.
package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	ledgerstore "github.com/dalemusser/stratasite/internal/app/store/ledger"
	"github.com/dalemusser/stratasite/internal/app/system/auth"
	"github.com/dalemusser/stratasite/internal/app/system/network"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ctxKey is the context key type for ledger data.
type ctxKey int

const ctxKeyEntry ctxKey = iota

// RequestIDHeader carries the ledger request ID back to the client.
const RequestIDHeader = "X-Request-ID"

// Store persists ledger entries.
type Store interface {
	Create(ctx context.Context, entry ledgerstore.Entry) error
}

// Config holds configuration for the ledger middleware.
type Config struct {
	// Store is the ledger store for persisting entries.
	Store Store

	// Logger for logging errors.
	Logger *zap.Logger

	// MaxBodyPreview is the maximum number of bytes kept from a JSON request body.
	// Set to 0 to disable body preview capture.
	MaxBodyPreview int

	// RedactKeys are top-level JSON fields replaced by "[redacted]" in the preview.
	RedactKeys []string

	// OnlyErrors records only requests answered with status >= 400.
	OnlyErrors bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(store Store, logger *zap.Logger) Config {
	return Config{
		Store:          store,
		Logger:         logger,
		MaxBodyPreview: 500,
		RedactKeys:     []string{"password", "currentPassword", "newPassword"},
		OnlyErrors:     true,
	}
}

// Ledger is the request recording middleware.
type Ledger struct {
	cfg Config
	wg  sync.WaitGroup
	now func() time.Time
}

// New creates a Ledger from cfg.
func New(cfg Config) *Ledger {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Ledger{cfg: cfg, now: time.Now}
}

// Middleware records each request passing through next. A nil Ledger
// passes requests through untouched.
func (l *Ledger) Middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		start := l.now()
		entry := &ledgerstore.Entry{
			RequestID:       uuid.New().String(),
			ClientRequestID: r.Header.Get(RequestIDHeader),
			Method:          r.Method,
			Path:            r.URL.Path,
			Query:           r.URL.RawQuery,
			RemoteIP:        network.GetClientIP(r),
			UserAgent:       r.UserAgent(),
			ActorType:       "anonymous",
			RequestBodySize: r.ContentLength,
			StartedAt:       start,
		}
		if u, ok := auth.CurrentUser(r); ok {
			entry.ActorType = "session"
			entry.ActorID = u.ID
		} else if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			entry.ActorType = "api_key"
		}
		l.captureBody(r, entry)

		w.Header().Set(RequestIDHeader, entry.RequestID)
		r = r.WithContext(context.WithValue(r.Context(), ctxKeyEntry, entry))
		wrapped := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		end := l.now()
		entry.StatusCode = wrapped.statusCode
		entry.ResponseSize = wrapped.bytesWritten
		entry.CompletedAt = end
		entry.DurationMs = float64(end.Sub(start).Microseconds()) / 1000.0

		if wrapped.statusCode < 400 {
			if l.cfg.OnlyErrors {
				return
			}
		} else if entry.ErrorClass == "" {
			entry.ErrorClass = classify(wrapped.statusCode)
		}

		// Store asynchronously so the response is not delayed.
		rec := *entry
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := l.cfg.Store.Create(ctx, rec); err != nil {
				l.cfg.Logger.Error("failed to store ledger entry",
					zap.String("request_id", rec.RequestID),
					zap.Error(err))
			}
		}()
	})
}

// Wait blocks until pending writes finish or ctx is done.
func (l *Ledger) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// captureBody hashes and previews a JSON body, then restores it for the handler.
func (l *Ledger) captureBody(r *http.Request, entry *ledgerstore.Entry) {
	if l.cfg.MaxBodyPreview <= 0 || r.Body == nil || r.ContentLength == 0 {
		return
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return
	}

	const maxCapture = 64 << 10
	head, err := io.ReadAll(io.LimitReader(r.Body, maxCapture))
	r.Body = readCloser{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	if err != nil || len(head) == 0 {
		return
	}

	sum := sha256.Sum256(head)
	entry.RequestBodyHash = hex.EncodeToString(sum[:])[:8]
	if entry.RequestBodySize < 0 {
		entry.RequestBodySize = int64(len(head))
	}

	preview := redact(head, l.cfg.RedactKeys)
	if len(preview) > l.cfg.MaxBodyPreview {
		preview = preview[:l.cfg.MaxBodyPreview] + "..."
	}
	entry.RequestBodyPreview = preview
}

// redact replaces the given top-level keys of a JSON object. Bodies that
// are not a JSON object are not previewed at all.
func redact(body []byte, keys []string) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return ""
	}
	masked, _ := json.Marshal("[redacted]")
	for k := range obj {
		for _, rk := range keys {
			if strings.EqualFold(k, rk) {
				obj[k] = masked
			}
		}
	}
	out, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	return string(out)
}

func classify(status int) string {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return "validation"
	case status == http.StatusUnauthorized:
		return "auth"
	case status == http.StatusForbidden:
		return "forbidden"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status >= 500:
		return "internal"
	default:
		return "client_error"
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

// responseWrapper wraps http.ResponseWriter to capture status code and bytes written.
type responseWrapper struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	wroteHeader  bool
}

func (rw *responseWrapper) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWrapper) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// Flush implements http.Flusher.
func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// SetErrorClass overrides the error class recorded for the current request.
func SetErrorClass(ctx context.Context, class string) {
	if entry, ok := ctx.Value(ctxKeyEntry).(*ledgerstore.Entry); ok {
		entry.ErrorClass = class
	}
}

// GetRequestID returns the ledger request ID for the current request.
func GetRequestID(ctx context.Context) string {
	if entry, ok := ctx.Value(ctxKeyEntry).(*ledgerstore.Entry); ok {
		return entry.RequestID
	}
	return ""
}
