// Package apistats counts public API requests into time buckets.
package apistats

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/stratasite/internal/app/store/apistats"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const recordTimeout = 5 * time.Second

// Store is the persistence behind a Recorder.
type Store interface {
	Record(ctx context.Context, statType apistats.StatType, bucketDuration time.Duration, durationMs int64, isError bool) error
}

// Recorder writes counters off the request path. One Recorder serves every
// tracked route group; its bucket width can change at runtime.
type Recorder struct {
	store  Store
	logger *zap.Logger
	bucket atomic.Int64
	wg     sync.WaitGroup
}

// NewRecorder defaults a non-positive bucket to one hour.
func NewRecorder(store Store, logger *zap.Logger, bucket time.Duration) *Recorder {
	r := &Recorder{store: store, logger: logger}
	if bucket <= 0 {
		bucket = time.Hour
	}
	r.bucket.Store(int64(bucket))
	return r
}

// SetBucketDuration applies to recordings made after the call.
func (r *Recorder) SetBucketDuration(d time.Duration) { r.bucket.Store(int64(d)) }

func (r *Recorder) BucketDuration() time.Duration { return time.Duration(r.bucket.Load()) }

// Record counts one request in the background.
func (r *Recorder) Record(statType apistats.StatType, durationMs int64, isError bool) {
	bucket := r.BucketDuration()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := r.store.Record(ctx, statType, bucket, durationMs, isError); err != nil {
			r.logger.Error("record api stats", zap.String("stat_type", string(statType)), zap.Error(err))
		}
	}()
}

// Wait drains pending recordings, giving up when ctx ends.
func (r *Recorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Middleware counts requests under statType; 4xx and 5xx count as errors.
// Preflight requests are skipped and a nil recorder disables counting.
func Middleware(recorder *Recorder, statType apistats.StatType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			recorder.Record(statType, time.Since(start).Milliseconds(), status >= http.StatusBadRequest)
		})
	}
}
