package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/visitech/portfolio-api/internal/common"
)

// HeaderRequestID 请求 ID 头，调用方传入时沿用，否则生成新的 UUID
const HeaderRequestID = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDFrom 取出当前请求的 ID，没有时返回 "-"
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		return id
	}
	return "-"
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// statusRecorder 记录写出的状态码和字节数
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		log.Printf("📥 [%s] %s %s → %d (%dB, %s)",
			RequestIDFrom(r.Context()), r.Method, r.URL.RequestURI(), status, rec.bytes,
			time.Since(start).Round(time.Millisecond))
	})
}

// degradedWriter 在写出状态码前检查降级标记，降级结果不允许任何一层缓存
type degradedWriter struct {
	http.ResponseWriter
	degraded *common.Degraded
	wrote    bool
}

func (w *degradedWriter) WriteHeader(code int) {
	if !w.wrote {
		w.wrote = true
		if w.degraded.IsSet() {
			w.Header().Set("Cache-Control", "no-store")
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *degradedWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func withDegradation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, d := common.WithDegraded(r.Context())
		next.ServeHTTP(&degradedWriter{ResponseWriter: w, degraded: d}, r.WithContext(ctx))
	})
}
