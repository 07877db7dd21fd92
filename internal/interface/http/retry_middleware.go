package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/text-summarizer/internal/infra/config"
)

const retryBodyLimit = 1 << 20

var errBodyTooLarge = errors.New("request body exceeds retry limit")

// withRetry replays idempotent POST handlers that failed with an upstream status.
// Paths listed in cfg.Exclude run once: model inference is never retried.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	exclusions := make(map[string]struct{}, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		exclusions[path] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := exclusions[r.URL.Path]; skip || r.Method != http.MethodPost {
			handler.ServeHTTP(w, r)
			return
		}
		body, err := readRequestBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}
		// every attempt logs under the same request id
		if r.Header.Get(requestIDHeader) == "" {
			r.Header.Set(requestIDHeader, uuid.NewString())
		}

		for attempt := 1; ; attempt++ {
			recorder := newRetryResponseRecorder(w)
			attemptReq := r.Clone(r.Context())
			attemptReq.Body = io.NopCloser(bytes.NewReader(body))
			attemptReq.ContentLength = int64(len(body))

			handler.ServeHTTP(recorder, attemptReq)
			if !recorder.retryable() || attempt >= cfg.MaxAttempts {
				recorder.commit()
				return
			}

			delay := cfg.BaseBackoff * time.Duration(1<<(attempt-1))
			logger.Warn("upstream failure, retrying request",
				"path", r.URL.Path,
				"status", recorder.statusCode,
				"attempt", attempt,
				"backoff_ms", delay.Milliseconds(),
				"request_id", r.Header.Get(requestIDHeader),
			)
			if !sleepCtx(r, delay) {
				recorder.commit()
				return
			}
		}
	})
}

// sleepCtx waits for d unless the client goes away first.
func sleepCtx(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func readRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > retryBodyLimit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// retryResponseRecorder buffers one attempt so a failed one can be discarded.
type retryResponseRecorder struct {
	dst        http.ResponseWriter
	header     http.Header
	body       bytes.Buffer
	statusCode int
	wroteHead  bool
}

func newRetryResponseRecorder(dst http.ResponseWriter) *retryResponseRecorder {
	return &retryResponseRecorder{dst: dst, header: make(http.Header), statusCode: http.StatusOK}
}

func (r *retryResponseRecorder) Header() http.Header { return r.header }

func (r *retryResponseRecorder) WriteHeader(status int) {
	if r.wroteHead {
		return
	}
	r.statusCode = status
	r.wroteHead = true
}

func (r *retryResponseRecorder) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

func (r *retryResponseRecorder) Flush() {}

func (r *retryResponseRecorder) commit() {
	dst := r.dst.Header()
	for k, values := range r.header {
		dst[k] = append([]string(nil), values...)
	}
	r.dst.WriteHeader(r.statusCode)
	if r.body.Len() > 0 {
		_, _ = r.dst.Write(r.body.Bytes())
	}
}

// retryable reports statuses that point at a transient upstream condition.
func (r *retryResponseRecorder) retryable() bool {
	switch r.statusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
