package httplimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/wrightpress/submission-limiter/internal/utils"
	"github.com/wrightpress/submission-limiter/rate_limiter"
)

const (
	rateLimitMaxRequests = "X-Ratelimit-Max-Requests"
	rateLimitState       = "X-Ratelimit-State"
	rateLimitRetryAfter  = "X-Ratelimit-Retry-After"
)

// Config defines the configuration for the submission limit handler.
type Config struct {
	Extractor utils.Extractor
	Store     rate_limiter.Store
	Now       func() time.Time
}

type submissionLimitHandler struct {
	handler http.Handler
	config  *Config
}

// NewHandler wraps an existing http.Handler with the contact form submission
// limit. Each client, as identified by the extractor, gets its own submission
// log in the shared store. Denied requests are answered with a 429 and never
// reach the wrapped handler; allowed requests that the wrapped handler
// answers successfully consume one slot.
func NewHandler(originalHandler http.Handler, config *Config) http.Handler {
	// copy so defaulting never writes through the caller's pointer
	cfg := *config
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &submissionLimitHandler{
		handler: originalHandler,
		config:  &cfg,
	}
}

func (h *submissionLimitHandler) limiterFor(key string) *rate_limiter.SubmissionLimiter {
	return rate_limiter.NewSubmissionLimiter(h.config.Store,
		rate_limiter.WithStorageKey(rate_limiter.DefaultStorageKey+":"+key),
		rate_limiter.WithClock(h.config.Now),
	)
}

func (h *submissionLimitHandler) writeResponse(writer http.ResponseWriter, status int, msg string, args ...interface{}) {
	writer.Header().Set("Content-Type", "text/plain")
	writer.WriteHeader(status)
	if _, err := writer.Write([]byte(fmt.Sprintf(msg, args...))); err != nil {
		fmt.Printf("failed to write body to HTTP request: %v", err)
	}
}

// ServeHTTP evaluates the client's submission limit and either answers the
// request itself (429 on deny) or forwards it to the wrapped handler. The
// rate limiting headers are set on allow and deny alike so the client always
// knows where it stands.
func (h *submissionLimitHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	key, err := h.config.Extractor.Extract(request)
	if err != nil {
		h.writeResponse(writer, http.StatusBadRequest, "failed to collect rate limiting key from request: %v", err)
		return
	}

	limiter := h.limiterFor(key)
	decision := limiter.Evaluate(request.Context())

	writer.Header().Set(rateLimitMaxRequests, strconv.Itoa(rate_limiter.MaxSubmissions))
	writer.Header().Set(rateLimitState, decision.State.String())
	writer.Header().Set(rateLimitRetryAfter, strconv.Itoa(retryAfterSeconds(decision, h.config.Now())))

	if !decision.Allowed() {
		h.writeResponse(writer, http.StatusTooManyRequests, "you have sent too many submissions, please try again later")
		return
	}

	// only a submission the wrapped handler accepted consumes a slot, so a
	// validation failure or an upstream error can be retried freely
	recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
	h.handler.ServeHTTP(recorder, request)
	if recorder.status < http.StatusBadRequest {
		limiter.RecordAccepted(request.Context())
	}
}

func retryAfterSeconds(d rate_limiter.Decision, now time.Time) int {
	if d.Allowed() || d.ResetAt.IsZero() {
		return 0
	}
	return int(d.ResetAt.Sub(now) / time.Second)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
