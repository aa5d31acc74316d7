package main

import (
	"context"
	"flag"
	"net/http"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/wrightpress/submission-limiter/internal/config"
	"github.com/wrightpress/submission-limiter/internal/form"
	"github.com/wrightpress/submission-limiter/internal/utils"
	"github.com/wrightpress/submission-limiter/internal/log"
	"github.com/wrightpress/submission-limiter/pkg/httplimit"
	"github.com/wrightpress/submission-limiter/rate_limiter"
)

// logSender stands in for the real delivery channel (mail, CRM, ticketing):
// it just logs accepted submissions.
type logSender struct{}

func (logSender) Send(_ context.Context, sub *form.Submission) error {
	log.Logger().Info("Contact submission received",
		zap.String("submissionID", sub.ID),
		zap.String("service", sub.Service))
	return nil
}

type contactHandler struct {
	sender form.Sender
}

func (h *contactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sub := form.NewSubmission(
		r.FormValue("name"),
		r.FormValue("email"),
		r.FormValue("phone"),
		r.FormValue("service"),
		r.FormValue("message"),
	)
	if err := sub.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if err := h.sender.Send(r.Context(), sub); err != nil {
		http.Error(w, "failed to deliver submission", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("Thanks! We'll get back to you shortly."))
}

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Logger().Fatal("Failed to load config", zap.Error(err))
	}
	log.Configure(cfg.Logging.Level)

	var store rate_limiter.Store = rate_limiter.NewMemoryStore()
	if cfg.Redis.Enabled {
		store = rate_limiter.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	}

	mux := http.NewServeMux()
	mux.Handle("/api/contact", &contactHandler{sender: logSender{}})

	wrappedMux := httplimit.NewHandler(mux, &httplimit.Config{
		Extractor: utils.NewFallbackExtractor(
			utils.NewHTTPHeadersExtractor(cfg.Server.ClientKeyHeader),
			utils.NewRemoteAddrExtractor(),
		),
		Store: store,
	})

	// use wrappedMux instead of mux as root handler
	log.Logger().Info("Run a server listening", zap.String("addr", cfg.Server.ListenAddr))
	if err := http.ListenAndServe(cfg.Server.ListenAddr, wrappedMux); err != nil {
		log.Logger().Fatal("Failed to serve handler", zap.Error(err))
	}
}
