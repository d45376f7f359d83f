// Package main implements the K-Type lookup server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/WessleyAI/ktype-finder/engine/dataset"
	"github.com/WessleyAI/ktype-finder/engine/domain"
	"github.com/WessleyAI/ktype-finder/engine/lookup"
	"github.com/WessleyAI/ktype-finder/engine/present"
	"github.com/WessleyAI/ktype-finder/pkg/fn"
	"github.com/WessleyAI/ktype-finder/pkg/metrics"
	"github.com/WessleyAI/ktype-finder/pkg/mid"
	"github.com/WessleyAI/ktype-finder/pkg/natsutil"
)

// Config holds all environment-based configuration.
type Config struct {
	Port       string
	DataPath   string
	Encoding   string
	AliasPath  string
	NatsURL    string
	CORSOrigin string
	RateLimit  float64
	RateBurst  int
}

func loadConfig() Config {
	return Config{
		Port:       envOr("PORT", "8080"),
		DataPath:   envOr("KTYPE_DATA", "ktypes.csv"),
		Encoding:   envOr("KTYPE_ENCODING", "latin1"),
		AliasPath:  envOr("KTYPE_ALIASES", ""),
		NatsURL:    envOr("NATS_URL", ""),
		CORSOrigin: envOr("CORS_ORIGIN", "*"),
		RateLimit:  envFloat("RATE_LIMIT", 50),
		RateBurst:  envInt("RATE_BURST", 100),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Dataset and aliases ---
	aliases, err := domain.LoadAliasFile(cfg.AliasPath)
	if err != nil {
		return err
	}
	opts := lookup.DefaultOptions()
	opts.ModelAliases = aliases

	cache := dataset.NewFileCache(cfg.DataPath, dataset.Options{Encoding: cfg.Encoding, Comma: ','}, logger)
	if _, err := cache.Get(ctx); err != nil {
		return fmt.Errorf("load %s: %w", cfg.DataPath, err)
	}

	reg := metrics.New()
	svc := lookup.New(cache, opts, reg, logger)

	// --- NATS (optional) ---
	notify := func(context.Context, *lookup.Result) {}
	if cfg.NatsURL != "" {
		nc, err := connectNATS(ctx, cfg.NatsURL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()

		notify = publisher(nc, logger)
		sub, err := natsutil.Handle(nc, lookup.SubjectLookup, "ktype-api", lookupResponder(svc, notify))
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", lookup.SubjectLookup, err)
		}
		defer sub.Unsubscribe()
		logger.Info("nats responder ready", "subject", lookup.SubjectLookup)
	}

	// --- Build HTTP server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newHandler(cfg, svc, reg, notify, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful shutdown ---
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func connectNATS(ctx context.Context, url string, logger *slog.Logger) (*nats.Conn, error) {
	res := fn.Retry(ctx, fn.DefaultRetry, func(context.Context) fn.Result[*nats.Conn] {
		nc, err := nats.Connect(url, nats.Name("ktype-api"))
		if err != nil {
			logger.Warn("nats connect failed", "url", url, "err", err)
		}
		return fn.FromPair(nc, err)
	})
	nc, err := res.Unwrap()
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

// publisher announces completed lookups. Publish failures are logged, never returned.
func publisher(nc *nats.Conn, logger *slog.Logger) func(context.Context, *lookup.Result) {
	return func(ctx context.Context, res *lookup.Result) {
		if res.Empty {
			return
		}
		if err := natsutil.Publish(ctx, nc, lookup.SubjectCompleted, lookup.NewEvent(res)); err != nil {
			logger.Warn("publish lookup event failed", "err", err)
		}
	}
}

func lookupResponder(svc *lookup.Service, notify func(context.Context, *lookup.Result)) func(context.Context, lookup.Request) (present.Reply, error) {
	return func(ctx context.Context, req lookup.Request) (present.Reply, error) {
		res, err := svc.Lookup(ctx, req)
		if err != nil {
			return present.Reply{}, err
		}
		notify(ctx, res)
		return present.NewReply(res), nil
	}
}

// routes are the paths served by newHandler, used as metric labels.
var routes = []string{"/api/health", "/api/catalog", "/api/lookup", "/metrics"}

func newHandler(cfg Config, svc *lookup.Service, reg *metrics.Registry, notify func(context.Context, *lookup.Result), logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/catalog", handleCatalog(svc, logger))
	mux.HandleFunc("POST /api/lookup", handleLookup(svc, notify, logger))
	mux.Handle("GET /metrics", reg.Handler())

	return mid.Chain(mux,
		mid.Recover(logger),
		mid.Logger(logger),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("ktype-api"),
		mid.Metrics(reg, routes...),
		mid.RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)),
	)
}

// --- Handlers ---

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleCatalog(svc *lookup.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.Catalog(r.Context())
		if err != nil {
			logger.Error("catalog failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		etag := strconv.Quote(info.Fingerprint)
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// LookupRequest is the JSON body for POST /api/lookup.
type LookupRequest struct {
	Query string `json:"query"`
	Year  int    `json:"year,omitempty"`
	Make  string `json:"make,omitempty"`
	Model string `json:"model,omitempty"`
}

func handleLookup(svc *lookup.Service, notify func(context.Context, *lookup.Result), logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body LookupRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		res, err := svc.Lookup(r.Context(), lookup.Request{
			Query:     body.Query,
			Selection: domain.Selection{Year: body.Year, Make: body.Make, Model: body.Model},
		})
		switch {
		case lookup.IsValidation(err):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			logger.Error("lookup failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		notify(r.Context(), res)
		writeJSON(w, http.StatusOK, present.NewReply(res))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
