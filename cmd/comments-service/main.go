package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/blog-comments/internal/cache"
	"github.com/pribylovaa/blog-comments/internal/config"
	"github.com/pribylovaa/blog-comments/internal/markup"
	"github.com/pribylovaa/blog-comments/internal/metrics"
	"github.com/pribylovaa/blog-comments/internal/service"
	"github.com/pribylovaa/blog-comments/internal/storage"
	"github.com/pribylovaa/blog-comments/internal/storage/memory"
	csmongo "github.com/pribylovaa/blog-comments/internal/storage/mongo"
	"github.com/pribylovaa/blog-comments/internal/storage/postgres"
	commentshttp "github.com/pribylovaa/blog-comments/internal/transport/http"
	"github.com/pribylovaa/blog-comments/internal/verify"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// pinger — зависимость, участвующая в /healthz.
type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting comments-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	var probes []pinger
	var closers []func()

	st, err := openStorage(rootCtx, cfg, log)
	if err != nil {
		log.Error("storage_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	closers = append(closers, func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warn("storage_close_failed", slog.String("err", err.Error()))
		}
	})
	if p, ok := st.(pinger); ok {
		probes = append(probes, p)
	}

	posts, postsProbes, postsClose, err := openPosts(rootCtx, cfg, log)
	if err != nil {
		log.Error("posts_init_failed", slog.String("err", err.Error()))
		closeAll(closers)
		os.Exit(1)
	}
	closers = append(closers, postsClose)
	probes = append(probes, postsProbes...)

	m := metrics.New(prometheus.DefaultRegisterer)

	var verifier verify.Verifier
	if cfg.Verify.Secret == "" {
		// validate() допускает пустой секрет только для env=local.
		log.Warn("verification_disabled", slog.String("env", cfg.Env))
		verifier = verify.AllowAll{}
	} else {
		verifier = verify.NewHTTP(cfg.Verify, m)
	}

	svc := service.New(st, posts, verifier, m, *cfg)
	log.Info("service_initialized")

	if cfg.Reconcile.OnStart {
		recCtx, recCancel := context.WithTimeout(rootCtx, time.Minute)
		rep, err := svc.ReconcileReplies(recCtx)
		recCancel()
		if err != nil {
			log.Warn("reconcile_failed", slog.String("err", err.Error()))
		} else {
			log.Info("reconcile_done", slog.Int("relinked", rep.Relinked), slog.Int64("removed", rep.Removed))
		}
	}

	apiHandler := commentshttp.NewRouter(svc, commentshttp.Options{
		Logger:      log,
		Timeout:     cfg.Timeouts.Service,
		Metrics:     m,
		Markup:      markup.New(),
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&ready) != 1 {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, p := range probes {
			if err := p.Ping(ctx); err != nil {
				log.Warn("healthz_ping_failed", slog.String("err", err.Error()))
				http.Error(w, "dependency unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", apiHandler)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Error("http_listen_failed", slog.String("addr", httpAddr), slog.String("err", err.Error()))
		closeAll(closers)
		os.Exit(1)
	}
	log.Info("http_listen_start", slog.String("addr", httpAddr))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)
	log.Info("service_ready")

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
	} else {
		log.Info("http_stopped")
	}

	closeAll(closers)
	log.Info("service_stopped")
}

// openStorage — хранилище комментариев по storage.driver.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn("storage_in_memory", slog.String("hint", "data is lost on restart"))
		return memory.New(), nil
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	st, err := csmongo.New(dbCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("mongo_connected")

	return st, nil
}

// openPosts — источник постов по posts.driver, опционально за Redis-кэшем.
func openPosts(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.PostFinder, []pinger, func(), error) {
	if cfg.Posts.Driver == config.PostsStatic {
		log.Info("posts_static", slog.Int("count", len(cfg.Posts.Static)))
		return memory.NewPosts(cfg.Posts.Static), nil, func() {}, nil
	}

	if cfg.Posts.Migrations != "" {
		if err := postgres.Migrate(cfg.Posts.URL, cfg.Posts.Migrations); err != nil {
			return nil, nil, nil, err
		}
		log.Info("postgres_migrated", slog.String("dir", cfg.Posts.Migrations))
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pg, err := postgres.New(dbCtx, cfg.Posts.URL)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("postgres_connected")

	if cfg.Cache.RedisURL == "" {
		return pg, []pinger{pg}, pg.Close, nil
	}

	pc, err := cache.New(dbCtx, cfg.Cache.RedisURL, cfg.Cache.Prefix, cfg.Cache.TTL, pg)
	if err != nil {
		pg.Close()
		return nil, nil, nil, err
	}
	log.Info("redis_connected", slog.Duration("ttl", cfg.Cache.TTL))

	closeFn := func() {
		if err := pc.Close(); err != nil {
			log.Warn("redis_close_failed", slog.String("err", err.Error()))
		}
		pg.Close()
	}

	return pc, []pinger{pg, pc}, closeFn, nil
}

// closeAll освобождает ресурсы в порядке, обратном открытию.
func closeAll(closers []func()) {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
