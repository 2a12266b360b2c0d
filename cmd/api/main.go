package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Werneck0live/cadastro-leads/internal/admin"
	"github.com/Werneck0live/cadastro-leads/internal/auth"
	"github.com/Werneck0live/cadastro-leads/internal/broker"
	"github.com/Werneck0live/cadastro-leads/internal/config"
	"github.com/Werneck0live/cadastro-leads/internal/db"
	"github.com/Werneck0live/cadastro-leads/internal/handlers"
	"github.com/Werneck0live/cadastro-leads/internal/intake"
	"github.com/Werneck0live/cadastro-leads/internal/leads"
	"github.com/Werneck0live/cadastro-leads/internal/metrics"
	"github.com/Werneck0live/cadastro-leads/internal/proposals"
	"github.com/Werneck0live/cadastro-leads/internal/recordlog"
	"github.com/Werneck0live/cadastro-leads/internal/registry"
	"github.com/Werneck0live/cadastro-leads/internal/store"
)

// cmd/api/main.go
func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	// Logger JSON "global" - permite usar slog.Info/slog.Error/Warn em qualquer lugar
	logger := config.InitLogger(cfg.LogLevel)

	// HOOK: admin job (one-off)
	task := flag.String("task", "", "admin task: seed | compact")
	seedPassword := flag.String("seed-password", "demo123", "password for seeded consultants")
	flag.Parse()

	slog.Info("starting", "port", cfg.Port, "store_driver", cfg.StoreDriver, "task", *task)

	rlog, closeLog, err := openLog(cfg)
	if err != nil {
		slog.Error("record_log_open_error", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeLog()

	adminUser, err := auth.DefaultAdmin(cfg.AdminDefaultPassword)
	if err != nil {
		slog.Error("default_admin_error", "err", err)
		os.Exit(1)
	}
	st, err := store.Open(context.Background(), rlog, store.Options{Logger: logger, DefaultAdmin: adminUser})
	if err != nil {
		// replay incompleto deixaria ids e referências inconsistentes
		slog.Error("store_replay_failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = st.Close() }()

	if *task != "" {
		runTask(*task, *seedPassword, st, logger)
		return // encerra o processo sem subir HTTP
	}

	m := metrics.New()

	var sink broker.Sink = broker.Nop{}
	if cfg.EventsEnabled {
		pub, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
		if err != nil {
			// sem broker a API continua; só o painel em tempo real fica sem eventos
			slog.Error("rabbitmq_connect_error", "err", err)
		} else {
			sink = pub
		}
	}
	defer func() { _ = sink.Close() }()
	events := broker.NewEmitter(sink, logger, m)

	leadSvc := leads.NewService(st, leads.Options{Events: events, Metrics: m, Logger: logger})
	propSvc := proposals.NewService(st, proposals.Options{Leads: leadSvc, Events: events, Metrics: m, Logger: logger})
	intakeSvc := intake.NewService(st, registry.NewClient(cfg.RegistryURL, cfg.RegistryTimeout), leadSvc, propSvc, m, logger)

	api := &handlers.API{
		Auth:      auth.NewService(st, logger),
		Users:     st,
		Intake:    intakeSvc,
		Leads:     leadSvc,
		Proposals: propSvc,
		Logger:    logger.With("cmp", "http"),
	}

	mux := http.NewServeMux()
	api.Routes(mux)
	mux.Handle("GET /metrics", m.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           logMiddleware(m.Middleware(mux)),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	// start server
	go func() {
		slog.Info("api_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http_server_error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("graceful_shutdown_error", "err", err)
	}
	slog.Info("stopped")
}

// openLog escolhe o meio durável pelo STORE_DRIVER.
func openLog(cfg *config.Config) (recordlog.Log, func(), error) {
	switch cfg.StoreDriver {
	case "mongo":
		client, err := db.NewMongoClient(cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		disconnect := func() { _ = client.Disconnect(context.Background()) }
		ml, err := mongoLog(client, cfg.MongoDB)
		if err != nil {
			disconnect()
			return nil, nil, err
		}
		return ml, disconnect, nil
	default:
		fl, err := recordlog.NewFileLog(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return fl, func() {}, nil
	}
}

func mongoLog(client *mongo.Client, database string) (*recordlog.MongoLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ml := recordlog.NewMongoLog(client.Database(database))
	if err := ml.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	return ml, nil
}

func runTask(task, seedPassword string, st *store.Store, logger *slog.Logger) {
	ctx := context.Background()
	switch task {
	case "seed":
		if _, err := admin.SeedConsultants(ctx, auth.NewService(st, logger), seedPassword, logger); err != nil {
			slog.Error("seed_failed", "err", err)
			os.Exit(1)
		}
		slog.Info("seed_done")
	case "compact":
		if err := admin.Compact(ctx, st, logger); err != nil {
			slog.Error("compact_failed", "err", err)
			os.Exit(1)
		}
	default:
		slog.Error("unknown_admin_task", "task", task)
		os.Exit(2)
	}
}

type statusRW struct {
	http.ResponseWriter
	status int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRW) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusRW{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		slog.Info("http_request",
			"method", r.Method, "path", r.URL.Path,
			"status", srw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
