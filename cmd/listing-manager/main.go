package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"listing-manager/api"
	"listing-manager/auth"
	"listing-manager/config"
	"listing-manager/listing"
	"listing-manager/logging"
	"listing-manager/marketplace"
	"listing-manager/static"
	"listing-manager/utils"
	"listing-manager/worker"
)

var (
	cfg   *config.Config
	users *auth.UsersFile
	audit auditLogs
)

type auditLogs struct {
	access *logging.Logger
	login  *logging.Logger
	bulk   *logging.Logger
}

func (a auditLogs) all() []*logging.Logger {
	return []*logging.Logger{a.access, a.login, a.bulk}
}

func main() {
	configFile := flag.String("config", "config.yaml", "config file, relative to the project root")
	debug := flag.Bool("debug", false, "debug diagnostics")
	flag.Parse()

	loadEverything(*configFile)
	logDir := utils.ResolvePath(cfg.Server.LogDir)
	diag, err := logging.SetupDiagnostics(logDir, "api.log", *debug)
	if err != nil {
		slog.Error("diagnostics setup failed", "error", err)
		os.Exit(1)
	}
	defer diag.Close()

	client := marketplace.NewClient(cfg.Marketplace)
	serializer := listing.NewSerializer(cfg)
	errorLog := logging.NewErrorLog(logDir, cfg.Bulk.ErrorLogFile)
	authenticator := auth.NewAuthenticator(cfg, users)

	// submissions are not tied to any request and only stop with the process
	proc := worker.NewProcessor(context.Background(), worker.ProcessorConfig{
		Submitter: client,
		Renderer:  serializer,
		ErrorLog:  errorLog,
		Audit:     audit.bulk,
		Delay:     cfg.Bulk.ItemDelay(),
	})

	deps := &api.Deps{
		Config:      cfg,
		Auth:        authenticator,
		Processor:   proc,
		Reporter:    worker.NewReporter(proc),
		ErrorLog:    errorLog,
		Marketplace: client,
		Serializer:  serializer,
		Inventory:   api.NewInventoryCache(time.Duration(cfg.Inventory.CacheTTLMinutes) * time.Minute),
		AccessLog:   audit.access,
		LoginLog:    audit.login,
	}
	mux := http.NewServeMux()
	api.RegisterHandlers(mux, deps)
	static.RegisterStaticHandler(mux, cfg, audit.access)

	srv := &http.Server{Addr: cfg.Server.Listen, Handler: mux}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for sig := range sigs {
			if sig == syscall.SIGHUP {
				slog.Info("reloading users and audit logs")
				reload(authenticator)
				continue
			}
			slog.Info("shutting down", "signal", sig.String(), "bulkProcessing", proc.IsProcessing())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = srv.Shutdown(ctx)
			cancel()
			return
		}
	}()

	slog.Info("server listening", "addr", cfg.Server.Listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	for _, l := range audit.all() {
		l.Close()
	}
}

func loadEverything(configFile string) {
	var err error
	cfg, err = config.LoadConfig(configFile)
	if err != nil {
		slog.Error("loading config failed", "file", configFile, "error", err)
		os.Exit(1)
	}
	if cfg.Auth.UserBackend == "file" {
		users, err = auth.LoadUsers(cfg.Auth.UserFile)
		if err != nil {
			slog.Error("loading users failed", "file", cfg.Auth.UserFile, "error", err)
			os.Exit(1)
		}
	}
	logDir := utils.ResolvePath(cfg.Server.LogDir)
	audit = auditLogs{
		access: logging.NewLoggerOrDie(logDir, "access.log"),
		login:  logging.NewLoggerOrDie(logDir, "login.log"),
		bulk:   logging.NewLoggerOrDie(logDir, "bulk.log"),
	}
}

// reload re-reads the users file and reopens audit logs. Config changes
// other than users need a restart.
func reload(a *auth.Authenticator) {
	if cfg.Auth.UserBackend == "file" {
		u, err := auth.LoadUsers(cfg.Auth.UserFile)
		if err != nil {
			slog.Error("reloading users failed, keeping the previous list", "error", err)
		} else {
			a.SetUsers(u)
		}
	}
	for _, l := range audit.all() {
		if err := l.Reopen(); err != nil {
			slog.Error("reopening audit log failed", "error", err)
		}
	}
}
