// Package main initializes and starts the local pediatric record keeper:
// configuration, logging, the file-backed record store, session
// restoration and the HTTP API.
package main

import (
	"cmp"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/tcordeiro/pediatria/internal/auth"
	"github.com/tcordeiro/pediatria/internal/backup"
	"github.com/tcordeiro/pediatria/internal/config"
	"github.com/tcordeiro/pediatria/internal/gate"
	"github.com/tcordeiro/pediatria/internal/kv"
	"github.com/tcordeiro/pediatria/internal/logger"
	"github.com/tcordeiro/pediatria/internal/server/handler/http"
	"github.com/tcordeiro/pediatria/internal/store"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Open the file-backed medium and the record store over it.
	medium, err := kv.OpenFile(options.DataFile, options.QuotaBytes)
	if err != nil {
		zapLogger.Fatal("cannot open data file", zap.Error(err))
	}
	recordStore := store.New(medium)

	// Session manager with the deployment credential table; restore any
	// persisted session that is still inside its time-to-live.
	users := options.Users
	if len(users) == 0 {
		users = auth.DefaultUsers()
	}
	sessions := auth.NewManager(medium, users, time.Now, zapLogger)
	if restored := sessions.RestoreSession(); restored != nil {
		zapLogger.Info("session restored",
			zap.String("username", restored.Username),
			zap.String("role", string(restored.Role)),
		)
	}

	// The gate is the only mutation path for the presentation layer.
	recordGate := gate.New(recordStore, sessions, nil, nil)

	// Backup engine operating directly on the store.
	exporter := backup.NewExporter(recordStore, time.Now)
	importer := backup.NewImporter(recordStore)

	// Build the router with middleware and routes.
	router := http.NewRouter(
		&http.AuthHandler{Sessions: sessions},
		&http.PatientHandler{Gate: recordGate},
		&http.RecordHandler{Gate: recordGate},
		&http.BackupHandler{Exporter: exporter, Importer: importer},
		&http.ReportHandler{Roster: recordStore, Sessions: sessions},
		sessions,
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting local API",
		zap.String("addr", options.Addr),
		zap.String("dataFile", options.DataFile),
	)
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start server", zap.Error(err))
	}
}
