package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/alxcrm/crmd/internal/app"
	"github.com/alxcrm/crmd/internal/jobs"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	var application *app.App
	if strings.EqualFold(os.Getenv("CRM_DB"), "memory") {
		zlog.Warn().Msg("running on the in-memory store; data will not persist")
		application = app.NewInMemory()
	} else {
		db, err := gorm.Open(postgres.Open(dsnFromEnv()), &gorm.Config{TranslateError: true})
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to connect to database")
		}
		application = app.New(db)
	}

	if err := application.Migrate(); err != nil {
		zlog.Fatal().Err(err).Msg("failed to migrate database")
	}
	if os.Getenv("CRM_SEED") == "1" {
		if err := application.Seed(context.Background()); err != nil {
			zlog.Fatal().Err(err).Msg("failed to seed database")
		}
	}

	crmJobs := jobs.New(application.Stats, application.Orders, jobs.Config{
		ReportPath:    os.Getenv("CRM_REPORT_LOG"),
		RemindersPath: os.Getenv("CRM_REMINDERS_LOG"),
		HeartbeatPath: os.Getenv("CRM_HEARTBEAT_LOG"),
		ReportSpec:    os.Getenv("CRM_REPORT_CRON"),
		ReminderSpec:  os.Getenv("CRM_REMINDERS_CRON"),
		HeartbeatSpec: os.Getenv("CRM_HEARTBEAT_CRON"),
	})
	if err := crmJobs.Start(); err != nil {
		zlog.Fatal().Err(err).Msg("failed to start jobs")
	}
	defer crmJobs.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	server := &http.Server{Addr: ":" + port, Handler: application.HTTPHandler()}

	go func() {
		zlog.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}

func dsnFromEnv() string {
	if dsn := strings.TrimSpace(os.Getenv("DB_DSN")); dsn != "" {
		return dsn
	}
	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := envOr("DB_USER", envOr("POSTGRES_USER", "postgres"))
	pass := envOr("DB_PASSWORD", envOr("POSTGRES_PASSWORD", "postgres"))
	name := envOr("DB_NAME", envOr("POSTGRES_DB", "crm"))
	ssl := envOr("DB_SSLMODE", "disable")
	return "host=" + host + " user=" + user + " password=" + pass + " dbname=" + name + " port=" + port + " sslmode=" + ssl
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
