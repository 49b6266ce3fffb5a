package main

import (
	"context"
	"log/slog"
	"os"

	"udm-portal/internal/auth"
	"udm-portal/internal/config"
	"udm-portal/internal/database"
	"udm-portal/internal/logging"
	"udm-portal/internal/metrics"
	"udm-portal/internal/server"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logging.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	db, err := database.Open(cfg, log)
	if err != nil {
		log.Error("database unavailable", slog.Any("error", err))
		os.Exit(1)
	}

	var revoker auth.Revoker = auth.NewDBRevoker(db)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Error("redis unavailable", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
			os.Exit(1)
		}
		revoker = auth.NewRedisRevoker(rdb)
		log.Info("revoked tokens stored in redis", slog.String("addr", cfg.RedisAddr))
	}

	app := server.New(server.Deps{
		Config:  cfg,
		DB:      db,
		Log:     log,
		Revoker: revoker,
		Metrics: metrics.New(),
		Redis:   rdb,
	})

	go func() {
		log.Info("server listening", slog.String("port", cfg.HTTPPort), slog.String("db_driver", cfg.DBDriver))
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Error("server stopped", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				log.Info("graceful shutdown initiated")
				if err := app.ShutdownWithContext(ctx); err != nil {
					return err
				}
				if rdb != nil {
					_ = rdb.Close()
				}
				return database.Close(db)
			},
		},
	)

	exitCode := <-wait
	log.Info("application exited", slog.Int("code", exitCode))
	os.Exit(exitCode)
}
