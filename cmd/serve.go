package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-resume-insight/internal/database"
	"go-resume-insight/internal/events"
	"go-resume-insight/internal/jobs"
	"go-resume-insight/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Database.URL == "" {
		return errors.New("database url is required (RIA_DATABASE_URL)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := database.ConnectDB(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.Init(ctx); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()

	queue := jobs.NewQueue(cfg.Redis.Addr)
	defer queue.Close()

	reader := events.NewReader(events.NewRedisLog(rdb), log)
	srv := server.New(repo, queue, reader, buildRegistry(), cfg.UploadDir, log)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", zap.Error(err))
		}
	}()

	log.Info("http server listening", zap.String("addr", httpSrv.Addr))
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("http server stopped")
	return nil
}
