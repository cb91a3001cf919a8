package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-resume-insight/internal/browser"
	"go-resume-insight/internal/database"
	"go-resume-insight/internal/events"
	"go-resume-insight/internal/jobs"
	"go-resume-insight/internal/llm"
	"go-resume-insight/internal/storage"
)

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Run the background worker",
	Long:  "Consumes queued tasks: job posting analysis, resume extraction, and object storage uploads.",
	RunE:  runWork,
}

func init() {
	rootCmd.AddCommand(workCmd)
}

func runWork(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := browser.NewPool(cfg.Browser.WSEndpoint, cfg.Browser.MaxBrowsers, cfg.Browser.MaxPages, log)
	if err := pool.Startup(); err != nil {
		return err
	}
	defer func() {
		if err := pool.Shutdown(); err != nil {
			log.Error("browser pool shutdown", zap.Error(err))
		}
	}()

	gemini, err := llm.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		return err
	}

	var store jobs.ResumeStore
	if cfg.Database.URL != "" {
		repo, err := database.ConnectDB(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer repo.Close()
		store = repo
	}

	var uploader jobs.Uploader
	if cfg.AWS.Bucket != "" {
		up, err := storage.NewS3Uploader(ctx, cfg.AWS.Region, cfg.AWS.Bucket)
		if err != nil {
			return err
		}
		uploader = up
	} else {
		log.Warn("aws bucket not configured, resume uploads stay local")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()

	publisher := events.NewPublisher(events.NewRedisLog(rdb), log)
	orch := jobs.NewOrchestrator(pool, buildRegistry(), gemini, publisher, store, uploader, log)

	srv := jobs.NewServer(cfg.Redis.Addr, cfg.Worker.Concurrency, log)
	go func() {
		<-ctx.Done()
		srv.Shutdown()
	}()

	log.Info("worker started",
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.String("redis", cfg.Redis.Addr),
	)
	return srv.Run(jobs.NewMux(orch))
}
