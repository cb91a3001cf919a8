package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-resume-insight/internal/config"
	"go-resume-insight/internal/logger"
	"go-resume-insight/internal/scrape"
)

var (
	cfgFile string
	debug   bool
	jsonLog bool
)

var rootCmd = &cobra.Command{
	Use:          "resume-insight",
	Short:        "Resume analysis service backed by headless-browser scraping and Gemini",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default resume-insight.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json", false, "log in JSON format")
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(jsonLog, debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// buildRegistry wires every supported job board. Registration order is
// the hostname match precedence.
func buildRegistry() *scrape.Registry {
	r := scrape.NewRegistry()
	r.Register("seek.com.au", scrape.NewSeekScraper)
	r.Register("linkedin.com", scrape.NewLinkedInScraper)
	return r
}
