// Load envs from .env
// Load YAML config via viper
// Validate config
// Provide default values

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppName string `mapstructure:"app-name"`

	Server struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"server"`

	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`

	Database struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`

	Gemini struct {
		APIKey string `mapstructure:"api-key"`
		Model  string `mapstructure:"model"`
	} `mapstructure:"gemini"`

	AWS struct {
		Region string `mapstructure:"region"`
		Bucket string `mapstructure:"bucket"`
	} `mapstructure:"aws"`

	Browser struct {
		WSEndpoint  string `mapstructure:"ws-endpoint"`
		MaxBrowsers int    `mapstructure:"max-browsers"`
		MaxPages    int    `mapstructure:"max-pages"`
	} `mapstructure:"browser"`

	Worker struct {
		Concurrency int `mapstructure:"concurrency"`
	} `mapstructure:"worker"`

	UploadDir string `mapstructure:"upload-dir"`
}

// Load reads the yaml config file plus environment overrides. The config
// file is optional; env vars alone can configure the service.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("resume-insight")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("RIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("app-name", "resume-insight")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("aws.region", "ap-southeast-2")
	v.SetDefault("browser.ws-endpoint", "ws://localhost:3000/firefox/playwright")
	v.SetDefault("browser.max-browsers", 2)
	v.SetDefault("browser.max-pages", 4)
	v.SetDefault("worker.concurrency", 5)
	v.SetDefault("upload-dir", "resumes")

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, a malformed one is not.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks the fields required by the worker and server commands.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini api key is required (RIA_GEMINI_API_KEY)")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	return nil
}
