package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Fault    FaultConfig

	LogVerbose bool `env:"APP_VERBOSE,default=0"`
	LogPretty  bool `env:"APP_PRETTY,default=0"`
}

type ServerConfig struct {
	Listen      string        `env:"APP_LISTEN,default=localhost:8080"`
	TimeoutRead time.Duration `env:"SERVER_TIMEOUT_READ,default=5s"`
	// TimeoutWrite must exceed Fault.TimeoutMax or the delay drill gets cut
	// off by the server before it responds.
	TimeoutWrite time.Duration `env:"SERVER_TIMEOUT_WRITE,default=45s"`
	TimeoutIdle  time.Duration `env:"SERVER_TIMEOUT_IDLE,default=1m"`
}

type DatabaseConfig struct {
	DSN string `env:"DATABASE_URI,required"`
}

type FaultConfig struct {
	// TimeoutMax bounds the /timeout drill so a bad parameter cannot hang a
	// worker indefinitely.
	TimeoutMax time.Duration `env:"FAULT_TIMEOUT_MAX,default=30s"`
}

// New config constructor
func New() Config {
	return Config{}
}

// Load config from environment and from .env file (if exists) and from flags
func (cfg *Config) Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(".env load: %w", err)
	}

	if err := envdecode.StrictDecode(cfg); err != nil {
		return fmt.Errorf("env decode: %w", err)
	}

	pflag.StringVarP(&cfg.Server.Listen, "listen-addr", "a", cfg.Server.Listen, "Server address to listen on")
	pflag.StringVarP(&cfg.Database.DSN, "database-uri", "d", cfg.Database.DSN, "Database URI")
	pflag.DurationVarP(&cfg.Fault.TimeoutMax, "timeout-max", "t", cfg.Fault.TimeoutMax, "Upper bound for the /timeout delay drill")
	pflag.BoolVarP(&cfg.LogVerbose, "verbose", "v", cfg.LogVerbose, "Verbose output")
	pflag.BoolVarP(&cfg.LogPretty, "pretty", "p", cfg.LogPretty, "Pretty output")
	pflag.Parse()

	return nil
}
