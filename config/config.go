// Package config reads the settings of a peer from flags, the
// environment and an optional .env file.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/yookoala/submarines/comms"
)

// Config holds every setting of a peer.
type Config struct {
	Host         bool
	Addr         string
	Transport    string
	Codec        string
	Start        string
	ReadyTimeout time.Duration
	Bot          bool
	BotSeed      int64
	LogFile      string
	LogLevel     string
}

// Load reads .env if present, then parses args. Flags default to the
// matching environment variables.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	host, err := getEnvBool("SUBS_HOST", false)
	if err != nil {
		return nil, err
	}
	bot, err := getEnvBool("SUBS_BOT", false)
	if err != nil {
		return nil, err
	}
	timeout, err := time.ParseDuration(getEnv("SUBS_READY_TIMEOUT", "2s"))
	if err != nil {
		return nil, fmt.Errorf("SUBS_READY_TIMEOUT: %w", err)
	}
	seed, err := strconv.ParseInt(getEnv("SUBS_BOT_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("SUBS_BOT_SEED: %w", err)
	}

	cfg := &Config{}
	fs := flag.NewFlagSet("submarines", flag.ContinueOnError)
	fs.BoolVar(&cfg.Host, "host", host, "listen for the opponent instead of connecting")
	fs.StringVar(&cfg.Addr, "addr", getEnv("SUBS_ADDR", ":3000"), "address to listen on, or of the opponent")
	fs.StringVar(&cfg.Transport, "transport", getEnv("SUBS_TRANSPORT", "tcp"), "transport: tcp or ws")
	fs.StringVar(&cfg.Codec, "codec", getEnv("SUBS_CODEC", "json"), "wire encoding: json or legacy")
	fs.StringVar(&cfg.Start, "start", getEnv("SUBS_START", "nonce"), "start-order rule: nonce or race")
	fs.DurationVar(&cfg.ReadyTimeout, "ready-timeout", timeout, "READY wait of the race rule")
	fs.BoolVar(&cfg.Bot, "bot", bot, "let a bot play")
	fs.Int64Var(&cfg.BotSeed, "bot-seed", seed, "shuffle the bot's guesses; 0 sweeps row by row")
	fs.StringVar(&cfg.LogFile, "log-file", getEnv("LOG_FILE", "submarines.log"), "log file")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects unknown choices.
func (c *Config) Validate() error {
	if !comms.Transport(c.Transport).IsValid() {
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	switch c.Codec {
	case "json", "legacy":
	default:
		return fmt.Errorf("unknown codec %q", c.Codec)
	}
	switch c.Start {
	case "nonce", "race":
	default:
		return fmt.Errorf("unknown start rule %q", c.Start)
	}
	if c.ReadyTimeout <= 0 {
		return fmt.Errorf("ready timeout must be positive, have %s", c.ReadyTimeout)
	}
	if c.Addr == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
