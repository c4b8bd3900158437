package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// --- Config Types ---

// Config holds everything read from the environment at startup. Core logic
// never reads ambient env values; it only sees this struct.
type Config struct {
	NotionAPIKey string            // NOTION_API_KEY
	DatabaseID   string            // DATABASE_ID
	WebhookURL   string            // DISCORD_WEBHOOK_URL, required by remind
	BotToken     string            // DISCORD_BOT_TOKEN, required by bot
	Mentions     map[string]string // DISCORD_ID_<NAME> suffix → Discord user ID
	Logging      LoggingConfig
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string // LOG_LEVEL: debug|info|warn|error
	Format string // LOG_FORMAT: text|json
}

func (c LoggingConfig) levelOrDefault() string {
	if c.Level != "" {
		return c.Level
	}
	return "info"
}

func (c LoggingConfig) formatOrDefault() string {
	if c.Format != "" {
		return c.Format
	}
	return "text"
}

const mentionKeyPrefix = "DISCORD_ID_"

// loadConfig reads the process environment into a Config. A .env file is
// loaded first when present so local runs match the deployed environment.
func loadConfig(envFile string) *Config {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "cannot load env file %s: %v\n", envFile, err)
			os.Exit(1)
		}
	} else {
		// A missing .env is fine, the real environment may carry the keys.
		godotenv.Load()
	}

	cfg := &Config{
		NotionAPIKey: os.Getenv("NOTION_API_KEY"),
		DatabaseID:   os.Getenv("DATABASE_ID"),
		WebhookURL:   os.Getenv("DISCORD_WEBHOOK_URL"),
		BotToken:     os.Getenv("DISCORD_BOT_TOKEN"),
		Mentions:     collectMentions(os.Environ()),
		Logging: LoggingConfig{
			Level:  os.Getenv("LOG_LEVEL"),
			Format: os.Getenv("LOG_FORMAT"),
		},
	}

	defaultLogger = initLogger(cfg.Logging)
	cfg.validate()
	return cfg
}

// collectMentions gathers DISCORD_ID_<NAME> entries from the environment,
// keyed by the <NAME> suffix (e.g. "KYLE", "MARY_JANE").
func collectMentions(environ []string) map[string]string {
	mentions := make(map[string]string)
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, mentionKeyPrefix) {
			continue
		}
		suffix := strings.TrimPrefix(key, mentionKeyPrefix)
		if suffix == "" || value == "" {
			continue
		}
		mentions[suffix] = value
	}
	return mentions
}

// --- Required-Key Checks ---

// requireCore checks the keys every subcommand needs. Called before any
// network activity; a failure here is fatal.
func (cfg *Config) requireCore() error {
	var missing []string
	if cfg.NotionAPIKey == "" {
		missing = append(missing, "NOTION_API_KEY")
	}
	if cfg.DatabaseID == "" {
		missing = append(missing, "DATABASE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// requireRemind checks the keys the batch reminder run needs.
func (cfg *Config) requireRemind() error {
	if err := cfg.requireCore(); err != nil {
		return err
	}
	if cfg.WebhookURL == "" {
		return fmt.Errorf("missing required environment variables: DISCORD_WEBHOOK_URL")
	}
	return nil
}

// requireBot checks the keys the gateway bot needs.
func (cfg *Config) requireBot() error {
	if err := cfg.requireCore(); err != nil {
		return err
	}
	if cfg.BotToken == "" {
		return fmt.Errorf("missing required environment variables: DISCORD_BOT_TOKEN")
	}
	return nil
}

// validate logs warnings for common mistakes. Nothing here is fatal; the
// requireX checks handle hard failures per subcommand.
func (cfg *Config) validate() {
	if cfg.WebhookURL != "" {
		u, err := url.Parse(cfg.WebhookURL)
		if err != nil || u.Scheme != "https" {
			logWarn("DISCORD_WEBHOOK_URL does not look like an https endpoint", "url", cfg.WebhookURL)
		}
	}
	if len(cfg.Mentions) == 0 {
		logWarn("no DISCORD_ID_* mention mappings configured, alerts will not tag anyone")
	}
}
