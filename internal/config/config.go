// Package config handles application configuration from environment
// variables and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Config holds the application configuration.
type Config struct {
	// Content source.
	Source       string `long:"source" env:"SOURCE" default:"ddg" choice:"ddg" choice:"rss" description:"Content source kind"`
	RSSURL       string `long:"rss-url" env:"RSS_URL" description:"RSS feed URL (required for the rss source)"`
	SearchQuery  string `long:"search-query" env:"SEARCH_QUERY" default:"Türkiye son dakika haberleri -magazin -spor" description:"Search query for the ddg source"`
	MaxResults   int    `long:"max-results" env:"SEARCH_MAX_RESULTS" default:"10" description:"Maximum candidates fetched per run"`
	ExcludeWords string `long:"exclude-words" env:"EXCLUDE_WORDS" default:"magazin,spor" description:"Comma-separated keywords that reject a candidate"`

	// Generation backend.
	GeminiAPIKey      string  `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Gemini API key"`
	GeminiModels      string  `long:"gemini-models" env:"GEMINI_MODELS" default:"gemini-2.5-flash,gemini-pro" description:"Comma-separated model ids tried in order"`
	GeminiTemperature float64 `long:"gemini-temperature" env:"GEMINI_TEMPERATURE" default:"0.4" description:"Generation temperature in [0,1]"`
	NoGrounding       bool    `long:"no-grounding" env:"GEMINI_NO_GROUNDING" description:"Disable Google Search grounding"`

	// Publisher.
	Publisher        string `long:"publisher" env:"PUBLISHER" default:"x" choice:"x" choice:"telegram" description:"Publishing target"`
	XAPIKey          string `long:"x-api-key" env:"X_API_KEY" description:"X consumer key"`
	XAPISecret       string `long:"x-api-secret" env:"X_API_SECRET" description:"X consumer secret"`
	XAccessToken     string `long:"x-access-token" env:"X_ACCESS_TOKEN" description:"X access token"`
	XAccessSecret    string `long:"x-access-secret" env:"X_ACCESS_SECRET" description:"X access token secret"`
	TelegramBotToken string `long:"telegram-bot-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token"`
	TelegramChatID   int64  `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram target chat id"`

	// Pipeline policy.
	MaxPostChars      int     `long:"max-post-chars" env:"MAX_POST_CHARS" default:"270" description:"Character cap for published posts"`
	MaxAttempts       int     `long:"max-attempts" env:"MAX_ATTEMPTS" default:"3" description:"Candidates tried per run before giving up"`
	TitleSimilarity   float64 `long:"title-similarity" env:"TITLE_SIMILARITY" default:"0.75" description:"Title similarity rejection threshold"`
	TextSimilarity    float64 `long:"text-similarity" env:"TEXT_SIMILARITY" default:"0.80" description:"Published-text similarity rejection threshold"`
	ReuseSeenFallback bool    `long:"reuse-seen-fallback" env:"REUSE_SEEN_FALLBACK" description:"Retry the best-ranked seen item when nothing unseen exists"`
	KeepEmoji         bool    `long:"keep-emoji" env:"KEEP_EMOJI" description:"Keep pictographic characters in published posts"`

	// Process.
	IntervalMinutes     int    `long:"interval-minutes" env:"INTERVAL_MINUTES" default:"30" description:"Minutes between scheduled runs"`
	CallTimeoutSeconds  int    `long:"call-timeout-seconds" env:"CALL_TIMEOUT_SECONDS" default:"30" description:"Timeout for every external call"`
	FetchRetries        int    `long:"fetch-retries" env:"FETCH_RETRIES" default:"3" description:"Extra source-fetch tries on failure"`
	FetchRetryDelaySecs int    `long:"fetch-retry-delay-seconds" env:"FETCH_RETRY_DELAY_SECONDS" default:"2" description:"Fixed delay between source-fetch tries"`
	DatabasePath        string `long:"database-path" env:"DATABASE_PATH" default:"./data/bot.db" description:"Path to the attempt journal database"`
	Port                string `long:"port" env:"PORT" default:"8000" description:"HTTP trigger server port"`
	LogLevel            string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level (debug, info, warn, error)"`
}

// Load parses configuration from the process environment and arguments.
func Load() (*Config, error) {
	return parse(nil)
}

// parse accepts explicit args for tests; nil means os.Args.
func parse(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Source == "rss" && c.RSSURL == "" {
		return fmt.Errorf("RSS_URL is required when SOURCE=rss")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	switch c.Publisher {
	case "x":
		if c.XAPIKey == "" || c.XAPISecret == "" || c.XAccessToken == "" || c.XAccessSecret == "" {
			return fmt.Errorf("X_API_KEY, X_API_SECRET, X_ACCESS_TOKEN and X_ACCESS_SECRET are required when PUBLISHER=x")
		}
	case "telegram":
		if c.TelegramBotToken == "" || c.TelegramChatID == 0 {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when PUBLISHER=telegram")
		}
	}
	if c.GeminiTemperature < 0 || c.GeminiTemperature > 1 {
		return fmt.Errorf("GEMINI_TEMPERATURE must be in [0,1], got %g", c.GeminiTemperature)
	}
	if len(c.Models()) == 0 {
		return fmt.Errorf("GEMINI_MODELS must name at least one model")
	}
	return nil
}

// Models returns the generation model fallback chain in order.
func (c *Config) Models() []string {
	return splitList(c.GeminiModels)
}

// ExcludeWordList returns the candidate exclude keywords.
func (c *Config) ExcludeWordList() []string {
	return splitList(c.ExcludeWords)
}

// Interval returns the scheduled run cadence.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// CallTimeout returns the per-external-call timeout.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// FetchRetryDelay returns the fixed delay between source-fetch tries.
func (c *Config) FetchRetryDelay() time.Duration {
	return time.Duration(c.FetchRetryDelaySecs) * time.Second
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
