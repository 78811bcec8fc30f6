// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"noticeboard/internal/model"
)

// ImportFeed is an RSS/Atom feed imported as organic posts of one category.
type ImportFeed struct {
	Category model.PostCategory
	URL      string
}

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AllowedUsers     []int64

	SweepInterval          time.Duration
	ImportFeeds            []ImportFeed
	MetricsAddr            string
	PaymentTTL             time.Duration
	PaymentStartsPerMinute int
}

var postCategories = []model.PostCategory{
	model.CategoryAlert,
	model.CategoryOpportunity,
	model.CategoryEvent,
	model.CategoryLostFound,
	model.CategoryCommunity,
	model.CategoryAd,
}

// LoadDotEnv loads variables from a .env file in the working directory,
// without overriding ones already set. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// DefaultDatabasePath is used when DATABASE_PATH is unset.
const DefaultDatabasePath = "./data/board.db"

// DatabasePath returns DATABASE_PATH or DefaultDatabasePath.
func DatabasePath() string {
	if p := os.Getenv("DATABASE_PATH"); p != "" {
		return p
	}
	return DefaultDatabasePath
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	dbPath := DatabasePath()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	var allowedUsers []int64
	if raw := os.Getenv("ALLOWED_USERS"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			uid, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
			}
			allowedUsers = append(allowedUsers, uid)
		}
	}

	sweep, err := durationEnv("SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}
	paymentTTL, err := durationEnv("PAYMENT_SESSION_TTL", 2*time.Minute)
	if err != nil {
		return nil, err
	}

	perMin := 5
	if raw := os.Getenv("PAYMENT_STARTS_PER_MINUTE"); raw != "" {
		perMin, err = strconv.Atoi(raw)
		if err != nil || perMin < 0 {
			return nil, fmt.Errorf("invalid PAYMENT_STARTS_PER_MINUTE %q", raw)
		}
	}

	feeds, err := parseImportFeeds(os.Getenv("IMPORT_FEEDS"))
	if err != nil {
		return nil, err
	}

	return &Config{
		TelegramBotToken: token,
		DatabasePath:     dbPath,
		LogLevel:         logLevel,
		AllowedUsers:     allowedUsers,
		SweepInterval:    sweep,
		ImportFeeds:      feeds,
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
		PaymentTTL:       paymentTTL,
		PaymentStartsPerMinute: perMin,
	}, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// parseImportFeeds parses "category=url" pairs separated by commas.
func parseImportFeeds(raw string) ([]ImportFeed, error) {
	var feeds []ImportFeed
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		cat, url, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(url) == "" {
			return nil, fmt.Errorf("invalid IMPORT_FEEDS entry %q: want category=url", pair)
		}
		category := model.PostCategory(strings.ToLower(strings.TrimSpace(cat)))
		if !slices.Contains(postCategories, category) {
			return nil, fmt.Errorf("invalid IMPORT_FEEDS entry %q: unknown category %q", pair, cat)
		}
		feeds = append(feeds, ImportFeed{Category: category, URL: strings.TrimSpace(url)})
	}
	return feeds, nil
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	return slices.Contains(c.AllowedUsers, userID)
}
