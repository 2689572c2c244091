package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Secret is an opaque credential holder. It never serializes its value:
// logging layers and JSON encoders only ever see the redaction marker.
type Secret string

const redacted = `"[redacted]"`

func (s Secret) String() string {
	return "[redacted]"
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(redacted), nil
}

// Value returns the underlying secret for use at the fill site.
func (s Secret) Value() string {
	return string(s)
}

// Credentials is the forum login pair.
type Credentials struct {
	Username string `json:"username"`
	Password Secret `json:"password"`
}

// Settings bundles the tunables of a single run.
type Settings struct {
	Headless              bool          `json:"headless"`
	InteractionDelay      time.Duration `json:"interaction_delay"`
	OperationTimeout      time.Duration `json:"operation_timeout"`
	RunTimeout            time.Duration `json:"run_timeout"` // 0 = no overall deadline
	SuccessScreenshotPath string        `json:"success_screenshot_path"`
	FailureScreenshotPath string        `json:"failure_screenshot_path"`
	// TopicLinkSelector selects topic entries in the forum listing. The
	// first match is opened, so the flow is not tied to one hardcoded
	// topic label.
	TopicLinkSelector string `json:"topic_link_selector"`
}

// Config is the immutable input of one automation run.
type Config struct {
	SiteURL     string      `json:"site_url"`
	Credentials Credentials `json:"credentials"`
	Settings    Settings    `json:"settings"`
}

// Defaults matching a stock Discourse-style forum.
const (
	DefaultInteractionDelay  = 500 * time.Millisecond
	DefaultOperationTimeout  = 30 * time.Second
	DefaultTopicLinkSelector = "a[href*='/t/']"
	DefaultSuccessScreenshot = "screenshots/topic.png"
	DefaultFailureScreenshot = "screenshots/failure.png"
)

// FromEnv builds a Config from environment variables.
func FromEnv() (*Config, error) {
	delay, err := envDurationMs("FORUM_INTERACTION_DELAY_MS", DefaultInteractionDelay)
	if err != nil {
		return nil, err
	}
	timeout, err := envDurationMs("FORUM_OPERATION_TIMEOUT_MS", DefaultOperationTimeout)
	if err != nil {
		return nil, err
	}
	runTimeout, err := envDurationMs("FORUM_RUN_TIMEOUT_MS", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		SiteURL: os.Getenv("FORUM_URL"),
		Credentials: Credentials{
			Username: os.Getenv("FORUM_USERNAME"),
			Password: Secret(os.Getenv("FORUM_PASSWORD")),
		},
		Settings: Settings{
			Headless:              getEnvOrDefault("FORUM_HEADLESS", "true") == "true",
			InteractionDelay:      delay,
			OperationTimeout:      timeout,
			RunTimeout:            runTimeout,
			SuccessScreenshotPath: getEnvOrDefault("FORUM_SCREENSHOT_PATH", DefaultSuccessScreenshot),
			FailureScreenshotPath: getEnvOrDefault("FORUM_FAILURE_SCREENSHOT_PATH", DefaultFailureScreenshot),
			TopicLinkSelector:     getEnvOrDefault("FORUM_TOPIC_SELECTOR", DefaultTopicLinkSelector),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration surface (§6 constraints).
func (c *Config) Validate() error {
	if c.SiteURL == "" {
		return fmt.Errorf("FORUM_URL is required")
	}
	if _, err := url.ParseRequestURI(c.SiteURL); err != nil {
		return fmt.Errorf("invalid forum URL %q: %w", c.SiteURL, err)
	}
	if c.Credentials.Username == "" {
		return fmt.Errorf("FORUM_USERNAME is required")
	}
	if c.Credentials.Password.Value() == "" {
		return fmt.Errorf("FORUM_PASSWORD is required")
	}
	if c.Settings.OperationTimeout <= 0 {
		return fmt.Errorf("operation timeout must be positive, got %v", c.Settings.OperationTimeout)
	}
	if c.Settings.InteractionDelay < 0 {
		return fmt.Errorf("interaction delay must not be negative, got %v", c.Settings.InteractionDelay)
	}
	if c.Settings.SuccessScreenshotPath == "" || c.Settings.FailureScreenshotPath == "" {
		return fmt.Errorf("screenshot paths must not be empty")
	}
	if c.Settings.TopicLinkSelector == "" {
		return fmt.Errorf("topic link selector must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envDurationMs(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	ms, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if ms < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
