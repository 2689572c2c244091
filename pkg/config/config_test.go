package config

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("FORUM_URL", "https://forum.example.com")
	t.Setenv("FORUM_USERNAME", "hex")
	t.Setenv("FORUM_PASSWORD", "hunter2")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "https://forum.example.com", cfg.SiteURL)
	assert.Equal(t, "hex", cfg.Credentials.Username)
	assert.Equal(t, "hunter2", cfg.Credentials.Password.Value())
	assert.True(t, cfg.Settings.Headless)
	assert.Equal(t, DefaultInteractionDelay, cfg.Settings.InteractionDelay)
	assert.Equal(t, DefaultOperationTimeout, cfg.Settings.OperationTimeout)
	assert.Zero(t, cfg.Settings.RunTimeout)
	assert.Equal(t, DefaultSuccessScreenshot, cfg.Settings.SuccessScreenshotPath)
	assert.Equal(t, DefaultFailureScreenshot, cfg.Settings.FailureScreenshotPath)
	assert.Equal(t, DefaultTopicLinkSelector, cfg.Settings.TopicLinkSelector)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FORUM_HEADLESS", "false")
	t.Setenv("FORUM_INTERACTION_DELAY_MS", "100")
	t.Setenv("FORUM_OPERATION_TIMEOUT_MS", "10000")
	t.Setenv("FORUM_RUN_TIMEOUT_MS", "120000")
	t.Setenv("FORUM_SCREENSHOT_PATH", "out/ok.png")
	t.Setenv("FORUM_FAILURE_SCREENSHOT_PATH", "out/err.png")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.Settings.Headless)
	assert.Equal(t, 100*time.Millisecond, cfg.Settings.InteractionDelay)
	assert.Equal(t, 10*time.Second, cfg.Settings.OperationTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Settings.RunTimeout)
	assert.Equal(t, "out/ok.png", cfg.Settings.SuccessScreenshotPath)
	assert.Equal(t, "out/err.png", cfg.Settings.FailureScreenshotPath)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"missing url", "FORUM_URL", ""},
		{"unparseable url", "FORUM_URL", "not a url"},
		{"missing username", "FORUM_USERNAME", ""},
		{"missing password", "FORUM_PASSWORD", ""},
		{"non-numeric delay", "FORUM_INTERACTION_DELAY_MS", "soon"},
		{"negative delay", "FORUM_INTERACTION_DELAY_MS", "-5"},
		{"non-numeric timeout", "FORUM_OPERATION_TIMEOUT_MS", "later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestValidateRejectsZeroTimeout(t *testing.T) {
	cfg := &Config{
		SiteURL: "https://forum.example.com",
		Credentials: Credentials{
			Username: "hex",
			Password: Secret("hunter2"),
		},
		Settings: Settings{
			SuccessScreenshotPath: "a.png",
			FailureScreenshotPath: "b.png",
			TopicLinkSelector:     DefaultTopicLinkSelector,
		},
	}
	assert.Error(t, cfg.Validate())

	cfg.Settings.OperationTimeout = time.Second
	assert.NoError(t, cfg.Validate())
}

func TestSecretNeverSerializes(t *testing.T) {
	creds := Credentials{Username: "hex", Password: Secret("hunter2")}

	assert.Equal(t, "[redacted]", creds.Password.String())
	assert.Equal(t, "[redacted]", fmt.Sprintf("%v", creds.Password))
	assert.Equal(t, "[redacted]", fmt.Sprintf("%s", creds.Password))

	data, err := json.Marshal(creds)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.Contains(t, string(data), "[redacted]")

	// The raw value stays reachable for the fill site only
	assert.Equal(t, "hunter2", creds.Password.Value())
}
