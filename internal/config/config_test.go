package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("FRAPPE_URL", "https://app.example.test/api/resource/Product%20Item")
	t.Setenv("FRAPPE_API_KEY", "key")
	t.Setenv("FRAPPE_API_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := validConfig(t)

	assert.Equal(t, "https://www.woolworths.co.nz/shop/browse", cfg.Scraper.BaseURL)
	assert.Equal(t, "woolworths.co.nz", cfg.Scraper.SourceSite)
	assert.Equal(t, 7*time.Second, cfg.Scraper.PageLoadDelay)
	assert.Equal(t, 20*time.Millisecond, cfg.Scraper.EntryDelay)
	assert.Equal(t, 5*time.Second, cfg.Scraper.DetailPageDelay)
	assert.Equal(t, 20*time.Second, cfg.Scraper.WaitTimeout)
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.True(t, cfg.Browser.Headless)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PAGE_LOAD_DELAY", "2s")
	t.Setenv("SCRAPER_MAX_RETRIES", "5")
	t.Setenv("BROWSER_HEADLESS", "false")
	cfg := validConfig(t)

	assert.Equal(t, 2*time.Second, cfg.Scraper.PageLoadDelay)
	assert.Equal(t, 5, cfg.Scraper.MaxRetries)
	assert.False(t, cfg.Browser.Headless)
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		cfg := validConfig(t)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing endpoint is fatal", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Frappe.URL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing credentials are fatal", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Frappe.APISecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("retries below one rejected", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Scraper.MaxRetries = 0
		assert.Error(t, cfg.Validate())
	})
}
