package config

import (
	"fmt"
	"os"
	"strings"
)

// envOrDefault returns the environment variable value or fallback when it is empty.
func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (c *Config) applyEnv() {
	c.Server.Addr = envOrDefault("STUDIO_ADDR", c.Server.Addr)
	c.Server.StaticDir = envOrDefault("STUDIO_STATIC_DIR", c.Server.StaticDir)
	c.Storage.Path = envOrDefault("STUDIO_DB_PATH", c.Storage.Path)
	c.API.BaseURL = envOrDefault("STUDIO_API_URL", c.API.BaseURL)
	c.Logging.Level = envOrDefault("STUDIO_LOG_LEVEL", c.Logging.Level)
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaultDriver
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = defaultAPITimeout
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Storage.Path, err = expandPath(strings.TrimSpace(c.Storage.Path)); err != nil {
		return fmt.Errorf("storage.path: %w", err)
	}
	if c.Server.StaticDir, err = expandPath(strings.TrimSpace(c.Server.StaticDir)); err != nil {
		return fmt.Errorf("server.static_dir: %w", err)
	}
	if c.Vault.UploadsDir, err = expandPath(strings.TrimSpace(c.Vault.UploadsDir)); err != nil {
		return fmt.Errorf("vault.uploads_dir: %w", err)
	}
	if c.Vault.OutputsDir, err = expandPath(strings.TrimSpace(c.Vault.OutputsDir)); err != nil {
		return fmt.Errorf("vault.outputs_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
