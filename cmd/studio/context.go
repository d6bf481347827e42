package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"studio/internal/config"
	"studio/internal/logging"
	"studio/internal/notify"
	"studio/internal/taskapi"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(out io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, out)
}

func (c *commandContext) client(logger *slog.Logger) (*taskapi.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := taskapi.New(cfg.API.BaseURL,
		taskapi.WithTimeout(cfg.APITimeout()),
		taskapi.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("task api client: %w", err)
	}
	return client, nil
}

// notifier logs every notification and pushes it to ntfy when a topic is
// configured.
func (c *commandContext) notifier(logger *slog.Logger) notify.Notifier {
	multi := notify.Multi{notify.Log{Logger: logger}}
	cfg, err := c.ensureConfig()
	if err != nil {
		return multi
	}
	if ntfy := notify.NewNtfy(cfg.Notifications.NtfyTopic, cfg.NotificationTimeout(), logger); ntfy != nil {
		multi = append(multi, ntfy)
	}
	return multi
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
