// Package notify delivers user-facing notifications raised by the board.
//
// The board only depends on the Notifier interface. Log writes to slog,
// Ntfy pushes to an ntfy topic and Multi fans a notification out to several
// notifiers.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier shows a message to the user.
type Notifier interface {
	Notify(ctx context.Context, message string, severity Severity)
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, message string, severity Severity)

// Notify calls f.
func (f Func) Notify(ctx context.Context, message string, severity Severity) {
	f(ctx, message, severity)
}

// Log writes notifications to a structured logger.
type Log struct {
	Logger *slog.Logger
}

// Notify logs the message at a level derived from severity.
func (l Log) Notify(ctx context.Context, message string, severity Severity) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Log(ctx, levelFor(severity), message, slog.String("severity", string(severity)))
}

func levelFor(severity Severity) slog.Level {
	switch severity {
	case SeverityError:
		return slog.LevelError
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Multi fans out to every non-nil notifier in order.
type Multi []Notifier

// Notify forwards the message.
func (m Multi) Notify(ctx context.Context, message string, severity Severity) {
	for _, n := range m {
		if n == nil {
			continue
		}
		n.Notify(ctx, message, severity)
	}
}

const userAgent = "studio/0.1.0"

// Ntfy publishes notifications to an ntfy topic URL.
type Ntfy struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewNtfy returns nil when topic is empty so callers can skip it.
func NewNtfy(topic string, timeout time.Duration, logger *slog.Logger) *Ntfy {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ntfy{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Notify sends the message. Delivery failures are logged and dropped.
func (n *Ntfy) Notify(ctx context.Context, message string, severity Severity) {
	if n == nil {
		return
	}
	if err := n.send(ctx, message, severity); err != nil {
		n.logger.Warn("ntfy delivery failed", slog.String("error", err.Error()))
	}
}

func (n *Ntfy) send(ctx context.Context, message string, severity Severity) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", "Studio - "+titleFor(severity))
	req.Header.Set("Tags", strings.Join([]string{"studio", string(severity)}, ","))
	if severity == SeverityError {
		req.Header.Set("Priority", "high")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func titleFor(severity Severity) string {
	switch severity {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeveritySuccess:
		return "Done"
	default:
		return "Info"
	}
}
