package runtime

import (
	"log/slog"

	"github.com/vcrobe/morph/metrics"
)

// Option configures a Controller.
type Option func(*Controller)

// WithStores listens for the change events of the named stores instead of
// the unnamed store event.
func WithStores(names ...string) Option {
	return func(c *Controller) {
		c.stores = append(c.stores, names...)
	}
}

// WithInlineEvents keeps on* attributes from templates. Off by default.
func WithInlineEvents(allow bool) Option {
	return func(c *Controller) {
		c.allowEvents = allow
	}
}

// WithScheduler sets the frame scheduler. Defaults to a TimerScheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		c.scheduler = s
	}
}

// WithLogger sets the logger. Defaults to the console logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithMetrics records renders and coalesced frames.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithName labels the controller in logs, errors and metrics. Defaults to
// the mount.
func WithName(name string) Option {
	return func(c *Controller) {
		c.name = name
	}
}
