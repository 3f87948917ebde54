// Package logging holds the shared logrus logger and request-scoped entries.
package logging

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

type requestIDKey struct{}

func init() {
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Configure sets the level and formatter of the shared logger.
// Production uses JSON output; everything else uses text.
func Configure(level, environment string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		logger.Warnf("unknown log level %q, keeping %s", level, logger.GetLevel())
	} else {
		logger.SetLevel(lvl)
	}

	if environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Logger returns the shared logger instance
func Logger() *logrus.Logger {
	return logger
}

// WithRequestID stores a request id for FromContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID extracts the request id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// FromContext returns an entry tagged with the request id when one is present.
func FromContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logger)
	if ctx == nil {
		return entry
	}
	if rid := RequestID(ctx); rid != "" {
		entry = entry.WithField("request_id", rid)
	}
	return entry
}
