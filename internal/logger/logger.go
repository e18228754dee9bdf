package logger

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
)

// Log is the process-wide logger, also installed as slog's default.
var Log *slog.Logger

var sentryEnabled bool

type Options struct {
	Development bool
	Environment string
	SentryDSN   string // empty disables Sentry
}

// Init builds the process logger. Development logs text at debug level,
// everything else JSON at info level. Errors are also forwarded to Sentry
// when a DSN is configured.
func Init(opts Options) {
	handlers := []slog.Handler{stdoutHandler(opts.Development)}

	if opts.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         opts.SentryDSN,
			Environment: opts.Environment,
			BeforeSend:  scrubEvent,
		})
		if err == nil {
			sentryEnabled = true
			handlers = append(handlers, slogsentry.Option{Level: slog.LevelError}.NewSentryHandler())
		} else {
			slog.Warn("sentry init failed, continuing without it", "error", err)
		}
	}

	handler := handlers[0]
	if len(handlers) > 1 {
		handler = slogmulti.Fanout(handlers...)
	}

	Log = slog.New(handler)
	slog.SetDefault(Log)
}

func stdoutHandler(dev bool) slog.Handler {
	if dev {
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
}

// scrubEvent drops bearer tokens and cookies before an event leaves the process.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request == nil {
		return event
	}
	event.Request.Cookies = ""
	for key := range event.Request.Headers {
		switch strings.ToLower(key) {
		case "authorization", "cookie":
			event.Request.Headers[key] = "[redacted]"
		}
	}
	return event
}

// Flush waits for buffered Sentry events to be delivered.
func Flush() {
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}
