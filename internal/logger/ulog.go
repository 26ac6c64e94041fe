package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/opustools/opustools-go/internal/api_context"
)

const service = "opustools"

// Components name the binary a record comes from. The API is the only one
// serving anonymous callers; everything else acts as the system.
const (
	ComponentAPI     = "api"
	ComponentWorker  = "worker"
	ComponentMigrate = "migrate"
	ComponentCleanup = "cleanup"
)

var std *slog.Logger

// contextHandler enriches records with what the request context knows:
// the acting user and, on job routes, the job id.
type contextHandler struct {
	next        slog.Handler
	fallbackUID string
}

func (c contextHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return c.next.Enabled(ctx, lvl)
}

func (c contextHandler) Handle(ctx context.Context, r slog.Record) error {
	uid := c.fallbackUID
	if id, ok := api_context.AuthUserIDFromContext(ctx); ok {
		uid = id.String()
	}
	r.AddAttrs(slog.String("uid", uid))
	if jobID, ok := api_context.IDFromContext(ctx); ok {
		r.AddAttrs(slog.String("job_id", jobID.String()))
	}
	return c.next.Handle(ctx, r)
}

func (c contextHandler) WithAttrs(a []slog.Attr) slog.Handler {
	return contextHandler{next: c.next.WithAttrs(a), fallbackUID: c.fallbackUID}
}

func (c contextHandler) WithGroup(n string) slog.Handler {
	return contextHandler{next: c.next.WithGroup(n), fallbackUID: c.fallbackUID}
}

type settings struct {
	format    string
	level     slog.Leveler
	addSource bool
	noColor   bool
}

// readSettings reads
//
//	LOG_FORMAT    json|text (default: json)
//	LOG_LEVEL     debug|info|warn|error (default: info)
//	LOG_SOURCE    true|false (default: false)
//	LOG_NO_COLOR  true|false (default: false, text only)
func readSettings() settings {
	return settings{
		format:    strings.ToLower(envOr("LOG_FORMAT", "json")),
		level:     parseLevel(envOr("LOG_LEVEL", "info")),
		addSource: envBool("LOG_SOURCE"),
		noColor:   envBool("LOG_NO_COLOR"),
	}
}

func (s settings) handler(w io.Writer) slog.Handler {
	if s.format == "text" {
		return tint.NewHandler(w, &tint.Options{
			Level:      s.level,
			AddSource:  s.addSource,
			TimeFormat: time.DateTime,
			NoColor:    s.noColor,
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: s.level, AddSource: s.addSource})
}

// Init installs the process logger for component, writing to stdout.
func Init(component string) {
	InitWithWriter(component, os.Stdout)
}

func InitWithWriter(component string, w io.Writer) {
	base := readSettings().handler(w)

	fallback := "system"
	if component == ComponentAPI {
		fallback = "anonymous"
	}

	std = slog.New(contextHandler{next: base, fallbackUID: fallback}).
		With("svc", service, "component", component)
	slog.SetDefault(std)

	// stdlib log output (asynq, net/http) lands in the same stream
	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(base.WithAttrs([]slog.Attr{
		slog.String("svc", service),
		slog.String("component", component),
	}), slog.LevelInfo).Writer())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}

func parseLevel(s string) slog.Leveler {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func current() *slog.Logger {
	if std != nil {
		return std
	}
	return slog.Default()
}

func Info(ctx context.Context, msg string, attrs ...any) {
	current().InfoContext(ctx, msg, attrs...)
}
func Warn(ctx context.Context, msg string, attrs ...any) {
	current().WarnContext(ctx, msg, attrs...)
}
func Error(ctx context.Context, msg string, attrs ...any) {
	current().ErrorContext(ctx, msg, attrs...)
}
func Debug(ctx context.Context, msg string, attrs ...any) {
	current().DebugContext(ctx, msg, attrs...)
}

func Infof(ctx context.Context, format string, a ...any) {
	current().InfoContext(ctx, fmt.Sprintf(format, a...))
}
func Errorf(ctx context.Context, format string, a ...any) {
	current().ErrorContext(ctx, fmt.Sprintf(format, a...))
}
func Warnf(ctx context.Context, format string, a ...any) {
	current().WarnContext(ctx, fmt.Sprintf(format, a...))
}
func Debugf(ctx context.Context, format string, a ...any) {
	current().DebugContext(ctx, fmt.Sprintf(format, a...))
}
