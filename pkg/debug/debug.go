// Package debug configures logging for secretkey and provides
// category-gated debug output.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): SECRETKEY_DEBUG env or logging.debug config
//   - Levels (HOW MUCH detail): SECRETKEY_LOG_LEVEL env or logging.level config
//
// Usage:
//
//	debug.Log("auth", "secret key evaluated", "outcome", outcome)
//	if debug.Enabled("reload") { /* expensive formatting */ }
//
// Categories: auth, config, reload, jwks, transport, all.
// Secret values must never be passed to these functions.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// categories holds the set of enabled debug categories.
// Read-only after Init, so no synchronization needed.
var categories map[string]bool

func init() {
	categories = parseCategories(os.Getenv("SECRETKEY_DEBUG"))
}

// Options configures Init. Environment variables override the
// Categories and Level fields.
type Options struct {
	Categories string
	Level      string
	// Format is "text" (default) or "json".
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Init configures debug categories and installs the default slog logger.
// It returns the installed logger.
func Init(opts Options) *slog.Logger {
	cats := os.Getenv("SECRETKEY_DEBUG")
	if cats == "" {
		cats = opts.Categories
	}
	categories = parseCategories(cats)

	level := os.Getenv("SECRETKEY_LOG_LEVEL")
	if level == "" {
		level = opts.Level
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	logger := slog.New(NewHandler(out, opts.Format, ParseLevel(level)))
	slog.SetDefault(logger)
	return logger
}

// NewHandler builds a text or JSON slog handler at the given level.
func NewHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	ho := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, ho)
	}
	return slog.NewTextHandler(w, ho)
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	return categories["all"] || categories[category]
}

// Log emits a debug message for the given category.
// If the category is not enabled, this is a no-op.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// ParseLevel converts a level string to a slog.Level. Unknown values
// map to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories in sorted order.
func Categories() []string {
	result := make([]string, 0, len(categories))
	for k := range categories {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
