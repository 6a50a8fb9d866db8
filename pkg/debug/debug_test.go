package debug

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]bool
	}{
		{"empty", "", map[string]bool{}},
		{"single", "auth", map[string]bool{"auth": true}},
		{"multiple", "auth,reload", map[string]bool{"auth": true, "reload": true}},
		{"all", "all", map[string]bool{"all": true}},
		{"with spaces", " auth , reload ", map[string]bool{"auth": true, "reload": true}},
		{"uppercase normalized", "AUTH,Reload", map[string]bool{"auth": true, "reload": true}},
		{"empty segments", "auth,,reload", map[string]bool{"auth": true, "reload": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCategories(tt.input)
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("got[%q] = %v, want %v", k, got[k], v)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("len(got) = %d, want %d", len(got), len(tt.want))
			}
		})
	}
}

func TestEnabled(t *testing.T) {
	orig := categories
	defer func() { categories = orig }()

	categories = parseCategories("auth,config")

	if !Enabled("auth") {
		t.Error("auth should be enabled")
	}
	if Enabled("jwks") {
		t.Error("jwks should not be enabled")
	}

	categories = parseCategories("all")
	if !Enabled("anything") {
		t.Error("anything should be enabled via 'all'")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_JSONAndCategories(t *testing.T) {
	origCats := categories
	origLogger := slog.Default()
	defer func() {
		categories = origCats
		slog.SetDefault(origLogger)
	}()
	t.Setenv("SECRETKEY_DEBUG", "")
	t.Setenv("SECRETKEY_LOG_LEVEL", "")

	var buf bytes.Buffer
	Init(Options{Categories: "reload", Level: "debug", Format: "json", Output: &buf})

	if got := Categories(); len(got) != 1 || got[0] != "reload" {
		t.Fatalf("Categories() = %v, want [reload]", got)
	}

	Log("reload", "store swapped", "entries", 2)
	Log("auth", "suppressed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if rec["msg"] != "store swapped" || rec["debug"] != "reload" {
		t.Errorf("record = %v", rec)
	}
}

func TestInit_EnvOverridesOptions(t *testing.T) {
	origCats := categories
	origLogger := slog.Default()
	defer func() {
		categories = origCats
		slog.SetDefault(origLogger)
	}()
	t.Setenv("SECRETKEY_DEBUG", "auth")
	t.Setenv("SECRETKEY_LOG_LEVEL", "ERROR")

	var buf bytes.Buffer
	logger := Init(Options{Categories: "reload", Level: "debug", Output: &buf})

	if !Enabled("auth") || Enabled("reload") {
		t.Errorf("categories = %v, want [auth]", Categories())
	}
	logger.Warn("hidden")
	if buf.Len() != 0 {
		t.Errorf("WARN logged at ERROR level: %q", buf.String())
	}
}
