package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMap_ReturnsCopy(t *testing.T) {
	orig := map[string]string{"AUTH_SECRET_KEY": "s0"}
	src := Map(orig)

	got, err := src.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	got["AUTH_SECRET_KEY"] = "changed"

	if orig["AUTH_SECRET_KEY"] != "s0" {
		t.Errorf("Map source leaked its backing map")
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("AUTH_SECRET_KEY_carol", "sC")

	got, err := Env().Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if got["AUTH_SECRET_KEY_carol"] != "sC" {
		t.Errorf("AUTH_SECRET_KEY_carol = %q, want %q", got["AUTH_SECRET_KEY_carol"], "sC")
	}
}

func TestParseEnviron(t *testing.T) {
	got := parseEnviron([]string{"A=1", "B=x=y", "=hidden", "C="})
	if got["A"] != "1" || got["B"] != "x=y" {
		t.Errorf("parseEnviron = %v", got)
	}
	if _, ok := got[""]; ok {
		t.Error("empty key should be skipped")
	}
	if v, ok := got["C"]; !ok || v != "" {
		t.Errorf("C = %q, %v, want empty, true", v, ok)
	}
}

func TestFile_FlatAndNested(t *testing.T) {
	content := `
AUTH_SECRET_KEY_alice: sA
AUTH_SECRET_KEY:
  bob: sB
  port: 8080
  enabled: true
`
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := File(path).Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}

	want := map[string]string{
		"AUTH_SECRET_KEY_alice":   "sA",
		"AUTH_SECRET_KEY_bob":     "sB",
		"AUTH_SECRET_KEY_port":    "8080",
		"AUTH_SECRET_KEY_enabled": "true",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestFile_ScalarsVerbatim(t *testing.T) {
	content := `
AUTH_SECRET_KEY_octal: 007
AUTH_SECRET_KEY_hex: 0x1F
AUTH_SECRET_KEY_exp: 1e3
AUTH_SECRET_KEY_big: 12345678901234567890123
AUTH_SECRET_KEY_uint: 9223372036854775808
AUTH_SECRET_KEY_date: 2024-01-02
AUTH_SECRET_KEY_quoted: "0x1F"
AUTH_SECRET_KEY_null: ~
base: &shared s3cr3t
AUTH_SECRET_KEY_alias: *shared
`
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := File(path).Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}

	want := map[string]string{
		"AUTH_SECRET_KEY_octal":  "007",
		"AUTH_SECRET_KEY_hex":    "0x1F",
		"AUTH_SECRET_KEY_exp":    "1e3",
		"AUTH_SECRET_KEY_big":    "12345678901234567890123",
		"AUTH_SECRET_KEY_uint":   "9223372036854775808",
		"AUTH_SECRET_KEY_date":   "2024-01-02",
		"AUTH_SECRET_KEY_quoted": "0x1F",
		"AUTH_SECRET_KEY_null":   "",
		"AUTH_SECRET_KEY_alias":  "s3cr3t",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := File(path).Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Entries = %v, want empty", got)
	}
}

func TestFile_RejectsTopLevelScalar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	if err := os.WriteFile(path, []byte("just-a-string\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := File(path).Entries(context.Background()); err == nil {
		t.Fatal("expected error for non-mapping document")
	}
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.yaml")).Entries(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist", err)
	}
}

func TestFile_RejectsLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	if err := os.WriteFile(path, []byte("AUTH_SECRET_KEY:\n  - a\n  - b\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := File(path).Entries(context.Background()); err == nil {
		t.Fatal("expected error for list value")
	}
}

func TestLayered_LaterWins(t *testing.T) {
	src := Layered(
		Map(map[string]string{"A": "file", "B": "file"}),
		Map(map[string]string{"B": "env"}),
	)

	got, err := src.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if got["A"] != "file" || got["B"] != "env" {
		t.Errorf("Layered = %v, want A=file B=env", got)
	}
}

func TestLayered_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	src := Layered(
		Map(map[string]string{"A": "1"}),
		Func(func(context.Context) (map[string]string, error) { return nil, boom }),
	)
	if _, err := src.Entries(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]string{"b": "", "a": "", "c": ""})
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("SortedKeys = %v", got)
	}
}
