package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/ejson/jsonio"
)

func TestParse_OverDefaults(t *testing.T) {
	cfg, err := Parse([]byte("driver: jsoniter\nbatch_size: 10\ndump:\n  pretty: true\nflatten:\n  array_subscript: _\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Default()
	want.Driver = "jsoniter"
	want.BatchSize = 10
	want.Dump.Pretty = true
	want.Flatten.ArraySubscript = "_"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if !cfg.DumpOpt().Pretty || cfg.FlattenOptions().ObjectSeparator != "." {
		t.Fatalf("derived options wrong: %+v %+v", cfg.DumpOpt(), cfg.FlattenOptions())
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "colour: red\n",
		"trailing doc":   "driver: go-json\n---\ndriver: jsoniter\n",
		"bad batch":      "batch_size: 0\n",
		"bad policy":     "on_error: explode\n",
		"bad separators": "flatten:\n  object_separator: \"\"\n",
	}
	for name, in := range cases {
		if _, err := Parse([]byte(in)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if cfg.OnErrorPolicy() != jsonio.OnErrorRaise {
		t.Fatalf("default policy: %v", cfg.OnErrorPolicy())
	}
}

func TestLoad_Env(t *testing.T) {
	p := filepath.Join(t.TempDir(), "ejson.yaml")
	if err := os.WriteFile(p, []byte("on_error: log\nrepair:\n  max_attempts: 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvPath, p)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OnErrorPolicy() != jsonio.OnErrorLog || cfg.RepairOptions().MaxAttempts != 3 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected read error, got %v", err)
	}
}
