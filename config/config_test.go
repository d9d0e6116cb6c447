package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
log:
  level: debug
export:
  format: yaml
decode:
  strict_utf8: true
`))
	if err != nil {
		t.Fatal(err)
	}

	want := Default()
	want.Log.Level = "debug"
	want.Export.Format = "yaml"
	want.Decode.StrictUTF8 = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"level", "log: {level: verbose}", "log.level"},
		{"log format", "log: {format: xml}", "log.format"},
		{"export format", "export: {format: plist}", "export.format"},
		{"indent", "export: {indent: -1}", "export.indent"},
		{"syntax", "log: [", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse(%q) = %v, want error mentioning %q", tt.yaml, err, tt.want)
			}
		})
	}
}

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	flagFile := filepath.Join(dir, "flag.yaml")
	envFile := filepath.Join(dir, "env.yaml")
	if err := os.WriteFile(flagFile, []byte("export: {format: cbor}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(envFile, []byte("export: {format: msgpack}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvVar, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("no source should give defaults:\n%s", diff)
	}

	t.Setenv(EnvVar, envFile)
	if cfg, err = Load(""); err != nil || cfg.Export.Format != "msgpack" {
		t.Errorf("env source: %+v, %v", cfg, err)
	}
	if cfg, err = Load(flagFile); err != nil || cfg.Export.Format != "cbor" {
		t.Errorf("flag should win over env: %+v, %v", cfg, err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
