package config

import (
	"os"
	"path/filepath"
	"testing"
)

func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CLAWDIA_CONFIG_PATH", "")
	work = t.TempDir()
	oldwd, _ := os.Getwd()
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return home, work
}

func TestLoadJSONCAndPrecedence(t *testing.T) {
	home, _ := isolate(t)

	globalDir := filepath.Join(home, ".clawdia")
	if err := os.MkdirAll(globalDir, 0o755); err != nil {
		t.Fatal(err)
	}
	globalCfg := `{
  // global
  "agent": {"name": "Global", "root": "/srv/global"},
  "ui": {"locale": "en"}
}`
	if err := os.WriteFile(filepath.Join(globalDir, "config.json"), []byte(globalCfg), 0o644); err != nil {
		t.Fatal(err)
	}
	projectCfg := `{
  /* project wins */
  "agent": {"root": "/srv/project"},
  "server": {"addr": "127.0.0.1:9999", "api_prefix": "v1/"}
}`
	if err := os.WriteFile("clawdia.config.jsonc", []byte(projectCfg), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.Name != "Global" {
		t.Fatalf("name=%q", cfg.Agent.Name)
	}
	if cfg.Agent.Root != "/srv/project" {
		t.Fatalf("root=%q", cfg.Agent.Root)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Fatalf("addr=%q", cfg.Server.Addr)
	}
	if cfg.Server.APIPrefix != "/v1" {
		t.Fatalf("prefix=%q", cfg.Server.APIPrefix)
	}
	if cfg.UI.Locale != "en" {
		t.Fatalf("locale=%q", cfg.UI.Locale)
	}
	if cfg.Skills.CustomDir != filepath.Join("/srv/project", "skills") {
		t.Fatalf("custom skills=%q", cfg.Skills.CustomDir)
	}
}

func TestDefaultsResolveAgainstHome(t *testing.T) {
	home, _ := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.Root != filepath.Join(home, ".openclaw") {
		t.Fatalf("root=%q", cfg.Agent.Root)
	}
	if cfg.Processes.CachePath != filepath.Join(home, "clawdia-api", "cron-cache.json") {
		t.Fatalf("cache=%q", cfg.Processes.CachePath)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Agent.Name != DefaultAgentName {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.Memory.Paths) != 2 {
		t.Fatalf("memory paths=%v", cfg.Memory.Paths)
	}
}

func TestEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("CLAWDIA_ROOT", "/srv/env")
	t.Setenv("CLAWDIA_ADDR", ":4000")
	t.Setenv("CLAWDIA_REFRESH_SECONDS", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.Root != "/srv/env" {
		t.Fatalf("root=%q", cfg.Agent.Root)
	}
	if cfg.Server.Addr != ":4000" {
		t.Fatalf("addr=%q", cfg.Server.Addr)
	}
	if cfg.UI.RefreshSeconds != 5 {
		t.Fatalf("refresh=%d", cfg.UI.RefreshSeconds)
	}
}

func TestEnvOverrideRejectsBadRefresh(t *testing.T) {
	isolate(t)
	t.Setenv("CLAWDIA_REFRESH_SECONDS", "soon")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid refresh interval")
	}
}

func TestLoadExplicitPathParseError(t *testing.T) {
	_, work := isolate(t)
	path := filepath.Join(work, "broken.json")
	if err := os.WriteFile(path, []byte(`{"agent": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestInitProjectConfigScaffoldKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path, err := InitProjectConfigScaffold(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"agent":{"name":"kept"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	again, err := InitProjectConfigScaffold(dir)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(again)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"agent":{"name":"kept"}}` {
		t.Fatalf("scaffold overwrote existing config: %s", data)
	}
}
