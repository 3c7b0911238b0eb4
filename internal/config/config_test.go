package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitreel/internal/constants"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `database: /tmp/habits.db
timezone: Europe/Berlin
server:
  addr: ":9000"
rewards:
  enabled: true
  provider_url: https://photos.example.com
  timeout: 3s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := &Config{
		Database: "/tmp/habits.db",
		Timezone: "Europe/Berlin",
		Server:   ServerConfig{Addr: ":9000"},
		Rewards: RewardsConfig{
			Enabled:       true,
			ProviderURL:   "https://photos.example.com",
			Timeout:       "3s",
			PrefetchLimit: constants.DefaultRewardPrefetchLimit,
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.RewardTimeout(); got != 3*time.Second {
		t.Errorf("RewardTimeout() = %v, want 3s", got)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HABITREEL_DATABASE", "/srv/habits.db")
	t.Setenv("HABITREEL_DEBUG", "true")
	t.Setenv("HABITREEL_SERVER_ADDR", ":8081")
	t.Setenv("HABITREEL_REWARDS_ENABLED", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database != "/srv/habits.db" || !cfg.Debug || cfg.Server.Addr != ":8081" || !cfg.Rewards.Enabled {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestEnvOverrideInvalidBool(t *testing.T) {
	t.Setenv("HABITREEL_DEBUG", "sometimes")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a malformed boolean")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Database = "postgres://habits@localhost/habits"
	cfg.Rewards.Enabled = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRewardTimeoutFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rewards.Timeout = "soon"
	if got := cfg.RewardTimeout(); got != constants.DefaultRewardTimeout {
		t.Errorf("RewardTimeout() = %v, want default", got)
	}
}
