package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arnavshah/roster-compliance-go/pkg/scheduler"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RELIABILITY_CACHE_TTL_MINUTES", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Expected port 8000, got %s", cfg.Port)
	}
	if cfg.ReliabilityCacheTTL() != time.Hour {
		t.Errorf("Expected 1h cache TTL, got %v", cfg.ReliabilityCacheTTL())
	}
	if cfg.AccessTokenTTL() != 24*time.Hour {
		t.Errorf("Expected 24h token TTL, got %v", cfg.AccessTokenTTL())
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://roster@localhost/roster")
	t.Setenv("RELIABILITY_CACHE_TTL_MINUTES", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Port != "9090" || cfg.DatabaseURL != "postgres://roster@localhost/roster" {
		t.Errorf("Expected environment overrides, got %+v", cfg)
	}
	if cfg.ReliabilityCacheTTL() != 5*time.Minute {
		t.Errorf("Expected 5m, got %v", cfg.ReliabilityCacheTTL())
	}
}

func TestParseScoringWeights_PartialOverride(t *testing.T) {
	w, err := ParseScoringWeights([]byte("inclusion_threshold: 60\ndefault_reliability: 0.5\n"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if w.InclusionThreshold != 60 || w.DefaultReliability != 0.5 {
		t.Errorf("Expected overrides applied, got %+v", w)
	}
	if w.AvailableWindow != 40 || w.LightWorkloadShifts != 5 {
		t.Errorf("Expected untouched defaults, got %+v", w)
	}
}

func TestParseScoringWeights_Invalid(t *testing.T) {
	_, err := ParseScoringWeights([]byte("reliability: 90\n"))
	if !errors.Is(err, scheduler.ErrInvalidInput) {
		t.Errorf("Expected weights above 100 to be rejected, got %v", err)
	}
	if _, err := ParseScoringWeights([]byte("reliability: [")); err == nil {
		t.Errorf("Expected a YAML error")
	}
}

func TestConfig_ScoringWeightsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoring.yaml")
	if err := os.WriteFile(path, []byte("light_workload: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &Config{ScoringConfig: path}
	w, err := cfg.ScoringWeights()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if w.LightWorkload != 8 {
		t.Errorf("Expected 8, got %v", w.LightWorkload)
	}

	w, _ = (&Config{}).ScoringWeights()
	if *w != scheduler.DefaultScoringWeights() {
		t.Errorf("Expected defaults without a file")
	}
}
