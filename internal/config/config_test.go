package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{URI: "mongodb://localhost:27017", Name: "storefront"},
	}
}

func TestValidate_InvalidThresholds(t *testing.T) {
	cfg := validConfig()
	cfg.Advisor = AdvisorConfig{MediumThresholdMs: 1000, HighThresholdMs: 500}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for inverted thresholds")
	}

	expected := "advisor.high_threshold_ms (500) must not be below advisor.medium_threshold_ms (1000)"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingURI(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URI = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database uri")
	}
}

func TestValidate_MissingName(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Name = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database name")
	}
}

func TestValidate_NegativeSchedule(t *testing.T) {
	cfg := validConfig()
	cfg.Advisor.ScheduleIntervalSec = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative schedule interval")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.AppName != "idxadvisor" {
		t.Errorf("expected AppName='idxadvisor', got %q", cfg.Database.AppName)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Advisor.MediumThresholdMs != 500 {
		t.Errorf("expected MediumThresholdMs=500, got %d", cfg.Advisor.MediumThresholdMs)
	}
	if cfg.Advisor.HighThresholdMs != 1000 {
		t.Errorf("expected HighThresholdMs=1000, got %d", cfg.Advisor.HighThresholdMs)
	}
	if cfg.Advisor.InFlightThreshold() != 100*time.Millisecond {
		t.Errorf("expected InFlightThreshold=100ms, got %v", cfg.Advisor.InFlightThreshold())
	}
	if cfg.Advisor.OpTimeout() != 30*time.Second {
		t.Errorf("expected OpTimeout=30s, got %v", cfg.Advisor.OpTimeout())
	}
	if cfg.Advisor.AnalyzeConcurrency != 4 {
		t.Errorf("expected AnalyzeConcurrency=4, got %d", cfg.Advisor.AnalyzeConcurrency)
	}
	if cfg.Advisor.ScheduleInterval() != 0 {
		t.Errorf("expected schedule disabled, got %v", cfg.Advisor.ScheduleInterval())
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 90, ShutdownSec: 5},
		Database: DatabaseConfig{AppName: "ops", ReadinessTimeout: 15},
		Advisor:  AdvisorConfig{MediumThresholdMs: 200, HighThresholdMs: 800, AnalyzeConcurrency: 8},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.AppName != "ops" {
		t.Errorf("expected AppName='ops', got %q", cfg.Database.AppName)
	}
	if cfg.Advisor.MediumThresholdMs != 200 || cfg.Advisor.HighThresholdMs != 800 {
		t.Errorf("thresholds overridden: %+v", cfg.Advisor)
	}
	if cfg.Advisor.AnalyzeConcurrency != 8 {
		t.Errorf("expected AnalyzeConcurrency=8, got %d", cfg.Advisor.AnalyzeConcurrency)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("IDXADVISOR_TEST_URI", "mongodb://db:27017")

	data := []byte(`
http:
  port: 9000
database:
  uri: ${IDXADVISOR_TEST_URI}
  name: ${IDXADVISOR_TEST_DB:-storefront}
advisor:
  provision_on_startup: true
  schedule_interval_sec: 300
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.URI != "mongodb://db:27017" {
		t.Errorf("expected expanded uri, got %q", cfg.Database.URI)
	}
	if cfg.Database.Name != "storefront" {
		t.Errorf("expected default name, got %q", cfg.Database.Name)
	}
	if !cfg.Advisor.ProvisionOnStartup {
		t.Error("expected provision_on_startup")
	}
	if cfg.Advisor.ScheduleInterval() != 5*time.Minute {
		t.Errorf("expected 5m schedule, got %v", cfg.Advisor.ScheduleInterval())
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Error("expected validation error")
	}
}
