package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestEmptyTuningConfig_Defaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetAlpha1() != 0.2 || cfg.GetAlpha2() != 0.2 || cfg.GetAlpha3() != 0.2 || cfg.GetAlpha4() != 0.2 {
		t.Errorf("expected alpha defaults 0.2, got %f %f %f %f",
			cfg.GetAlpha1(), cfg.GetAlpha2(), cfg.GetAlpha3(), cfg.GetAlpha4())
	}
	if cfg.GetPopulationError() != 0.01 {
		t.Errorf("GetPopulationError() = %f, want 0.01", cfg.GetPopulationError())
	}
	if cfg.GetPopulationZ() != 3.0 {
		t.Errorf("GetPopulationZ() = %f, want 3.0", cfg.GetPopulationZ())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	path := writeConfig(t, `{
  "alpha1": 0.1,
  "alpha3": 0.45,
  "population_error": 0.05,
  "population_z": 2.0
}`)

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Alpha1 == nil || *cfg.Alpha1 != 0.1 {
		t.Errorf("expected alpha1 0.1, got %v", cfg.Alpha1)
	}
	if cfg.GetAlpha3() != 0.45 {
		t.Errorf("GetAlpha3() = %f, want 0.45", cfg.GetAlpha3())
	}
	if cfg.GetPopulationError() != 0.05 {
		t.Errorf("GetPopulationError() = %f, want 0.05", cfg.GetPopulationError())
	}
	if cfg.GetPopulationZ() != 2.0 {
		t.Errorf("GetPopulationZ() = %f, want 2.0", cfg.GetPopulationZ())
	}

	// Omitted fields keep their defaults.
	if cfg.Alpha2 != nil {
		t.Errorf("expected alpha2 unset, got %v", *cfg.Alpha2)
	}
	if cfg.GetAlpha2() != 0.2 {
		t.Errorf("GetAlpha2() = %f, want default 0.2", cfg.GetAlpha2())
	}
}

func TestLoadTuningConfig_Missing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/tuning.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfig_WrongExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(`{}`), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(path)
	if err == nil {
		t.Error("Expected error for non-json extension, got nil")
	}
}

func TestLoadTuningConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{ "alpha1": `)

	_, err := LoadTuningConfig(path)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	neg := -0.1
	half := 0.5
	big := 1.5
	zero := 0.0

	tests := []struct {
		name    string
		cfg     TuningConfig
		wantErr bool
	}{
		{"empty", TuningConfig{}, false},
		{"valid alphas", TuningConfig{Alpha1: &half, Alpha4: &zero}, false},
		{"negative alpha", TuningConfig{Alpha2: &neg}, true},
		{"valid population error", TuningConfig{PopulationError: &half}, false},
		{"population error too large", TuningConfig{PopulationError: &big}, true},
		{"population error zero", TuningConfig{PopulationError: &zero}, true},
		{"negative population z", TuningConfig{PopulationZ: &neg}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadTuningConfig_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `{ "population_error": 2.0 }`)

	_, err := LoadTuningConfig(path)
	if err == nil {
		t.Error("Expected validation error for out-of-range population_error, got nil")
	}
}
