package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Sim.Capacity != 16 {
		t.Errorf("Capacity = %d, want 16", cfg.Sim.Capacity)
	}
	if math.Abs(cfg.Derived.CollisionThreshold-0.288) > 1e-9 {
		t.Errorf("CollisionThreshold = %v, want 0.288", cfg.Derived.CollisionThreshold)
	}
	if cfg.Derived.InputFloats != 96 || cfg.Derived.ResultFloats != 48 {
		t.Errorf("record floats = %d/%d, want 96/48", cfg.Derived.InputFloats, cfg.Derived.ResultFloats)
	}
	if cfg.Derived.PrimaryCapacity != 2*cfg.Derived.SecondaryCapacity {
		t.Errorf("primary capacity %d is not twice secondary %d",
			cfg.Derived.PrimaryCapacity, cfg.Derived.SecondaryCapacity)
	}
	if cfg.Derived.SecondaryCapacity != 19200000 {
		t.Errorf("SecondaryCapacity = %d, want 19200000", cfg.Derived.SecondaryCapacity)
	}
	if cfg.Derived.TickInterval < 16*time.Millisecond || cfg.Derived.TickInterval > 17*time.Millisecond {
		t.Errorf("TickInterval = %v, want ~16.6ms", cfg.Derived.TickInterval)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := "sim:\n  speed: 0.01\ndataset:\n  samples: 10\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sim.Speed != 0.01 {
		t.Errorf("Speed = %v, want 0.01", cfg.Sim.Speed)
	}
	// Untouched fields keep their defaults
	if cfg.Sim.Scale != 0.16 {
		t.Errorf("Scale = %v, want default 0.16", cfg.Sim.Scale)
	}
	if cfg.Derived.SecondaryCapacity != 10*48 {
		t.Errorf("SecondaryCapacity = %d, want %d", cfg.Derived.SecondaryCapacity, 10*48)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"zero capacity", "sim:\n  capacity: 0\n"},
		{"negative speed", "sim:\n  speed: -1\n"},
		{"zero samples", "dataset:\n  samples: 0\n"},
		{"malformed yaml", "sim: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Bridge.FlagThreshold = 0.75

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Bridge.FlagThreshold != 0.75 {
		t.Errorf("FlagThreshold = %v, want 0.75", loaded.Bridge.FlagThreshold)
	}
}
