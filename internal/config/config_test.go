package config

import (
	"os"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	os.Unsetenv(EnvPort)
	os.Unsetenv(EnvFrameZeroOffset)
	os.Unsetenv(EnvPaletteSize)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.FrameZeroOffset() != DefaultFrameZeroOffset {
		t.Errorf("FrameZeroOffset() = %d, want %d", cfg.FrameZeroOffset(), DefaultFrameZeroOffset)
	}
	if cfg.PaletteSize() != DefaultPaletteSize {
		t.Errorf("PaletteSize() = %d, want %d", cfg.PaletteSize(), DefaultPaletteSize)
	}
	if cfg.DefaultFrameRate() != DefaultFrameRate {
		t.Errorf("DefaultFrameRate() = %f, want %f", cfg.DefaultFrameRate(), DefaultFrameRate)
	}
}

func TestNew_PortFromEnv(t *testing.T) {
	os.Setenv(EnvPort, "9099")
	defer os.Unsetenv(EnvPort)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9099 {
		t.Errorf("Port() = %d, want 9099", cfg.Port())
	}
}

func TestNew_InvalidPort(t *testing.T) {
	os.Setenv(EnvPort, "not-a-port")
	defer os.Unsetenv(EnvPort)

	if _, err := New(); err == nil {
		t.Error("New() should fail for a non-numeric port")
	}
}

func TestNew_FrameZeroOffsetFromEnv(t *testing.T) {
	os.Setenv(EnvFrameZeroOffset, "0")
	defer os.Unsetenv(EnvFrameZeroOffset)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FrameZeroOffset() != 0 {
		t.Errorf("FrameZeroOffset() = %d, want 0", cfg.FrameZeroOffset())
	}
}

func TestNew_InvalidFrameZeroOffset(t *testing.T) {
	os.Setenv(EnvFrameZeroOffset, "2")
	defer os.Unsetenv(EnvFrameZeroOffset)

	if _, err := New(); err == nil {
		t.Error("New() should reject offsets other than 0 and 1")
	}
}

func TestNew_InvalidFrameRate(t *testing.T) {
	os.Setenv(EnvDefaultRate, "-24")
	defer os.Unsetenv(EnvDefaultRate)

	if _, err := New(); err == nil {
		t.Error("New() should reject non-positive frame rates")
	}
}
