package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FRAME_INTERVAL", "7")
	t.Setenv("EVENT_LIMIT_MOCK", "500")
	t.Setenv("MODE", "mock")

	cfg := Load()

	if cfg.FrameInterval != 7 {
		t.Errorf("FrameInterval = %d, expected 7", cfg.FrameInterval)
	}
	if cfg.EventLimitMock != 500 {
		t.Errorf("EventLimitMock = %d, expected 500", cfg.EventLimitMock)
	}
	if cfg.Mode != "mock" {
		t.Errorf("Mode = %q, expected mock", cfg.Mode)
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("EVENT_LIMIT_REAL", "not-a-number")

	cfg := Load()

	if cfg.EventLimitReal != 2000 {
		t.Errorf("EventLimitReal = %d, expected default 2000", cfg.EventLimitReal)
	}
}

func TestLoadCamerasMissingFile(t *testing.T) {
	cameras, err := LoadCameras(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cameras) != len(DefaultCameras) {
		t.Fatalf("expected default camera set, got %d cameras", len(cameras))
	}
	if cameras[0].ID != "CAM_002" {
		t.Errorf("default camera id = %q, expected CAM_002", cameras[0].ID)
	}
}

func TestLoadCamerasFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cameras.json")
	content := `[
		{"id": "CAM_010", "name": "North Junction", "lat": 10.03, "lng": 76.31, "file": "north.mp4"},
		{"id": "CAM_011", "name": "South Junction", "lat": 10.02, "lng": 76.32, "file": "south.mp4"}
	]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write cameras file: %v", err)
	}

	cameras, err := LoadCameras(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cameras) != 2 {
		t.Fatalf("expected 2 cameras, got %d", len(cameras))
	}
	if cameras[1].Name != "South Junction" {
		t.Errorf("cameras[1].Name = %q, expected South Junction", cameras[1].Name)
	}
}

func TestLoadCamerasInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cameras.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("failed to write cameras file: %v", err)
	}

	if _, err := LoadCameras(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
