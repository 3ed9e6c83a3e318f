package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"trafficserver/internal/model"
)

type Config struct {
	Port            int
	Mode            string // "real", "mock" or "auto"
	CamerasFile     string
	FallbackVideo   string // used when a camera's own file is missing
	ModelPath       string
	ModelConfigPath string
	FrameInterval   int // run detection every Nth frame
	EventLimitReal  int
	EventLimitMock  int
	MockTickSeconds int
	HistoryDB       string
	LogDirectory    string
	DummyNodes      int
}

func Load() *Config {
	return &Config{
		Port:            getEnvAsInt("PORT", 5000),
		Mode:            getEnv("MODE", "auto"),
		CamerasFile:     getEnv("CAMERAS_FILE", "cameras.json"),
		FallbackVideo:   getEnv("FALLBACK_VIDEO", "traffic.mov"),
		ModelPath:       getEnv("MODEL_PATH", filepath.Join(".", "models", "frozen_inference_graph.pb")),
		ModelConfigPath: getEnv("MODEL_CONFIG_PATH", filepath.Join(".", "models", "ssd_mobilenet_v1_coco_2017_11_17.pbtxt")),
		FrameInterval:   getEnvAsInt("FRAME_INTERVAL", 3),
		EventLimitReal:  getEnvAsInt("EVENT_LIMIT_REAL", 2000),
		EventLimitMock:  getEnvAsInt("EVENT_LIMIT_MOCK", 1000),
		MockTickSeconds: getEnvAsInt("MOCK_TICK_SECONDS", 2),
		HistoryDB:       getEnv("HISTORY_DB", ":memory:"),
		LogDirectory:    getEnv("LOG_DIR", filepath.Join(".", "logs")),
		DummyNodes:      getEnvAsInt("DUMMY_NODES", 20),
	}
}

// DefaultCameras is used when no cameras file is present.
var DefaultCameras = []model.Camera{
	{ID: "CAM_002", Name: "Seaport-Airport Rd", Lat: 10.025, Lng: 76.312, File: "traffic_cam2.mp4"},
}

// LoadCameras reads camera descriptors from a JSON file. A missing or
// empty file is not an error: the built-in default set is returned.
func LoadCameras(path string) ([]model.Camera, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultCameras, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cameras file %s: %w", path, err)
	}

	var cameras []model.Camera
	if err := json.Unmarshal(data, &cameras); err != nil {
		return nil, fmt.Errorf("failed to parse cameras file %s: %w", path, err)
	}
	if len(cameras) == 0 {
		return DefaultCameras, nil
	}
	return cameras, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
