package analytics

import (
	"testing"

	"trafficserver/internal/config"
	"trafficserver/internal/logger"
	"trafficserver/internal/model"
)

func newMockAnalyzer(t *testing.T, eventLimit int, cameras []model.Camera) *Analyzer {
	t.Helper()
	log, err := logger.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	cfg := &config.Config{
		EventLimitMock:  eventLimit,
		MockTickSeconds: 2,
		DummyNodes:      20,
	}
	return New(cfg, cameras, nil, nil, log)
}

func TestMockForcedDraws(t *testing.T) {
	cameras := []model.Camera{
		{ID: "CAM_002", Name: "Seaport-Airport Rd", Lat: 10.025, Lng: 76.312},
	}
	a := newMockAnalyzer(t, 1000, cameras)
	a.draw = func() (bool, model.VehicleType, int) {
		return true, model.Truck, 2
	}

	for i := 0; i < 3; i++ {
		a.mockTick()
	}

	a.mu.Lock()
	eventCount := len(a.events)
	a.mu.Unlock()
	if eventCount != 3 {
		t.Fatalf("event log length = %d, expected 3", eventCount)
	}

	summary := a.LatestData()
	if summary.Distribution[model.Truck] != 6 {
		t.Errorf("distribution[truck] = %d, expected 6", summary.Distribution[model.Truck])
	}
	for _, vehicleType := range []model.VehicleType{model.Car, model.Bike, model.Bus} {
		if summary.Distribution[vehicleType] != 0 {
			t.Errorf("distribution[%s] = %d, expected 0", vehicleType, summary.Distribution[vehicleType])
		}
	}
	// Mock mode tracks no identities.
	if summary.TotalVehicles != 0 {
		t.Errorf("TotalVehicles = %d, expected 0 in mock mode", summary.TotalVehicles)
	}
}

func TestMockMissedDrawProducesNoEvent(t *testing.T) {
	cameras := []model.Camera{
		{ID: "CAM_002", Name: "Seaport-Airport Rd"},
	}
	a := newMockAnalyzer(t, 1000, cameras)
	a.draw = func() (bool, model.VehicleType, int) {
		return false, "", 0
	}

	for i := 0; i < 5; i++ {
		a.mockTick()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.events) != 0 {
		t.Errorf("event log length = %d, expected 0", len(a.events))
	}
}

func TestMockRespectsEventBound(t *testing.T) {
	cameras := []model.Camera{
		{ID: "CAM_002", Name: "Seaport-Airport Rd"},
	}
	a := newMockAnalyzer(t, 2, cameras)
	a.draw = func() (bool, model.VehicleType, int) {
		return true, model.Car, 1
	}

	for i := 0; i < 4; i++ {
		a.mockTick()
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.events) != 2 {
		t.Errorf("event log length = %d, expected bound 2", len(a.events))
	}
}

func TestMockEventPerCamera(t *testing.T) {
	cameras := []model.Camera{
		{ID: "CAM_002", Name: "Seaport-Airport Rd"},
		{ID: "CAM_003", Name: "Container Terminal Rd"},
	}
	a := newMockAnalyzer(t, 1000, cameras)
	a.draw = func() (bool, model.VehicleType, int) {
		return true, model.Bike, 1
	}

	a.mockTick()

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.events) != 2 {
		t.Fatalf("event log length = %d, expected one event per camera", len(a.events))
	}
	if a.events[0].CameraID == a.events[1].CameraID {
		t.Error("both events attributed to the same camera")
	}
}

func TestMockFramesNeverAvailable(t *testing.T) {
	cameras := []model.Camera{
		{ID: "CAM_002", Name: "Seaport-Airport Rd"},
	}
	a := newMockAnalyzer(t, 1000, cameras)
	a.draw = func() (bool, model.VehicleType, int) {
		return true, model.Car, 1
	}
	a.mockTick()

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.frames) != 0 {
		t.Errorf("mock mode published %d frames, expected none", len(a.frames))
	}
}
