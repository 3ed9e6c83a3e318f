package analytics

import (
	"context"
	"math/rand"
	"time"

	"trafficserver/internal/model"
)

// mockDetectionProbability is the chance that a camera reports a
// detection on any given mock tick.
const mockDetectionProbability = 0.7

// drawFunc decides one fabricated detection: whether it fires, its
// vehicle type and its count. Injectable so tests can force draws.
type drawFunc func() (bool, model.VehicleType, int)

// randomDraw fires with the mock probability, picks a uniformly random
// vehicle type and a count in [1,3].
func randomDraw() (bool, model.VehicleType, int) {
	if rand.Float64() >= mockDetectionProbability {
		return false, "", 0
	}
	t := model.VehicleTypes[rand.Intn(len(model.VehicleTypes))]
	return true, t, 1 + rand.Intn(3)
}

// runMock is the mock-mode driver: it fabricates detection events on a
// fixed tick when no detection backend is available. No identities are
// tracked and no frames are produced in this mode, so frame retrieval
// stays "not yet available" for the process lifetime.
func (a *Analyzer) runMock(ctx context.Context) {
	tick := time.Duration(a.cfg.MockTickSeconds) * time.Second
	a.logger.Info("Mock generator started, tick %s", tick)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.mockTick()
		}
	}
}

// mockTick fabricates at most one detection event per camera.
func (a *Analyzer) mockTick() {
	now := time.Now()
	var events []model.DetectionEvent

	for _, cam := range a.cameras {
		fired, vehicleType, count := a.draw()
		if !fired {
			continue
		}
		events = append(events, model.DetectionEvent{
			CameraID:    cam.ID,
			CameraName:  cam.Name,
			Lat:         cam.Lat,
			Lng:         cam.Lng,
			VehicleType: vehicleType,
			Count:       count,
			Timestamp:   now,
		})
	}

	if len(events) > 0 {
		a.ingest(nil, events)
	}
}
