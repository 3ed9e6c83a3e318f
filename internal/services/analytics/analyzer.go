package analytics

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"trafficserver/internal/config"
	"trafficserver/internal/logger"
	"trafficserver/internal/model"
	"trafficserver/internal/repository/sqlite"
	"trafficserver/internal/services/ai"
)

const (
	// Base coordinate the synthetic sensor nodes are jittered around.
	baseLat = 10.025
	baseLng = 76.312

	framePollInterval = 50 * time.Millisecond
)

// Analyzer owns all mutable analytics state: the bounded event log, the
// unique-identity set and the latest encoded frame per camera. One mutex
// guards all three; it is never held across I/O or sleeps. A single
// background goroutine (real pipeline or mock generator) mutates the
// state, any number of request goroutines read it.
type Analyzer struct {
	cfg     *config.Config
	cameras []model.Camera
	backend ai.Backend                // nil selects the mock generator
	history *sqlite.HistoryRepository // optional
	logger  *logger.Logger

	mu         sync.Mutex
	events     []model.DetectionEvent
	uniqueIDs  map[int]struct{}
	frames     map[string][]byte
	eventLimit int

	dummyNodes []dummyNode
	draw       drawFunc

	cancel context.CancelFunc
	done   chan struct{}
}

// dummyNode is a synthetic sensor location used to densify the map. Its
// position is fixed at construction; its reported volume is random on
// every snapshot and never derived from detections.
type dummyNode struct {
	id   string
	name string
	lat  float64
	lng  float64
}

// New builds an Analyzer. A nil backend selects mock mode; a nil history
// repository disables the time-slot history mirror.
func New(cfg *config.Config, cameras []model.Camera, backend ai.Backend, history *sqlite.HistoryRepository, log *logger.Logger) *Analyzer {
	limit := cfg.EventLimitMock
	if backend != nil {
		limit = cfg.EventLimitReal
	}

	nodes := make([]dummyNode, 0, cfg.DummyNodes)
	for i := 0; i < cfg.DummyNodes; i++ {
		nodes = append(nodes, dummyNode{
			id:   fmt.Sprintf("DUMMY_%d", i),
			name: fmt.Sprintf("Sensor Node #%d", i+1),
			lat:  baseLat + (rand.Float64()-0.5)*0.01,
			lng:  baseLng + (rand.Float64()-0.5)*0.01,
		})
	}

	return &Analyzer{
		cfg:        cfg,
		cameras:    cameras,
		backend:    backend,
		history:    history,
		logger:     log,
		uniqueIDs:  make(map[int]struct{}),
		frames:     make(map[string][]byte),
		eventLimit: limit,
		dummyNodes: nodes,
		draw:       randomDraw,
	}
}

// Start launches the background driver: the real pipeline when a backend
// was injected, the mock generator otherwise.
func (a *Analyzer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})

	go func() {
		defer close(a.done)
		if a.backend != nil {
			a.runPipeline(ctx)
		} else {
			a.runMock(ctx)
		}
	}()
}

// Stop cancels the background driver and waits for it to exit.
func (a *Analyzer) Stop() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
}

// ingest records tracked identities and appends one frame's events under
// a single lock acquisition, then enforces the log bound by evicting the
// oldest entries. The history mirror is written outside the lock.
func (a *Analyzer) ingest(ids []int, events []model.DetectionEvent) {
	a.mu.Lock()
	for _, id := range ids {
		a.uniqueIDs[id] = struct{}{}
	}
	a.events = append(a.events, events...)
	if over := len(a.events) - a.eventLimit; over > 0 {
		a.events = append(a.events[:0:0], a.events[over:]...)
	}
	a.mu.Unlock()

	if a.history == nil {
		return
	}
	for i := range events {
		if err := a.history.Insert(&events[i]); err != nil {
			a.logger.Error("Failed to record event history: %v", err)
		}
	}
}

// publishFrame overwrites the camera's latest encoded frame.
func (a *Analyzer) publishFrame(cameraID string, jpeg []byte) {
	a.mu.Lock()
	a.frames[cameraID] = jpeg
	a.mu.Unlock()
}

// LatestData computes the dashboard summary as one atomic snapshot. The
// camera-derived figures are deterministic for a given state; the
// synthetic node entries are freshly randomized on every call.
func (a *Analyzer) LatestData() model.Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	distribution := make(map[model.VehicleType]int, len(model.VehicleTypes))
	for _, t := range model.VehicleTypes {
		distribution[t] = 0
	}
	for _, ev := range a.events {
		distribution[ev.VehicleType] += ev.Count
	}

	locations := make([]model.Location, 0, len(a.cameras)+len(a.dummyNodes))
	for _, cam := range a.cameras {
		total := 0
		breakdown := make(map[model.VehicleType]int, len(model.VehicleTypes))
		for _, t := range model.VehicleTypes {
			breakdown[t] = 0
		}
		for _, ev := range a.events {
			if ev.CameraID != cam.ID {
				continue
			}
			total += ev.Count
			breakdown[ev.VehicleType] += ev.Count
		}

		locations = append(locations, model.Location{
			ID:        cam.ID,
			Name:      cam.Name,
			Lat:       cam.Lat,
			Lng:       cam.Lng,
			Total:     total,
			Intensity: cameraIntensity(total),
			Breakdown: breakdown,
		})
	}

	for _, node := range a.dummyNodes {
		count := 10 + rand.Intn(51)
		locations = append(locations, model.Location{
			ID:        node.id,
			Name:      node.name,
			Lat:       node.lat,
			Lng:       node.lng,
			Total:     count,
			Intensity: syntheticIntensity(count),
			Breakdown: map[model.VehicleType]int{
				model.Car:   count,
				model.Bike:  0,
				model.Bus:   0,
				model.Truck: 0,
			},
			Synthetic: true,
		})
	}

	return model.Summary{
		TotalVehicles: len(a.uniqueIDs),
		Distribution:  distribution,
		Locations:     locations,
	}
}

// Frames returns a subscription delivering the camera's latest encoded
// frame on a fixed poll interval. The goroutine exits and the channel
// closes when ctx is cancelled; an unknown camera id emits nothing but
// still terminates cleanly, so a disconnected consumer cannot leak a
// poll loop.
func (a *Analyzer) Frames(ctx context.Context, cameraID string) <-chan []byte {
	out := make(chan []byte)

	go func() {
		defer close(out)
		ticker := time.NewTicker(framePollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			a.mu.Lock()
			frame := a.frames[cameraID]
			a.mu.Unlock()
			if frame == nil {
				continue
			}

			select {
			case out <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// cameraIntensity classifies real traffic volume. Boundaries at 15 and 40.
func cameraIntensity(total int) string {
	switch {
	case total > 40:
		return "high"
	case total > 15:
		return "moderate"
	default:
		return "low"
	}
}

// syntheticIntensity classifies the randomized volume of a dummy node.
func syntheticIntensity(count int) string {
	switch {
	case count > 45:
		return "high"
	case count > 20:
		return "moderate"
	default:
		return "low"
	}
}
