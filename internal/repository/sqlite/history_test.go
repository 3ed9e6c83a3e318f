package sqlite

import (
	"testing"
	"time"

	"trafficserver/internal/model"
)

func newTestRepository(t *testing.T) *HistoryRepository {
	t.Helper()
	repo, err := NewHistoryRepository(":memory:")
	if err != nil {
		t.Fatalf("failed to open history repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func eventAt(hour int, vehicleType model.VehicleType, count int) *model.DetectionEvent {
	return &model.DetectionEvent{
		CameraID:    "CAM_002",
		CameraName:  "Seaport-Airport Rd",
		VehicleType: vehicleType,
		Count:       count,
		Timestamp:   time.Date(2026, 8, 30, hour, 15, 0, 0, time.Local),
	}
}

func TestSlotTotals(t *testing.T) {
	repo := newTestRepository(t)

	inserts := []*model.DetectionEvent{
		eventAt(9, model.Car, 3),    // morning
		eventAt(10, model.Car, 2),   // morning
		eventAt(13, model.Truck, 4), // afternoon
		eventAt(18, model.Bus, 1),   // evening
		eventAt(22, model.Bike, 2),  // night
		eventAt(2, model.Bike, 5),   // night wraps past midnight
	}
	for _, ev := range inserts {
		if err := repo.Insert(ev); err != nil {
			t.Fatalf("failed to insert event: %v", err)
		}
	}

	tests := []struct {
		slot     string
		expected map[model.VehicleType]int
	}{
		{"morning", map[model.VehicleType]int{model.Car: 5, model.Bike: 0, model.Bus: 0, model.Truck: 0}},
		{"afternoon", map[model.VehicleType]int{model.Car: 0, model.Bike: 0, model.Bus: 0, model.Truck: 4}},
		{"evening", map[model.VehicleType]int{model.Car: 0, model.Bike: 0, model.Bus: 1, model.Truck: 0}},
		{"night", map[model.VehicleType]int{model.Car: 0, model.Bike: 7, model.Bus: 0, model.Truck: 0}},
	}

	for _, tt := range tests {
		totals, err := repo.SlotTotals(tt.slot)
		if err != nil {
			t.Fatalf("SlotTotals(%q) failed: %v", tt.slot, err)
		}
		for vehicleType, expected := range tt.expected {
			if totals[vehicleType] != expected {
				t.Errorf("slot %s: totals[%s] = %d, expected %d", tt.slot, vehicleType, totals[vehicleType], expected)
			}
		}
	}
}

func TestSlotTotalsUnknownSlotFallsBackToMorning(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.Insert(eventAt(8, model.Car, 2)); err != nil {
		t.Fatalf("failed to insert event: %v", err)
	}

	totals, err := repo.SlotTotals("brunch")
	if err != nil {
		t.Fatalf("SlotTotals failed: %v", err)
	}
	if totals[model.Car] != 2 {
		t.Errorf("unknown slot: totals[car] = %d, expected 2", totals[model.Car])
	}
}

func TestSlotTotalsEmpty(t *testing.T) {
	repo := newTestRepository(t)

	totals, err := repo.SlotTotals("morning")
	if err != nil {
		t.Fatalf("SlotTotals failed: %v", err)
	}
	for _, vehicleType := range model.VehicleTypes {
		if totals[vehicleType] != 0 {
			t.Errorf("empty store: totals[%s] = %d, expected 0", vehicleType, totals[vehicleType])
		}
	}
}
