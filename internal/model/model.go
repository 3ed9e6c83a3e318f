package model

import (
	"image"
	"time"
)

// VehicleType is one of the four canonical vehicle categories.
type VehicleType string

const (
	Car   VehicleType = "car"
	Bike  VehicleType = "bike"
	Bus   VehicleType = "bus"
	Truck VehicleType = "truck"
)

// VehicleTypes lists every canonical type in a stable order.
var VehicleTypes = []VehicleType{Car, Bike, Bus, Truck}

// CanonicalType maps a raw detector label to a canonical vehicle type.
// A "motorcycle" label is recorded as bike. Labels outside the known set
// contribute to no count.
func CanonicalType(label string) (VehicleType, bool) {
	switch label {
	case "car":
		return Car, true
	case "motorcycle":
		return Bike, true
	case "bus":
		return Bus, true
	case "truck":
		return Truck, true
	}
	return "", false
}

// Camera describes one configured video source. The camera set is fixed
// for the process lifetime.
type Camera struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	File string  `json:"file"`
}

// TrackedObject is a single detection carrying the persistent identity
// assigned by the tracker.
type TrackedObject struct {
	ID         int
	Label      string
	Confidence float64
	Rect       image.Rectangle
}

// DetectionEvent records a nonzero per-type count observed in one
// processed frame.
type DetectionEvent struct {
	CameraID    string      `json:"camera_id"`
	CameraName  string      `json:"camera_name"`
	Lat         float64     `json:"lat"`
	Lng         float64     `json:"lng"`
	VehicleType VehicleType `json:"vehicle_type"`
	Count       int         `json:"count"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Location is one map entry in a Summary: either a real camera or a
// synthetic sensor node. Synthetic entries carry randomized volume and
// must not be read as detection output.
type Location struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Lat       float64             `json:"lat"`
	Lng       float64             `json:"lng"`
	Total     int                 `json:"total"`
	Intensity string              `json:"intensity"`
	Breakdown map[VehicleType]int `json:"breakdown"`
	Synthetic bool                `json:"synthetic"`
}

// Summary is the aggregate payload served to the dashboard.
type Summary struct {
	TotalVehicles int                 `json:"total_vehicles"`
	Distribution  map[VehicleType]int `json:"distribution"`
	Locations     []Location          `json:"locations"`
}
