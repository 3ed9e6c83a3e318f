package ai

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"gocv.io/x/gocv"

	"trafficserver/internal/config"
	"trafficserver/internal/logger"
	"trafficserver/internal/model"
)

const (
	// DetectionThreshold is the minimum confidence for a detection to count.
	DetectionThreshold = 0.5

	trackerIoUThreshold = 0.3
	trackerMaxMisses    = 5
)

// vehicleClasses maps COCO class ids from the SSD model to raw labels.
// Non-vehicle classes are dropped at the detector.
var vehicleClasses = map[int]string{
	3: "car",
	4: "motorcycle",
	6: "bus",
	8: "truck",
}

// DNNBackend runs a MobileNet-SSD network over each eligible frame and
// feeds the detections through an IoU tracker for persistent identities.
type DNNBackend struct {
	net     gocv.Net
	tracker *Tracker
	logger  *logger.Logger
}

// NewDNNBackend loads the detection network. A missing model file or a
// network that fails to load is an error: the caller decides whether to
// fall back to mock mode.
func NewDNNBackend(cfg *config.Config, log *logger.Logger) (*DNNBackend, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}
	if _, err := os.Stat(cfg.ModelConfigPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model config file not found: %s", cfg.ModelConfigPath)
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.ModelConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", cfg.ModelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set preferable backend or target")
	}

	log.Info("Detection network initialized successfully")
	return &DNNBackend{
		net:     net,
		tracker: NewTracker(trackerIoUThreshold, trackerMaxMisses),
		logger:  log,
	}, nil
}

func (b *DNNBackend) Close() {
	b.net.Close()
}

// Track runs detection on the frame and returns tracked vehicles.
func (b *DNNBackend) Track(frame gocv.Mat) ([]model.TrackedObject, error) {
	if b.net.Empty() {
		return nil, fmt.Errorf("detection network is not loaded")
	}

	blob := gocv.BlobFromImage(frame, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	b.net.SetInput(blob, "")
	output := b.net.Forward("")
	defer output.Close()

	imgWidth := float32(frame.Cols())
	imgHeight := float32(frame.Rows())

	var detections []Detection
	for i := 0; i < output.Total(); i += 7 {
		confidence := output.GetFloatAt(0, i+2)
		if confidence < DetectionThreshold {
			continue
		}

		classID := int(output.GetFloatAt(0, i+1))
		label, vehicle := vehicleClasses[classID]
		if !vehicle {
			continue
		}

		left := int(output.GetFloatAt(0, i+3) * imgWidth)
		top := int(output.GetFloatAt(0, i+4) * imgHeight)
		right := int(output.GetFloatAt(0, i+5) * imgWidth)
		bottom := int(output.GetFloatAt(0, i+6) * imgHeight)

		detections = append(detections, Detection{
			Label:      label,
			Confidence: float64(confidence),
			Rect:       image.Rect(left, top, right, bottom),
		})
	}

	return b.tracker.Update(detections), nil
}

// Annotate draws each tracked vehicle's box and identity on the frame.
func (b *DNNBackend) Annotate(frame *gocv.Mat, objects []model.TrackedObject) {
	for _, obj := range objects {
		gocv.Rectangle(frame, obj.Rect, color.RGBA{0, 255, 0, 0}, 2)
		label := fmt.Sprintf("%s #%d", obj.Label, obj.ID)
		gocv.PutText(frame, label, image.Pt(obj.Rect.Min.X, obj.Rect.Min.Y-5),
			gocv.FontHersheySimplex, 0.5, color.RGBA{0, 255, 0, 0}, 1)
	}
}
