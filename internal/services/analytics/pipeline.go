package analytics

import (
	"context"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"trafficserver/internal/model"
	"trafficserver/internal/services/video"
)

const (
	frameWidth  = 640
	frameHeight = 360

	// cycleDelay paces the driver at roughly 60 cycles per second.
	cycleDelay = 16 * time.Millisecond
)

var timestampColor = color.RGBA{255, 0, 0, 0}

// runPipeline is the real-mode driver. One goroutine processes every
// camera round-robin each cycle: read a frame (rewinding on end of
// stream so finite files loop), run detection on every Nth frame, and
// publish an encoded frame every cycle so the feed stays smooth.
func (a *Analyzer) runPipeline(ctx context.Context) {
	sources := make(map[string]*video.Source)
	for _, cam := range a.cameras {
		src, err := video.Open(cam.File, a.cfg.FallbackVideo)
		if err != nil {
			a.logger.Warning("Camera %s excluded: %v", cam.ID, err)
			continue
		}
		a.logger.Info("Camera %s reading from %s", cam.ID, src.Path())
		sources[cam.ID] = src
	}
	defer func() {
		for _, src := range sources {
			src.Close()
		}
	}()

	frame := gocv.NewMat()
	defer frame.Close()
	resized := gocv.NewMat()
	defer resized.Close()

	// Last annotated frame per camera, reused on non-detection cycles so
	// boxes stay visible between detections.
	annotated := make(map[string]gocv.Mat)
	defer func() {
		for _, m := range annotated {
			m.Close()
		}
	}()

	failed := make(map[string]bool)
	frameCount := 0

	for {
		for _, cam := range a.cameras {
			select {
			case <-ctx.Done():
				return
			default:
			}

			src, ok := sources[cam.ID]
			if !ok || failed[cam.ID] {
				continue
			}

			if !src.Read(&frame) {
				src.Rewind()
				continue
			}
			gocv.Resize(frame, &resized, image.Pt(frameWidth, frameHeight), 0, 0, gocv.InterpolationLinear)

			frameCount++
			if frameCount%a.cfg.FrameInterval == 0 {
				if err := a.detect(cam, resized, annotated); err != nil {
					// One camera failing must not take the pipeline down.
					a.logger.Error("Camera %s marked failed: %v", cam.ID, err)
					failed[cam.ID] = true
					continue
				}
			}

			a.publish(cam.ID, resized, annotated)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(cycleDelay):
		}
	}
}

// detect runs the backend on one frame, refreshes the camera's annotated
// frame and folds the results into the shared state.
func (a *Analyzer) detect(cam model.Camera, frame gocv.Mat, annotated map[string]gocv.Mat) error {
	objects, err := a.backend.Track(frame)
	if err != nil {
		return err
	}

	cached, ok := annotated[cam.ID]
	if !ok {
		cached = gocv.NewMat()
		annotated[cam.ID] = cached
	}
	frame.CopyTo(&cached)
	a.backend.Annotate(&cached, objects)

	ids := make([]int, 0, len(objects))
	counts := make(map[model.VehicleType]int)
	for _, obj := range objects {
		ids = append(ids, obj.ID)
		if t, ok := model.CanonicalType(obj.Label); ok {
			counts[t]++
		}
	}

	var events []model.DetectionEvent
	now := time.Now()
	for _, t := range model.VehicleTypes {
		if counts[t] == 0 {
			continue
		}
		events = append(events, model.DetectionEvent{
			CameraID:    cam.ID,
			CameraName:  cam.Name,
			Lat:         cam.Lat,
			Lng:         cam.Lng,
			VehicleType: t,
			Count:       counts[t],
			Timestamp:   now,
		})
	}

	a.ingest(ids, events)
	return nil
}

// publish overlays the wall-clock timestamp, encodes the frame and makes
// it the camera's latest. The annotated frame is preferred when one
// exists so the feed keeps showing detection boxes between cadence hits.
func (a *Analyzer) publish(cameraID string, frame gocv.Mat, annotated map[string]gocv.Mat) {
	out := frame
	if cached, ok := annotated[cameraID]; ok && !cached.Empty() {
		out = cached
	}

	gocv.PutText(&out, time.Now().Format("15:04:05"), image.Pt(10, 30),
		gocv.FontHersheySimplex, 1, timestampColor, 2)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, out)
	if err != nil {
		a.logger.Error("Camera %s: frame encode failed: %v", cameraID, err)
		return
	}
	defer buf.Close()

	jpeg := make([]byte, buf.Len())
	copy(jpeg, buf.GetBytes())
	a.publishFrame(cameraID, jpeg)
}
