package ai

import (
	"image"

	"trafficserver/internal/model"
)

// Tracker assigns persistent integer identities to detections by greedy
// IoU matching against the previous frame's tracks. A track survives a
// few missed frames before it is dropped, so identities stay stable
// across the detection cadence.
type Tracker struct {
	iouThreshold float64
	maxMisses    int
	nextID       int
	tracks       []track
}

type track struct {
	id     int
	label  string
	rect   image.Rectangle
	misses int
}

func NewTracker(iouThreshold float64, maxMisses int) *Tracker {
	return &Tracker{
		iouThreshold: iouThreshold,
		maxMisses:    maxMisses,
		nextID:       1,
	}
}

// Update matches detections to existing tracks and mints new identities
// for the rest. It returns one tracked object per detection.
func (t *Tracker) Update(detections []Detection) []model.TrackedObject {
	matched := make([]bool, len(t.tracks))
	objects := make([]model.TrackedObject, 0, len(detections))

	for _, det := range detections {
		best := -1
		bestIoU := t.iouThreshold
		for i := range t.tracks {
			if matched[i] || t.tracks[i].label != det.Label {
				continue
			}
			if overlap := iou(t.tracks[i].rect, det.Rect); overlap >= bestIoU {
				best = i
				bestIoU = overlap
			}
		}

		var id int
		if best >= 0 {
			matched[best] = true
			t.tracks[best].rect = det.Rect
			t.tracks[best].misses = 0
			id = t.tracks[best].id
		} else {
			id = t.nextID
			t.nextID++
			t.tracks = append(t.tracks, track{id: id, label: det.Label, rect: det.Rect})
			matched = append(matched, true)
		}

		objects = append(objects, model.TrackedObject{
			ID:         id,
			Label:      det.Label,
			Confidence: det.Confidence,
			Rect:       det.Rect,
		})
	}

	// Age out tracks that went unmatched for too long.
	kept := t.tracks[:0]
	for i := range t.tracks {
		if !matched[i] {
			t.tracks[i].misses++
		}
		if t.tracks[i].misses <= t.maxMisses {
			kept = append(kept, t.tracks[i])
		}
	}
	t.tracks = kept

	return objects
}

func iou(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	interArea := inter.Dx() * inter.Dy()
	union := a.Dx()*a.Dy() + b.Dx()*b.Dy() - interArea
	if union <= 0 {
		return 0
	}
	return float64(interArea) / float64(union)
}
