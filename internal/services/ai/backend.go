package ai

import (
	"image"

	"gocv.io/x/gocv"

	"trafficserver/internal/model"
)

// Backend turns a frame into tracked objects carrying persistent
// identities. The pipeline never probes availability itself; the entry
// point decides once which backend (if any) to inject.
type Backend interface {
	Track(frame gocv.Mat) ([]model.TrackedObject, error)
	Annotate(frame *gocv.Mat, objects []model.TrackedObject)
}

// Detection is a raw detector output before identity assignment.
type Detection struct {
	Label      string
	Confidence float64
	Rect       image.Rectangle
}
