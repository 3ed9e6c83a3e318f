package video

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

// Source owns one decodable video capture for a camera.
type Source struct {
	capture *gocv.VideoCapture
	path    string
}

// Open opens the configured file for a camera. When the file does not
// exist the fallback file is tried instead; a source that cannot be
// opened at all excludes the camera for the process lifetime.
func Open(path, fallback string) (*Source, error) {
	src := path
	if _, err := os.Stat(src); os.IsNotExist(err) {
		if _, err := os.Stat(fallback); err == nil {
			src = fallback
		}
	}

	capture, err := gocv.VideoCaptureFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open video source %s: %w", src, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video source %s did not open", src)
	}
	return &Source{capture: capture, path: src}, nil
}

// Read fills dst with the next decoded frame. False signals end of stream.
func (s *Source) Read(dst *gocv.Mat) bool {
	return s.capture.Read(dst) && !dst.Empty()
}

// Rewind seeks back to the first frame so finite files loop forever.
func (s *Source) Rewind() {
	s.capture.Set(gocv.VideoCapturePosFrames, 0)
}

// Path returns the file the source actually opened.
func (s *Source) Path() string {
	return s.path
}

func (s *Source) Close() error {
	return s.capture.Close()
}
