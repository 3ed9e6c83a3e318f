// Command fetch-assets downloads the sample traffic videos into the
// working directory before the analytics server starts. Failures are
// logged and never retried; the server treats a missing video as
// "source unavailable" for that camera.
package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

var files = map[string]string{
	"traffic_cam2.mp4": "https://github.com/wdzhong/traffic-video-process/raw/master/Freewa.mp4",
	"traffic_cam3.mp4": "https://github.com/intel-iot-devkit/sample-videos/raw/master/car-detection.mp4",
}

func main() {
	for filename, url := range files {
		if err := download(url, filename); err != nil {
			log.Printf("Failed to download %s: %v", filename, err)
			continue
		}
		log.Printf("Saved %s", filename)
	}
}

func download(url, filename string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	out, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}
