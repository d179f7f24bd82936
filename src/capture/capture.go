// Package capture persists screen captures as PNG artifacts under the
// data directory. Downstream OCR/analysis artifacts are written next to
// the image they derive from.
package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"screen-capture-llm/src/paths"
	"screen-capture-llm/src/screenshot"
)

// FullScreen captures the whole virtual screen to a timestamped PNG
// file and returns its path.
func FullScreen() (string, error) {
	data, err := screenshot.Capture()
	if err != nil {
		return "", err
	}
	return writeArtifact(data)
}

// Rect captures the given region to a timestamped PNG file and returns
// its path.
func Rect(region screenshot.Region) (string, error) {
	data, err := screenshot.CaptureRegion(region)
	if err != nil {
		return "", err
	}
	return writeArtifact(data)
}

func writeArtifact(data []byte) (string, error) {
	dir, err := paths.ScreenshotsDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve screenshots dir: %w", err)
	}
	name := fmt.Sprintf("ss-%s.png", time.Now().UTC().Format("20060102-150405.000000"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}
