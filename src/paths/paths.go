package paths

import (
	"os"
	"path/filepath"
)

// DataDirEnvVar overrides the base data directory; by default artifacts
// live next to the executable, matching how the .env file is resolved.
const DataDirEnvVar = "DATA_DIR"

// ScreenshotsDir returns the screenshots directory (<base>/data/ss),
// creating it if missing.
func ScreenshotsDir() (string, error) {
	base, err := baseDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "data", "ss")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func baseDir() (string, error) {
	if dir := os.Getenv(DataDirEnvVar); dir != "" {
		return dir, nil
	}
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(execPath), nil
}
