package director

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ivlev/scene2video/internal/system"
)

// DefaultStoryboardDir is where the CLI looks for manifests.
var DefaultStoryboardDir = filepath.Join("input", "storyboards")

// GenerateStoryboardPath creates a timestamped storyboard filename in dir.
func GenerateStoryboardPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("storyboard_%s.yaml", now.Format("2006-01-02_15-04-05")))
}

// FindLatestStoryboard returns the most recently modified YAML file in dir.
func FindLatestStoryboard(dir string) (string, error) {
	files, err := system.ListFiles(dir, ".yaml", ".yml")
	if err != nil {
		return "", fmt.Errorf("failed to read storyboards directory: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no storyboard files found in %s", dir)
	}
	return files[0].Path, nil
}
