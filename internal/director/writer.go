package director

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteStoryboard writes a storyboard to a YAML file, creating parent directories.
func WriteStoryboard(sb *Storyboard, path string) error {
	if sb.Version == "" {
		sb.Version = StoryboardVersion
	}
	data, err := yaml.Marshal(sb)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadStoryboard reads a storyboard from a YAML file.
func ReadStoryboard(path string) (*Storyboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sb Storyboard
	if err := yaml.Unmarshal(data, &sb); err != nil {
		return nil, fmt.Errorf("parse storyboard %s: %w", path, err)
	}
	if len(sb.Scenes) == 0 {
		return nil, fmt.Errorf("storyboard %s has no scenes", path)
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	sb.dir = abs
	return &sb, nil
}
