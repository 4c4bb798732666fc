package director

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/ivlev/scene2video/internal/effects"
)

var (
	imageExts = []string{".png", ".jpg", ".jpeg", ".webp", ".bmp", ".tif", ".tiff", ".gif"}
	audioExts = []string{".wav", ".mp3", ".m4a", ".aac", ".ogg", ".flac"}
)

// Director drafts storyboards from a folder of assets.
type Director struct {
	// AssignMotion writes the cycled motion profile into every scene
	// so it can be edited in the manifest.
	AssignMotion bool
}

// NewDirector creates a new Director with default settings
func NewDirector() *Director {
	return &Director{AssignMotion: true}
}

// Draft pairs images and narrations in dir by file stem (01.png + 01.wav)
// and orders scenes by stem. A stem.txt next to them becomes the caption.
// Paths in the result are relative to dir.
func (d *Director) Draft(dir string) (*Storyboard, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	images := map[string]string{}
	audios := map[string]string{}
	captions := map[string]string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		switch {
		case slices.Contains(imageExts, ext):
			images[stem] = name
		case slices.Contains(audioExts, ext):
			audios[stem] = name
		case ext == ".txt":
			captions[stem] = name
		}
	}

	var stems []string
	for stem := range images {
		if _, ok := audios[stem]; ok {
			stems = append(stems, stem)
		}
	}
	if len(stems) == 0 {
		return nil, fmt.Errorf("no image/audio pairs found in %s", dir)
	}
	sortStems(stems)

	sb := &Storyboard{Version: StoryboardVersion, dir: dir}
	for i, stem := range stems {
		sc := Scene{ID: i + 1, Image: images[stem], Audio: audios[stem]}
		if name, ok := captions[stem]; ok {
			text, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return nil, err
			}
			sc.Caption = strings.TrimSpace(string(text))
		}
		if d.AssignMotion {
			sc.Motion = string(effects.ForScene(i))
		}
		sb.Scenes = append(sb.Scenes, sc)
	}
	return sb, nil
}

// sortStems orders numeric stems by value (2 before 10), the rest by name.
func sortStems(stems []string) {
	sort.Slice(stems, func(i, j int) bool {
		a, errA := strconv.Atoi(stems[i])
		b, errB := strconv.Atoi(stems[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return stems[i] < stems[j]
	})
}
