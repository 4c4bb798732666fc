package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// Asset is the pair of input files of one scene.
type Asset struct {
	Index int
	Image string
	Audio string
}

// AssetError names the scene and file that failed inspection.
type AssetError struct {
	Scene int
	Path  string
	Err   error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("scene %d: %s: %v", e.Scene+1, e.Path, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// ImageInfo is what the header of a still image tells us.
type ImageInfo struct {
	Format        string
	Width, Height int
}

// InspectImage reads only the image header.
func InspectImage(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("unsupported image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return ImageInfo{}, errors.New("image has zero size")
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// InspectAudio checks that the narration is a non-empty readable file and,
// for .wav, that it carries a RIFF/WAVE header.
func InspectAudio(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New("is a directory")
	}
	if info.Size() == 0 {
		return errors.New("audio file is empty")
	}
	if strings.EqualFold(filepath.Ext(path), ".wav") && !ValidWAV(f) {
		return errors.New("invalid WAV header")
	}
	return nil
}

// ValidWAV reports whether r starts with a decodable RIFF/WAVE header.
func ValidWAV(r io.ReadSeeker) bool {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return false
	}
	return wav.NewDecoder(r).IsValidFile()
}

// Inspect checks every asset with at most limit files open at once.
// The first failure cancels the rest.
func Inspect(ctx context.Context, assets []Asset, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, a := range assets {
		a := a
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := InspectImage(a.Image); err != nil {
				return &AssetError{Scene: a.Index, Path: a.Image, Err: err}
			}
			if err := InspectAudio(a.Audio); err != nil {
				return &AssetError{Scene: a.Index, Path: a.Audio, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}
