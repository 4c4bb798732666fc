package api

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ivlev/scene2video/internal/source"
)

var mimeExts = map[string]string{
	"image/jpeg":   ".jpg",
	"image/jpg":    ".jpg",
	"image/png":    ".png",
	"image/webp":   ".webp",
	"image/gif":    ".gif",
	"image/bmp":    ".bmp",
	"audio/wav":    ".wav",
	"audio/x-wav":  ".wav",
	"audio/wave":   ".wav",
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/mp4":    ".m4a",
	"audio/x-m4a":  ".m4a",
	"audio/aac":    ".aac",
	"audio/ogg":    ".ogg",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
}

// splitDataURL strips a data:<mime>;base64, prefix and returns the mime type.
func splitDataURL(s string) (mime, payload string) {
	if !strings.HasPrefix(s, "data:") {
		return "", s
	}
	head, body, ok := strings.Cut(s, ",")
	if !ok {
		return "", s
	}
	head = strings.TrimPrefix(head, "data:")
	mime, _, _ = strings.Cut(head, ";")
	return strings.ToLower(mime), body
}

func extFor(mime, fallback string) string {
	if ext, ok := mimeExts[strings.ToLower(mime)]; ok {
		return ext
	}
	return fallback
}

// uploads tracks the files decoded for one request.
type uploads struct {
	dir   string
	paths []string
}

// save decodes a base64 or data-URL payload into dir with a uuid name.
// The explicit mime type wins over the data-URL one.
func (u *uploads) save(data, mime, fallbackExt string) (string, error) {
	urlMime, payload := splitDataURL(strings.TrimSpace(data))
	if mime == "" {
		mime = urlMime
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("invalid base64 data: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty file data")
	}

	if err := os.MkdirAll(u.dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(u.dir, uuid.NewString()+extFor(mime, fallbackExt))
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", err
	}
	u.paths = append(u.paths, path)
	return path, nil
}

// saveAudio is save plus a repair pass: a .wav upload without a RIFF header
// is treated as raw 16-bit PCM and wrapped into a proper WAV file.
func (u *uploads) saveAudio(data, mime string) (path string, repaired bool, err error) {
	path, err = u.save(data, mime, ".wav")
	if err != nil || filepath.Ext(path) != ".wav" {
		return path, false, err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", false, err
	}
	valid := source.ValidWAV(f)
	f.Close()
	if valid {
		return path, false, nil
	}

	fixed := strings.TrimSuffix(path, ".wav") + "_fixed.wav"
	if err := source.WrapRawPCM(path, fixed, source.RawPCMSampleRate); err != nil {
		return "", false, fmt.Errorf("audio is neither WAV nor raw PCM: %w", err)
	}
	u.paths = append(u.paths, fixed)
	return fixed, true, nil
}

// inDir resolves a client-supplied server path, which must stay inside dir.
func inDir(dir, name string) (string, error) {
	base, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(base, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the upload directory", name)
	}
	return p, nil
}

// remove deletes every decoded upload and returns the number removed.
func (u *uploads) remove() int {
	n := 0
	for _, p := range u.paths {
		if err := os.Remove(p); err == nil {
			n++
		}
	}
	return n
}
