package system

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-audio/wav"
	"github.com/rs/zerolog"

	"github.com/ivlev/scene2video/internal/ffmpeg"
)

var reDuration = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2}(?:\.\d+)?)`)

// DurationProbe resolves media duration: ffprobe first, then the WAV
// header, then a decode-to-null pass over the file.
type DurationProbe struct {
	Engine *ffmpeg.Engine
	Log    zerolog.Logger
}

func NewDurationProbe(engine *ffmpeg.Engine, log zerolog.Logger) *DurationProbe {
	return &DurationProbe{Engine: engine, Log: log}
}

// Duration returns the duration of path in seconds.
func (p *DurationProbe) Duration(ctx context.Context, path string) (float64, error) {
	var errs []error

	d, err := p.probe(ctx, path)
	if err == nil {
		return d, nil
	}
	errs = append(errs, fmt.Errorf("ffprobe: %w", err))
	p.Log.Debug().Err(err).Str("file", path).Msg("ffprobe не вернул длительность, читаем заголовок WAV")

	d, err = WAVDuration(path)
	if err == nil {
		return d, nil
	}
	errs = append(errs, fmt.Errorf("wav header: %w", err))
	p.Log.Debug().Err(err).Str("file", path).Msg("заголовок WAV недоступен, декодируем файл")

	d, err = p.decode(ctx, path)
	if err == nil {
		return d, nil
	}
	errs = append(errs, fmt.Errorf("decode: %w", err))

	return 0, &ffmpeg.Error{
		Kind: ffmpeg.KindDurationUnresolvable,
		Op:   path,
		Err:  errors.Join(errs...),
	}
}

func (p *DurationProbe) probe(ctx context.Context, path string) (float64, error) {
	res := p.Engine.Probe(ctx,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if res.Err != nil {
		return 0, fmt.Errorf("%w: %s", res.Err, strings.TrimSpace(res.Stderr))
	}
	return parseSeconds(res.Stdout)
}

func (p *DurationProbe) decode(ctx context.Context, path string) (float64, error) {
	// ffmpeg без выходного файла завершается с ошибкой, но Duration уже в stderr.
	res := p.Engine.Transcode(ctx, "-hide_banner", "-i", path, "-f", "null", "-")
	m := reDuration.FindStringSubmatch(res.Stderr)
	if m == nil {
		if res.Err != nil {
			return 0, res.Err
		}
		return 0, errors.New("no Duration token in engine output")
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	sec, _ := strconv.ParseFloat(m[3], 64)
	return validSeconds(float64(h)*3600 + float64(mins)*60 + sec)
}

// WAVDuration reads the duration from a RIFF/WAVE header.
func WAVDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, errors.New("not a RIFF/WAVE file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return 0, err
	}
	frameBytes := int(dec.BitDepth/8) * int(dec.NumChans)
	if frameBytes == 0 || dec.SampleRate == 0 {
		return 0, fmt.Errorf("unsupported WAV layout: %d-bit, %d channels, %d Hz", dec.BitDepth, dec.NumChans, dec.SampleRate)
	}
	frames := dec.PCMSize / frameBytes
	return validSeconds(float64(frames) / float64(dec.SampleRate))
}

func parseSeconds(out string) (float64, error) {
	s := strings.TrimSpace(out)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return validSeconds(v)
}

func validSeconds(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("invalid duration %v", v)
	}
	return v, nil
}
