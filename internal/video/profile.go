package video

import (
	"strconv"

	"github.com/ivlev/scene2video/internal/config"
)

// EncodeProfile is the fixed codec setup shared by scene and transition renders.
type EncodeProfile struct {
	VideoCodec   string
	Preset       string
	CRF          int
	AudioCodec   string
	AudioBitrate string
}

// DefaultEncodeProfile is libx264 fast CRF 25 with 128k AAC.
var DefaultEncodeProfile = EncodeProfile{
	VideoCodec:   "libx264",
	Preset:       "fast",
	CRF:          25,
	AudioCodec:   "aac",
	AudioBitrate: "128k",
}

// EncodeProfileFrom takes the encode settings from cfg.
func EncodeProfileFrom(cfg *config.Config) EncodeProfile {
	p := DefaultEncodeProfile
	if cfg.VideoCodec != "" {
		p.VideoCodec = cfg.VideoCodec
	}
	if cfg.Preset != "" {
		p.Preset = cfg.Preset
	}
	if cfg.CRF > 0 {
		p.CRF = cfg.CRF
	}
	if cfg.AudioCodec != "" {
		p.AudioCodec = cfg.AudioCodec
	}
	if cfg.AudioBitrate != "" {
		p.AudioBitrate = cfg.AudioBitrate
	}
	return p
}

func (p EncodeProfile) args() []string {
	return []string{
		"-c:v", p.VideoCodec,
		"-preset", p.Preset,
		"-crf", strconv.Itoa(p.CRF),
		"-c:a", p.AudioCodec,
		"-b:a", p.AudioBitrate,
	}
}
