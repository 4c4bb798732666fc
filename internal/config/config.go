package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultMinFreeBytes is the preflight free-space threshold (3 GB).
const DefaultMinFreeBytes uint64 = 3 << 30

type Config struct {
	// Files
	OutputDir string `yaml:"output_dir"`
	UploadDir string `yaml:"upload_dir"`
	TempRoot  string `yaml:"temp_root"`

	// Engine
	FFmpegBin    string `yaml:"ffmpeg_bin"`
	FFprobeBin   string `yaml:"ffprobe_bin"`
	Platform     string `yaml:"font_platform"`
	MinFreeBytes uint64 `yaml:"min_free_bytes"`

	// Encode profile
	VideoCodec   string `yaml:"video_codec"`
	Preset       string `yaml:"preset"`
	CRF          int    `yaml:"crf"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
	Transition   string `yaml:"transition"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	Port                 string        `yaml:"port"`
	APIKey               string        `yaml:"api_key"`
	CORSOrigins          string        `yaml:"cors_origins"`
	MaxConcurrentRenders int           `yaml:"max_concurrent_renders"`
	MaxUploadBytes       int64         `yaml:"max_upload_bytes"`
	OutputMaxAge         time.Duration `yaml:"output_max_age"`
	CleanupMaxAge        time.Duration `yaml:"cleanup_max_age"`
}

// SegmentParams describes the geometry and timing of one scene segment.
type SegmentParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	Frames        int
	SceneIndex    int
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir:            "generated_videos",
		UploadDir:            "temp_uploads",
		TempRoot:             os.TempDir(),
		FFmpegBin:            "ffmpeg",
		FFprobeBin:           "ffprobe",
		Platform:             runtime.GOOS,
		MinFreeBytes:         DefaultMinFreeBytes,
		VideoCodec:           "libx264",
		Preset:               "fast",
		CRF:                  25,
		AudioCodec:           "aac",
		AudioBitrate:         "128k",
		Transition:           "smoothleft",
		LogLevel:             "info",
		LogFormat:            "console",
		Port:                 "8080",
		CORSOrigins:          "*",
		MaxConcurrentRenders: 2,
		MaxUploadBytes:       512 << 20,
		OutputMaxAge:         time.Hour,
		CleanupMaxAge:        24 * time.Hour,
	}
}

// Load builds the configuration: defaults, then .env, then the optional
// YAML file at path, then environment overrides.
func Load(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.OutputDir = getEnv("OUTPUT_DIR", c.OutputDir)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.TempRoot = getEnv("TEMP_DIR", c.TempRoot)
	c.FFmpegBin = getEnv("FFMPEG_BIN", c.FFmpegBin)
	c.FFprobeBin = getEnv("FFPROBE_BIN", c.FFprobeBin)
	c.Platform = getEnv("FONT_PLATFORM", c.Platform)
	c.MinFreeBytes = getEnvUint("MIN_FREE_BYTES", c.MinFreeBytes)
	c.Preset = getEnv("VIDEO_PRESET", c.Preset)
	c.CRF = getEnvInt("VIDEO_CRF", c.CRF)
	c.AudioBitrate = getEnv("AUDIO_BITRATE", c.AudioBitrate)
	c.Transition = getEnv("TRANSITION", c.Transition)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.Port = getEnv("API_PORT", c.Port)
	c.APIKey = getEnv("BACKEND_API_KEY", c.APIKey)
	c.CORSOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.CORSOrigins)
	c.MaxConcurrentRenders = getEnvInt("MAX_CONCURRENT_RENDERS", c.MaxConcurrentRenders)
	c.MaxUploadBytes = getEnvInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.OutputMaxAge = getEnvDuration("OUTPUT_MAX_AGE", c.OutputMaxAge)
	c.CleanupMaxAge = getEnvDuration("CLEANUP_MAX_AGE", c.CleanupMaxAge)
}

// Validate checks the fields the pipeline depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}
	if c.FFmpegBin == "" || c.FFprobeBin == "" {
		errs = append(errs, errors.New("ffmpeg_bin and ffprobe_bin are required"))
	}
	if c.CRF < 0 || c.CRF > 51 {
		errs = append(errs, fmt.Errorf("crf %d out of range 0-51", c.CRF))
	}
	if c.MaxConcurrentRenders < 1 {
		errs = append(errs, fmt.Errorf("max_concurrent_renders must be >= 1, got %d", c.MaxConcurrentRenders))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		u, err := strconv.ParseUint(value, 10, 64)
		if err == nil {
			return u
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
