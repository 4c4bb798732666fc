package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/engine"
	"github.com/ivlev/scene2video/internal/ffmpeg"
	"github.com/ivlev/scene2video/internal/system"
)

// Renderer produces one video per request.
type Renderer interface {
	Run(ctx context.Context, req engine.RenderRequest) (*engine.RenderOutcome, error)
}

type Handler struct {
	renderer Renderer
	cfg      *config.Config
	slots    *semaphore.Weighted
	log      zerolog.Logger
	now      func() time.Time
}

func NewHandler(renderer Renderer, cfg *config.Config, log zerolog.Logger) *Handler {
	n := cfg.MaxConcurrentRenders
	if n < 1 {
		n = 1
	}
	return &Handler{
		renderer: renderer,
		cfg:      cfg,
		slots:    semaphore.NewWeighted(int64(n)),
		log:      log,
		now:      time.Now,
	}
}

// SceneRequest is one scene of POST /api/generate-video. Media comes either
// inline (base64 or data URL) or as a file already in the upload directory.
type SceneRequest struct {
	ImageURL      string `json:"imageUrl"`
	ImageMimeType string `json:"imageMimeType"`
	ImagePath     string `json:"imagePath"`
	AudioURL      string `json:"audioUrl"`
	AudioMimeType string `json:"audioMimeType"`
	AudioPath     string `json:"audioPath"`
	Caption       string `json:"caption"`
	VoiceOver     string `json:"voiceOver"`
	Motion        string `json:"motion"`
}

type GenerateRequest struct {
	Scenes             []SceneRequest `json:"scenes"`
	AspectRatio        string         `json:"aspectRatio"`
	Resolution         string         `json:"resolution"`
	TransitionDuration float64        `json:"transitionDuration"`
	FPS                int            `json:"fps"`
	Filename           string         `json:"filename"`
	EnableCaptions     *bool          `json:"enableCaptions"`
}

type GenerateResponse struct {
	Success  bool    `json:"success"`
	VideoURL string  `json:"videoUrl"`
	Filename string  `json:"filename"`
	Duration float64 `json:"duration"`
	Message  string  `json:"message"`
}

type VideoInfo struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	URL      string    `json:"url"`
}

// Health handles GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Video generation API is running",
	})
}

// GenerateVideo handles POST /api/generate-video
func (h *Handler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	var body GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body.Scenes) == 0 {
		respondError(w, http.StatusBadRequest, "No scenes provided")
		return
	}

	up := &uploads{dir: h.cfg.UploadDir}
	defer func() {
		if n := up.remove(); n > 0 {
			h.log.Debug().Int("files", n).Msg("временные загрузки удалены")
		}
	}()

	req := engine.RenderRequest{
		AspectRatio:        body.AspectRatio,
		Resolution:         body.Resolution,
		TransitionDuration: body.TransitionDuration,
		FPS:                body.FPS,
		OutputFilename:     body.Filename,
		EnableCaptions:     body.EnableCaptions == nil || *body.EnableCaptions,
	}
	for i, sc := range body.Scenes {
		scene, err := h.sceneFrom(up, sc)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("scene %d: %v", i+1, err))
			return
		}
		req.Scenes = append(req.Scenes, scene)
	}
	req.ApplyDefaults()

	h.log.Info().
		Int("scenes", len(req.Scenes)).
		Bool("captions", req.EnableCaptions).
		Str("filename", req.OutputFilename).
		Msg("запрос на генерацию видео")

	if err := h.slots.Acquire(r.Context(), 1); err != nil {
		respondError(w, http.StatusServiceUnavailable, "Request cancelled while waiting for a render slot")
		return
	}
	out, err := h.renderer.Run(r.Context(), req)
	h.slots.Release(1)
	if err != nil {
		h.log.Error().Err(err).Str("kind", ffmpeg.KindOf(err).String()).Msg("ошибка генерации видео")
		respondRenderError(w, err)
		return
	}

	name := filepath.Base(out.OutputPath)
	removed, err := system.PruneOlderThan(h.cfg.OutputDir, h.cfg.OutputMaxAge, h.now(), name)
	if err != nil {
		h.log.Warn().Err(err).Msg("не удалось удалить старые видео")
	} else if len(removed) > 0 {
		h.log.Info().Int("files", len(removed)).Msg("старые видео удалены")
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		Success:  true,
		VideoURL: "/api/download/" + name,
		Filename: name,
		Duration: out.Duration,
		Message:  "Video generated successfully",
	})
}

func (h *Handler) sceneFrom(up *uploads, sc SceneRequest) (engine.Scene, error) {
	scene := engine.Scene{Caption: sc.Caption, VoiceOver: sc.VoiceOver, Motion: sc.Motion}

	var err error
	switch {
	case sc.ImageURL != "":
		scene.ImagePath, err = up.save(sc.ImageURL, sc.ImageMimeType, ".png")
	case sc.ImagePath != "":
		scene.ImagePath, err = inDir(h.cfg.UploadDir, sc.ImagePath)
	default:
		err = errors.New("image is required")
	}
	if err != nil {
		return scene, fmt.Errorf("image: %w", err)
	}

	switch {
	case sc.AudioURL != "":
		var repaired bool
		scene.AudioPath, repaired, err = up.saveAudio(sc.AudioURL, sc.AudioMimeType)
		if repaired {
			h.log.Warn().Str("audio", scene.AudioPath).Msg("аудио без заголовка WAV, обёрнуто как PCM")
		}
	case sc.AudioPath != "":
		scene.AudioPath, err = inDir(h.cfg.UploadDir, sc.AudioPath)
	default:
		err = errors.New("audio is required")
	}
	if err != nil {
		return scene, fmt.Errorf("audio: %w", err)
	}
	return scene, nil
}

// Download handles GET /api/download/{filename}
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		respondError(w, http.StatusBadRequest, "Invalid filename")
		return
	}

	f, err := os.Open(filepath.Join(h.cfg.OutputDir, name))
	if err != nil {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		respondError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// ListVideos handles GET /api/videos
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	files, err := system.ListFiles(h.cfg.OutputDir, ".mp4")
	if err != nil && !os.IsNotExist(err) {
		respondError(w, http.StatusInternalServerError, "Failed to list videos")
		return
	}

	videos := make([]VideoInfo, 0, len(files))
	for _, f := range files {
		videos = append(videos, VideoInfo{
			Filename: f.Name,
			Size:     f.Size,
			Modified: f.ModTime,
			URL:      "/api/download/" + f.Name,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"videos": videos})
}

// Cleanup handles POST /api/cleanup
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	staleUploads, err := system.PruneOlderThan(h.cfg.UploadDir, h.cfg.CleanupMaxAge, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	staleVideos, err := system.PruneOlderThan(h.cfg.OutputDir, h.cfg.CleanupMaxAge, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.Info().Int("uploads", len(staleUploads)).Int("videos", len(staleVideos)).Msg("очистка завершена")
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Cleanup completed",
		"uploads": len(staleUploads),
		"videos":  len(staleVideos),
	})
}

// statusFor maps a render failure kind to an HTTP status.
func statusFor(kind ffmpeg.Kind) int {
	switch kind {
	case ffmpeg.KindInvalidRequest:
		return http.StatusBadRequest
	case ffmpeg.KindDurationUnresolvable:
		return http.StatusUnprocessableEntity
	case ffmpeg.KindInsufficientSpace, ffmpeg.KindOutOfSpace:
		return http.StatusInsufficientStorage
	case ffmpeg.KindEngineMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondRenderError(w http.ResponseWriter, err error) {
	kind := ffmpeg.KindOf(err)
	body := map[string]string{"error": err.Error(), "kind": kind.String()}

	var fe *ffmpeg.Error
	if errors.As(err, &fe) && fe.Stderr != "" {
		body["details"] = fe.Tail(10)
	}
	respondJSON(w, statusFor(kind), body)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
