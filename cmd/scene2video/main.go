package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivlev/scene2video/internal/api"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/director"
	"github.com/ivlev/scene2video/internal/engine"
	"github.com/ivlev/scene2video/internal/logging"
	"github.com/ivlev/scene2video/internal/system"
)

const usage = `scene2video собирает видео из сцен (картинка + озвучка + подпись).

Команды:
  render  -storyboard board.yaml [-output name.mp4]   рендер по раскадровке
  init    -dir assets/ [-out board.yaml]             черновик раскадровки из папки
  serve                                               HTTP API

Общий флаг: -config config.yaml
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "render":
		err = runRender(ctx, os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "неизвестная команда %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr), nil
}

func runRender(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	configPtr := fs.String("config", "", "Путь к YAML-конфигу")
	boardPtr := fs.String("storyboard", "", "Путь к раскадровке (по умолчанию: самый свежий файл в input/storyboards/)")
	outputPtr := fs.String("output", "", "Имя итогового файла в OUTPUT_DIR (перекрывает output из раскадровки)")
	captionsPtr := fs.Bool("captions", true, "Накладывать подписи")
	fs.Parse(args)

	cfg, log, err := loadConfig(*configPtr)
	if err != nil {
		return err
	}

	boardPath := *boardPtr
	if boardPath == "" {
		boardPath, err = director.FindLatestStoryboard(director.DefaultStoryboardDir)
		if err != nil {
			return fmt.Errorf("%w. Положите раскадровку в %s", err, director.DefaultStoryboardDir)
		}
		log.Info().Str("storyboard", boardPath).Msg("[*] выбрана раскадровка")
	}

	sb, err := director.ReadStoryboard(boardPath)
	if err != nil {
		return fmt.Errorf("ошибка чтения раскадровки: %w", err)
	}
	req := sb.Request()
	if *outputPtr != "" {
		req.OutputFilename = *outputPtr
	}
	if !*captionsPtr {
		req.EnableCaptions = false
	}

	project, err := engine.NewVideoProject(ctx, cfg, log)
	if err != nil {
		return err
	}
	out, err := project.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("[+++] Успех! Видео: %s (%.2fs)\n", out.OutputPath, out.Duration)
	return nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dirPtr := fs.String("dir", "", "Папка с парами 01.png + 01.wav (и необязательным 01.txt)")
	outPtr := fs.String("out", "", "Куда сохранить раскадровку (по умолчанию: input/storyboards/storyboard_<время>.yaml)")
	fs.Parse(args)

	if *dirPtr == "" {
		return errors.New("укажите -dir")
	}
	sb, err := director.NewDirector().Draft(*dirPtr)
	if err != nil {
		return err
	}

	out := *outPtr
	if out == "" {
		out = director.GenerateStoryboardPath(director.DefaultStoryboardDir, time.Now())
	}

	// Пути в раскадровке относительны к её папке
	abs, err := filepath.Abs(*dirPtr)
	if err != nil {
		return err
	}
	outDir, err := filepath.Abs(filepath.Dir(out))
	if err != nil {
		return err
	}
	for i := range sb.Scenes {
		sb.Scenes[i].Image = relTo(outDir, filepath.Join(abs, sb.Scenes[i].Image))
		sb.Scenes[i].Audio = relTo(outDir, filepath.Join(abs, sb.Scenes[i].Audio))
	}

	if err := director.WriteStoryboard(sb, out); err != nil {
		return err
	}
	fmt.Printf("[+++] Раскадровка сохранена: %s (%d сцен)\n", out, len(sb.Scenes))
	return nil
}

func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPtr := fs.String("config", "", "Путь к YAML-конфигу")
	fs.Parse(args)

	cfg, log, err := loadConfig(*configPtr)
	if err != nil {
		return err
	}

	// Каждый рендер держит открытыми входы ffmpeg и загрузки
	system.RaiseFileLimit(2048, log)

	for _, d := range []string{cfg.OutputDir, cfg.UploadDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	startupCleanup(cfg, log)

	project, err := engine.NewVideoProject(ctx, cfg, log)
	if err != nil {
		return err
	}
	log.Info().Str("ffmpeg", project.Engine.Version(ctx)).Msg("[*] ffmpeg")

	h := api.NewHandler(project, cfg, log)
	router := api.NewRouter(h, api.RouterConfig{
		APIKey:      cfg.APIKey,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Bool("auth", cfg.APIKey != "").Msg("[*] API запущен")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("[*] остановка сервера")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startupCleanup drops every leftover upload and outputs older than OutputMaxAge.
func startupCleanup(cfg *config.Config, log zerolog.Logger) {
	now := time.Now()
	uploads, err := system.PruneOlderThan(cfg.UploadDir, 0, now)
	if err != nil {
		log.Warn().Err(err).Msg("не удалось очистить загрузки")
	}
	videos, err := system.PruneOlderThan(cfg.OutputDir, cfg.OutputMaxAge, now)
	if err != nil {
		log.Warn().Err(err).Msg("не удалось удалить старые видео")
	}
	log.Info().Int("uploads", len(uploads)).Int("videos", len(videos)).Msg("[*] стартовая очистка")
}
