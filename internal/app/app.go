package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/jgivc/coursemirror/internal/canvas"
	"github.com/jgivc/coursemirror/internal/config"
	"github.com/jgivc/coursemirror/internal/crawler"
	"github.com/jgivc/coursemirror/internal/downloader"
	"github.com/jgivc/coursemirror/internal/fsadapter"
	"github.com/jgivc/coursemirror/internal/progress"
	"github.com/jgivc/coursemirror/internal/util"
)

// App runs a full mirror pass: crawl every course's folder tree into a shared
// download list, then drain that list across the worker pool.
type App struct {
	cfg *config.Config
	log *slog.Logger
}

func New(cfg *config.Config) *App {
	lo := &slog.HandlerOptions{}
	switch cfg.LogLevel {
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	default:
		lo.Level = slog.LevelInfo
	}

	return &App{
		cfg: cfg,
		log: slog.New(slog.NewTextHandler(os.Stderr, lo)),
	}
}

func (a *App) Run(ctx context.Context) error {
	return a.RunWithFS(ctx, afero.NewOsFs())
}

func (a *App) RunWithFS(ctx context.Context, fs afero.Fs) error {
	client := canvas.NewClient(a.cfg.BaseURL, a.cfg.Token, a.log)
	fsa := fsadapter.NewFSAdapterWithFS(fs, a.log)
	registry := crawler.NewRegistry()
	cr := crawler.New(client, fsa, registry, a.log)

	courses, err := client.ListCourses(ctx)
	if err != nil {
		return fmt.Errorf("cannot list courses: %w", err)
	}

	fmt.Println("Courses found:")
	for _, course := range courses {
		if course == nil {
			continue
		}

		fmt.Printf("  * %s - %s\n", course.CourseCode, course.Name)

		courseDir := filepath.Join(a.cfg.Destination, util.Sanitize(course.CourseCode))
		if err := fsa.EnsureDir(courseDir); err != nil {
			return err
		}

		if err := cr.Run(ctx, client.CourseFoldersLink(course.ID), courseDir); err != nil {
			return err
		}
	}

	files := registry.Snapshot()

	plural := "s"
	if len(files) == 1 {
		plural = ""
	}
	fmt.Printf("\nDownloading %d file%s\n", len(files), plural)

	reporter := progress.NewReporter(os.Stdout)
	dl := downloader.New(client, fsa, reporter, a.cfg.Workers, a.log)

	return dl.Run(ctx, files)
}
