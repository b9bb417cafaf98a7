package fsadapter

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
)

// FSAdapter is the filesystem side of the mirror: directory bookkeeping and
// file creation for the crawl and download phases.
type FSAdapter struct {
	fs  afero.Fs
	log *slog.Logger
}

func NewFSAdapter(log *slog.Logger) *FSAdapter {
	return NewFSAdapterWithFS(afero.NewOsFs(), log)
}

func NewFSAdapterWithFS(fs afero.Fs, log *slog.Logger) *FSAdapter {
	return &FSAdapter{
		fs:  fs,
		log: log.With(slog.String("item", "FSAdapter")),
	}
}

// EnsureDir creates the directory if it does not exist yet.
func (a *FSAdapter) EnsureDir(path string) error {
	exists, err := afero.DirExists(a.fs, path)
	if err != nil {
		return fmt.Errorf("cannot stat directory %s: %w", path, err)
	}

	if exists {
		return nil
	}

	if err := a.fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", path, err)
	}

	a.log.Debug("Created directory", slog.String("path", path))

	return nil
}

// FileExists is the sole dedup mechanism of the crawl: a file whose local
// path already exists is never queued for download.
func (a *FSAdapter) FileExists(path string) bool {
	exists, err := afero.Exists(a.fs, path)
	if err != nil {
		a.log.Error("Cannot stat file", slog.String("path", path), slog.Any("error", err))

		return false
	}

	return exists
}

// Create creates or truncates the file at path.
func (a *FSAdapter) Create(path string) (afero.File, error) {
	f, err := a.fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create file %s: %w", path, err)
	}

	return f, nil
}
