package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/jgivc/coursemirror/internal/common"
	"github.com/jgivc/coursemirror/internal/entity"
	"github.com/jgivc/coursemirror/internal/util"
)

type TreeClient interface {
	ListFolders(ctx context.Context, link string) ([]entity.Folder, error)
	ListFiles(ctx context.Context, link string) ([]entity.File, error)
}

type Filesystem interface {
	EnsureDir(path string) error
	FileExists(path string) bool
}

// Crawler walks a course's folder tree and fills the registry with every
// reachable file that does not already exist locally. Sibling folders and a
// folder's files/subfolders are processed concurrently; the registry is the
// only shared mutable state.
type Crawler struct {
	client   TreeClient
	fs       Filesystem
	registry *Registry
	log      *slog.Logger
}

func New(client TreeClient, fs Filesystem, registry *Registry, log *slog.Logger) *Crawler {
	return &Crawler{
		client:   client,
		fs:       fs,
		registry: registry,
		log:      log.With(slog.String("item", "Crawler")),
	}
}

// Run crawls the folder tree rooted at link into parentDir. Recoverable
// listing errors are logged and their subtree skipped; transport errors abort
// the crawl.
func (c *Crawler) Run(ctx context.Context, link, parentDir string) error {
	return c.processFolders(ctx, link, parentDir)
}

func (c *Crawler) processFolders(ctx context.Context, link, parentDir string) error {
	folders, err := c.client.ListFolders(ctx, link)
	if err != nil {
		if common.Recoverable(err) {
			c.log.Error("Cannot list folders",
				slog.String("link", link), slog.String("path", parentDir), slog.Any("error", err))

			return nil
		}

		return fmt.Errorf("cannot list folders at %s: %w", link, err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	collect := func(err error) {
		if err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	}

	for _, folder := range folders {
		// A folder with no parent is the course root; its contents go
		// straight into the course directory instead of a nested copy.
		folderDir := parentDir
		if folder.ParentFolderID != nil {
			folderDir = filepath.Join(parentDir, util.Sanitize(folder.Name))
		}

		if err := c.fs.EnsureDir(folderDir); err != nil {
			collect(err)

			continue
		}

		wg.Add(2)
		go func(filesURL, dir string) {
			defer wg.Done()
			collect(c.processFiles(ctx, filesURL, dir))
		}(folder.FilesURL, folderDir)
		go func(foldersURL, dir string) {
			defer wg.Done()
			collect(c.processFolders(ctx, foldersURL, dir))
		}(folder.FoldersURL, folderDir)
	}

	wg.Wait()

	return errors.Join(errs...)
}

func (c *Crawler) processFiles(ctx context.Context, link, parentDir string) error {
	files, err := c.client.ListFiles(ctx, link)
	if err != nil {
		if common.Recoverable(err) {
			c.log.Error("Cannot list files",
				slog.String("link", link), slog.String("path", parentDir), slog.Any("error", err))

			return nil
		}

		return fmt.Errorf("cannot list files at %s: %w", link, err)
	}

	pending := make([]entity.File, 0, len(files))
	for _, file := range files {
		file.FilePath = filepath.Join(parentDir, util.Sanitize(file.Filename))

		if c.fs.FileExists(file.FilePath) {
			c.log.Debug("Skip existing file", slog.String("path", file.FilePath))

			continue
		}

		pending = append(pending, file)
	}

	c.registry.Append(pending)

	return nil
}
