package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/spf13/afero"

	"github.com/jgivc/coursemirror/internal/entity"
	"github.com/jgivc/coursemirror/internal/progress"
)

const copyBufferSize = 32 * 1024

type FileClient interface {
	HeadSize(ctx context.Context, url string) (int64, error)
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

type Filesystem interface {
	Create(path string) (afero.File, error)
}

// Slice is one worker's contiguous range of the finalized file list.
type Slice struct {
	Start int
	End   int
}

// Partition splits n items into w contiguous, non-overlapping slices whose
// sizes differ by at most one and which cover [0, n) exactly once. The first
// n%w slices carry the remainder.
func Partition(n, w int) []Slice {
	minWork := n / w
	extra := n % w

	slices := make([]Slice, 0, w)
	start := 0
	for i := 0; i < w; i++ {
		work := minWork
		if i < extra {
			work++
		}

		slices = append(slices, Slice{Start: start, End: start + work})
		start += work
	}

	return slices
}

// Downloader drains the finalized file list across a fixed worker pool. Each
// worker owns its slice exclusively and downloads it sequentially, so the
// download phase needs no locking.
type Downloader struct {
	client   FileClient
	fs       Filesystem
	reporter *progress.Reporter
	workers  int
	log      *slog.Logger
}

func New(client FileClient, fs Filesystem, reporter *progress.Reporter, workers int, log *slog.Logger) *Downloader {
	return &Downloader{
		client:   client,
		fs:       fs,
		reporter: reporter,
		workers:  workers,
		log:      log.With(slog.String("item", "Downloader")),
	}
}

// Run downloads every file in the list. A failed HEAD skips that one file; a
// failure mid-GET or on local write aborts the rest of that worker's slice.
// Run waits for every worker and returns the joined worker failures, if any.
func (d *Downloader) Run(ctx context.Context, files []entity.File) error {
	if len(files) == 0 {
		return nil
	}

	workerErrs := make([]error, d.workers)

	var wg sync.WaitGroup
	for n, slice := range Partition(len(files), d.workers) {
		wg.Add(1)
		go func(n int, slice Slice) {
			defer wg.Done()
			workerErrs[n] = d.runSlice(ctx, n, files[slice.Start:slice.End])
		}(n, slice)
	}

	wg.Wait()
	d.reporter.Wait()

	return errors.Join(workerErrs...)
}

func (d *Downloader) runSlice(ctx context.Context, n int, files []entity.File) error {
	log := d.log.With(slog.Int("worker_id", n))

	for _, file := range files {
		size, err := d.client.HeadSize(ctx, file.URL)
		if err != nil {
			log.Error("Failed to download",
				slog.String("filename", file.Filename), slog.String("url", file.URL), slog.Any("error", err))

			continue
		}

		if err := d.downloadFile(ctx, file, size); err != nil {
			return fmt.Errorf("worker %d: %w", n, err)
		}
	}

	return nil
}

func (d *Downloader) downloadFile(ctx context.Context, file entity.File, size int64) error {
	tracker := d.reporter.Track(fmt.Sprintf("Downloading %s to %s", file.Filename, file.FilePath), size)

	out, err := d.fs.Create(file.FilePath)
	if err != nil {
		tracker.Abort()

		return err
	}
	defer out.Close()

	body, err := d.client.Download(ctx, file.URL)
	if err != nil {
		tracker.Abort()

		return err
	}
	defer body.Close()

	// Progress counts bytes written to disk, not bytes received.
	buf := make([]byte, copyBufferSize)
	for {
		nr, rerr := body.Read(buf)
		if nr > 0 {
			nw, werr := out.Write(buf[:nr])
			tracker.Add(nw)
			if werr != nil {
				tracker.Abort()

				return fmt.Errorf("cannot write %s: %w", file.FilePath, werr)
			}
			if nw < nr {
				tracker.Abort()

				return fmt.Errorf("cannot write %s: %w", file.FilePath, io.ErrShortWrite)
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			tracker.Abort()

			return fmt.Errorf("cannot read %s: %w", file.URL, rerr)
		}
	}

	tracker.Done()

	return nil
}
