package downloader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgivc/coursemirror/internal/common"
	"github.com/jgivc/coursemirror/internal/entity"
	"github.com/jgivc/coursemirror/internal/fsadapter"
	"github.com/jgivc/coursemirror/internal/progress"
)

func TestPartition(t *testing.T) {
	testCases := []struct {
		name     string
		n        int
		w        int
		expected []Slice
	}{
		{
			name: "seven files three workers",
			n:    7, w: 3,
			expected: []Slice{{0, 3}, {3, 5}, {5, 7}},
		},
		{
			name: "even split",
			n:    6, w: 3,
			expected: []Slice{{0, 2}, {2, 4}, {4, 6}},
		},
		{
			name: "no files",
			n:    0, w: 4,
			expected: []Slice{{0, 0}, {0, 0}, {0, 0}, {0, 0}},
		},
		{
			name: "more workers than files",
			n:    2, w: 4,
			expected: []Slice{{0, 1}, {1, 2}, {2, 2}, {2, 2}},
		},
		{
			name: "single worker",
			n:    5, w: 1,
			expected: []Slice{{0, 5}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Partition(tc.n, tc.w))
		})
	}
}

func TestPartitionProperties(t *testing.T) {
	for n := 0; n <= 20; n++ {
		for w := 1; w <= 8; w++ {
			slices := Partition(n, w)
			require.Len(t, slices, w)

			prev := 0
			for _, s := range slices {
				require.Equal(t, prev, s.Start, "n=%d w=%d: slices must be contiguous", n, w)
				require.GreaterOrEqual(t, s.End, s.Start)
				require.LessOrEqual(t, s.End-s.Start, n/w+1, "n=%d w=%d: sizes differ by more than one", n, w)
				prev = s.End
			}
			require.Equal(t, n, prev, "n=%d w=%d: slices must cover the whole list", n, w)
		}
	}
}

type fakeFileClient struct {
	sizes    map[string]int64
	headErrs map[string]error
	bodies   map[string]io.Reader
}

func (c *fakeFileClient) HeadSize(_ context.Context, url string) (int64, error) {
	if err, exists := c.headErrs[url]; exists {
		return 0, err
	}

	return c.sizes[url], nil
}

func (c *fakeFileClient) Download(_ context.Context, url string) (io.ReadCloser, error) {
	body, exists := c.bodies[url]
	if !exists {
		return nil, fmt.Errorf("cannot reach %s: no route to host", url)
	}

	return io.NopCloser(body), nil
}

// brokenReader yields its prefix, then fails.
type brokenReader struct {
	prefix io.Reader
}

func (r *brokenReader) Read(p []byte) (int, error) {
	n, err := r.prefix.Read(p)
	if err == io.EOF {
		return n, fmt.Errorf("connection reset")
	}

	return n, err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestDownloader(client FileClient, fs afero.Fs, workers int) *Downloader {
	fsa := fsadapter.NewFSAdapterWithFS(fs, testLogger())

	return New(client, fsa, progress.NewReporter(io.Discard), workers, testLogger())
}

func TestRunDownloadsEveryFile(t *testing.T) {
	content := strings.Repeat("x", 100)
	client := &fakeFileClient{
		sizes: map[string]int64{
			"u/a.pdf": 100,
			"u/b.pdf": 5,
			"u/c.pdf": 0, // content-length absent, degraded progress only
		},
		bodies: map[string]io.Reader{
			"u/a.pdf": strings.NewReader(content),
			"u/b.pdf": strings.NewReader("hello"),
			"u/c.pdf": strings.NewReader("data"),
		},
	}

	files := []entity.File{
		{Filename: "a.pdf", URL: "u/a.pdf", FilePath: "CS101/a.pdf"},
		{Filename: "b.pdf", URL: "u/b.pdf", FilePath: "CS101/b.pdf"},
		{Filename: "c.pdf", URL: "u/c.pdf", FilePath: "CS101/c.pdf"},
	}

	fs := afero.NewMemMapFs()
	dl := newTestDownloader(client, fs, 2)

	require.NoError(t, dl.Run(context.Background(), files))

	data, err := afero.ReadFile(fs, "CS101/a.pdf")
	require.NoError(t, err)
	require.Len(t, data, 100)
	require.Equal(t, content, string(data))

	data, err = afero.ReadFile(fs, "CS101/b.pdf")
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	data, err = afero.ReadFile(fs, "CS101/c.pdf")
	require.NoError(t, err)
	require.Equal(t, "data", string(data))
}

func TestRunSkipsFileOnHeadFailure(t *testing.T) {
	client := &fakeFileClient{
		sizes: map[string]int64{"u/b.pdf": 5},
		headErrs: map[string]error{
			"u/a.pdf": fmt.Errorf("%w: 404 at u/a.pdf", common.ErrUnexpectedStatus),
		},
		bodies: map[string]io.Reader{
			"u/b.pdf": strings.NewReader("hello"),
		},
	}

	files := []entity.File{
		{Filename: "a.pdf", URL: "u/a.pdf", FilePath: "CS101/a.pdf"},
		{Filename: "b.pdf", URL: "u/b.pdf", FilePath: "CS101/b.pdf"},
	}

	fs := afero.NewMemMapFs()
	dl := newTestDownloader(client, fs, 1)

	// A failed HEAD skips that one file and the slice continues.
	require.NoError(t, dl.Run(context.Background(), files))

	exists, err := afero.Exists(fs, "CS101/a.pdf")
	require.NoError(t, err)
	require.False(t, exists)

	data, err := afero.ReadFile(fs, "CS101/b.pdf")
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestRunMidStreamFailureAbortsSliceOnly(t *testing.T) {
	client := &fakeFileClient{
		sizes: map[string]int64{"u/a.pdf": 100, "u/b.pdf": 5},
		bodies: map[string]io.Reader{
			"u/a.pdf": &brokenReader{prefix: strings.NewReader("partial")},
			"u/b.pdf": strings.NewReader("hello"),
		},
	}

	files := []entity.File{
		{Filename: "a.pdf", URL: "u/a.pdf", FilePath: "CS101/a.pdf"},
		{Filename: "b.pdf", URL: "u/b.pdf", FilePath: "CS101/b.pdf"},
	}

	fs := afero.NewMemMapFs()
	dl := newTestDownloader(client, fs, 2)

	err := dl.Run(context.Background(), files)
	require.Error(t, err)
	require.Contains(t, err.Error(), "u/a.pdf")

	// The other worker's slice still completed.
	data, rerr := afero.ReadFile(fs, "CS101/b.pdf")
	require.NoError(t, rerr)
	require.Equal(t, "hello", string(data))
}

func TestRunEmptyList(t *testing.T) {
	fs := afero.NewMemMapFs()
	dl := newTestDownloader(&fakeFileClient{}, fs, 4)

	require.NoError(t, dl.Run(context.Background(), nil))
}
