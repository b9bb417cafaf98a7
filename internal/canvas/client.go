package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tomnomnom/linkheader"

	"github.com/jgivc/coursemirror/internal/common"
	"github.com/jgivc/coursemirror/internal/entity"
)

const coursesPath = "/api/v1/courses"

// Client talks to the Canvas-style REST API. All requests carry bearer
// authentication; listings follow Link rel="next" headers until exhausted.
type Client struct {
	hc      *http.Client
	baseURL string
	token   string
	log     *slog.Logger
}

func NewClient(baseURL, token string, log *slog.Logger) *Client {
	return NewClientWithHTTP(http.DefaultClient, baseURL, token, log)
}

func NewClientWithHTTP(hc *http.Client, baseURL, token string, log *slog.Logger) *Client {
	return &Client{
		hc:      hc,
		baseURL: baseURL,
		token:   token,
		log:     log.With(slog.String("item", "CanvasClient")),
	}
}

// CoursesLink is the account-level course listing.
func (c *Client) CoursesLink() string {
	return c.baseURL + coursesPath
}

// CourseFoldersLink lists the root folder of a course.
func (c *Client) CourseFoldersLink(courseID int64) string {
	return fmt.Sprintf("%s/%d/folders/by_path/", c.CoursesLink(), courseID)
}

// ListCourses returns the account's courses. The API reports inaccessible
// courses as null entries; those come back as nil pointers for the caller to
// skip.
func (c *Client) ListCourses(ctx context.Context) ([]*entity.Course, error) {
	var courses []*entity.Course

	err := c.forEachPage(ctx, c.CoursesLink(), func(data []byte) error {
		var page []*entity.Course
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("%w: link: %s: %v", common.ErrDecodeResponse, c.CoursesLink(), err)
		}

		courses = append(courses, page...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func (c *Client) ListFolders(ctx context.Context, link string) ([]entity.Folder, error) {
	var folders []entity.Folder

	err := c.forEachPage(ctx, link, func(data []byte) error {
		var page []entity.Folder
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("%w: link: %s: %v", common.ErrDecodeResponse, link, err)
		}

		folders = append(folders, page...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return folders, nil
}

func (c *Client) ListFiles(ctx context.Context, link string) ([]entity.File, error) {
	var files []entity.File

	err := c.forEachPage(ctx, link, func(data []byte) error {
		var page []entity.File
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("%w: link: %s: %v", common.ErrDecodeResponse, link, err)
		}

		files = append(files, page...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// HeadSize issues a header-only request and reads the expected download size
// from content-length. A missing or unparseable header yields zero, which is
// degraded progress display, not an error.
func (c *Client) HeadSize(ctx context.Context, url string) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("cannot reach %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("%w: %d at %s", common.ErrUnexpectedStatus, resp.StatusCode, url)
	}

	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil || size < 0 {
		return 0, nil
	}

	return size, nil
}

// Download issues the full GET for a file and returns the body stream. The
// caller owns the stream and must close it.
func (c *Client) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot reach %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()

		return nil, fmt.Errorf("%w: %d at %s", common.ErrUnexpectedStatus, resp.StatusCode, url)
	}

	return resp.Body, nil
}

// forEachPage fetches link and every rel="next" page after it, handing each
// raw body to decode. A request that cannot complete is a transport error and
// returned as-is; a non-success status is recoverable like a decode failure,
// the server answered but not with a listing.
func (c *Client) forEachPage(ctx context.Context, link string, decode func(data []byte) error) error {
	for link != "" {
		req, err := c.newRequest(ctx, http.MethodGet, link)
		if err != nil {
			return err
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			return fmt.Errorf("cannot reach %s: %w", link, err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("cannot read response from %s: %w", link, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%w: %d at %s", common.ErrUnexpectedStatus, resp.StatusCode, link)
		}

		if err := decode(data); err != nil {
			return err
		}

		link = nextLink(resp.Header.Get("Link"))
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot create request for %s: %w", url, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	return req, nil
}

func nextLink(header string) string {
	for _, l := range linkheader.Parse(header).FilterByRel("next") {
		return l.URL
	}

	return ""
}
