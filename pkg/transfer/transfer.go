// Package transfer streams a remote file to a new local file, reporting
// progress after every chunk.
package transfer

import (
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/glorpus-work/modlist/internal/logger"
	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/glorpus-work/modlist/pkg/fsutil"
	"github.com/glorpus-work/modlist/pkg/model"
)

// DefaultChunkSize is the read buffer size used when none is configured.
const DefaultChunkSize = 32 * 1024

// Client downloads files over HTTP.
type Client struct {
	client    *http.Client
	userAgent string
	chunkSize int
}

// NewClient creates a transfer client. timeout bounds the wait for response
// headers only; the body is streamed until the context ends. A chunkSize <= 0
// selects DefaultChunkSize.
func NewClient(timeout time.Duration, chunkSize int) *Client {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	// Content-Length must describe the bytes written to disk.
	transport.DisableCompression = true

	return &Client{
		client:    &http.Client{Transport: transport},
		userAgent: "modlist/1.0",
		chunkSize: chunkSize,
	}
}

// StreamToFile downloads url into dest, which must not exist. header is added
// to the request and may be nil. onProgress, when set, receives a snapshot
// after every chunk. On failure a partially written dest is left in place.
func (c *Client) StreamToFile(ctx context.Context, url string, header http.Header, dest string, onProgress func(model.Progress)) error {
	exists, err := fsutil.Exists(dest)
	if err != nil {
		return &Error{Kind: errors.ErrIO, URL: url, Path: dest, Err: err}
	}
	if exists {
		return &Error{Kind: errors.ErrIO, URL: url, Path: dest, Err: errors.ErrDestinationExists}
	}

	resp, err := c.doRequest(ctx, url, header)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	total := resp.ContentLength
	if total < 0 {
		return &Error{Kind: errors.ErrSizeUnknown, URL: url, Path: dest}
	}

	f, err := fsutil.CreateExclusive(dest, fsutil.FileModeDefault)
	if err != nil {
		if goerrors.Is(err, fs.ErrExist) {
			err = errors.ErrDestinationExists
		}
		return &Error{Kind: errors.ErrIO, URL: url, Path: dest, Err: err}
	}

	logger.Debug("Transfer started", logger.Fields{"url": url, "path": dest, "size": total})
	written, cerr := copyChunks(ctx, f, resp.Body, total, c.chunkSize, onProgress)
	if cerr != nil {
		_ = f.Close()
		cerr.URL, cerr.Path = url, dest
		return cerr
	}
	if written < total {
		_ = f.Close()
		return &Error{
			Kind: errors.ErrNetwork, URL: url, Path: dest,
			Err: fmt.Errorf("%w: got %d of %d bytes", errors.ErrIncompleteTransfer, written, total),
		}
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return &Error{Kind: errors.ErrIO, URL: url, Path: dest, Err: errors.Wrap(err, "could not sync file")}
	}
	if err := f.Close(); err != nil {
		return &Error{Kind: errors.ErrIO, URL: url, Path: dest, Err: errors.Wrap(err, "could not close file")}
	}
	logger.Debug("Transfer finished", logger.Fields{"path": dest, "size": written})
	return nil
}

func (c *Client) doRequest(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &Error{Kind: errors.ErrNetwork, URL: url, Err: errors.Wrap(err, "failed to create request")}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: errors.ErrNetwork, URL: url, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &Error{Kind: errors.ErrNetwork, URL: url, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}
	return resp, nil
}

// copyChunks copies src to dst one buffer at a time. After each chunk is
// written it reports BytesDone clamped to total. The context is checked before
// every read.
func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, total int64, chunkSize int, onProgress func(model.Progress)) (int64, *Error) {
	buf := make([]byte, chunkSize)
	start := time.Now()
	var written, done int64

	for {
		if err := ctx.Err(); err != nil {
			return written, &Error{Kind: errors.ErrNetwork, Err: err}
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, &Error{Kind: errors.ErrIO, Err: errors.Wrap(werr, "could not write file")}
			}
			written += int64(n)
			done = min(done+int64(n), total)
			if onProgress != nil {
				onProgress(model.Progress{BytesDone: done, BytesTotal: total, Rate: rate(done, time.Since(start))})
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, &Error{Kind: errors.ErrNetwork, Err: rerr}
		}
	}
}

func rate(done int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(done) / elapsed.Seconds()
}
