package transfer

import (
	"bytes"
	"context"
	goerrors "errors"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glorpus-work/modlist/pkg/errors"
	"github.com/glorpus-work/modlist/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader returns its data in reads of the given sizes.
type chunkReader struct {
	data  []byte
	sizes []int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := len(r.data)
	if len(r.sizes) > 0 {
		n = min(r.sizes[0], n)
		r.sizes = r.sizes[1:]
	}
	n = copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, fs.ErrPermission }

func collect(events *[]int64) func(model.Progress) {
	return func(p model.Progress) { *events = append(*events, p.BytesDone) }
}

func TestCopyChunks_ProgressSequence(t *testing.T) {
	src := &chunkReader{data: bytes.Repeat([]byte("x"), 1000), sizes: []int{300, 300, 300, 100}}
	var dst bytes.Buffer
	var events []int64

	written, err := copyChunks(context.Background(), &dst, src, 1000, DefaultChunkSize, collect(&events))
	require.Nil(t, err)
	assert.EqualValues(t, 1000, written)
	assert.Equal(t, []int64{300, 600, 900, 1000}, events)
	assert.Equal(t, 1000, dst.Len())
}

func TestCopyChunks_ClampsToTotal(t *testing.T) {
	src := &chunkReader{data: bytes.Repeat([]byte("x"), 600), sizes: []int{300, 300}}
	var events []int64

	written, err := copyChunks(context.Background(), io.Discard, src, 500, DefaultChunkSize, collect(&events))
	require.Nil(t, err)
	assert.EqualValues(t, 600, written)
	assert.Equal(t, []int64{300, 500}, events)
}

func TestCopyChunks_ReportsTotalAndRate(t *testing.T) {
	src := &chunkReader{data: []byte("abcd")}
	var last model.Progress

	_, err := copyChunks(context.Background(), io.Discard, src, 4, 2, func(p model.Progress) { last = p })
	require.Nil(t, err)
	assert.EqualValues(t, 4, last.BytesDone)
	assert.EqualValues(t, 4, last.BytesTotal)
	assert.GreaterOrEqual(t, last.Rate, 0.0)
	assert.InDelta(t, 1.0, last.Fraction(), 1e-9)
}

func TestCopyChunks_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &chunkReader{data: bytes.Repeat([]byte("x"), 1000), sizes: []int{100, 100, 100}}
	var events []int64

	_, err := copyChunks(ctx, io.Discard, src, 1000, DefaultChunkSize, func(p model.Progress) {
		events = append(events, p.BytesDone)
		cancel()
	})
	require.NotNil(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, errors.ErrNetwork)
	assert.Equal(t, []int64{100}, events)
}

func TestCopyChunks_WriteError(t *testing.T) {
	_, err := copyChunks(context.Background(), failingWriter{}, &chunkReader{data: []byte("abc")}, 3, 8, nil)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, errors.ErrIO)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestCopyChunks_ReadError(t *testing.T) {
	_, err := copyChunks(context.Background(), io.Discard, io.MultiReader(&chunkReader{data: []byte("ab")}, errReader{}), 10, 8, nil)
	require.NotNil(t, err)
	assert.ErrorIs(t, err, errors.ErrNetwork)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func serveBody(body []byte, requests *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requests != nil {
			requests.Add(1)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		_, _ = w.Write(body)
	}
}

func TestStreamToFile(t *testing.T) {
	body := bytes.Repeat([]byte("0123456789"), 100)
	var gotKey, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("apikey")
		gotUA = r.Header.Get("User-Agent")
		serveBody(body, nil)(w, r)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "a.7z")
	var events []model.Progress
	c := NewClient(time.Second, 300)

	err := c.StreamToFile(context.Background(), server.URL, http.Header{"Apikey": {"secret"}}, dest,
		func(p model.Progress) { events = append(events, p) })
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, body, data)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "modlist/1.0", gotUA)

	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].BytesDone, events[i-1].BytesDone)
	}
	assert.EqualValues(t, len(body), events[len(events)-1].BytesDone)
	assert.EqualValues(t, len(body), events[len(events)-1].BytesTotal)
}

func TestStreamToFile_ZeroLengthBody(t *testing.T) {
	server := httptest.NewServer(serveBody(nil, nil))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, NewClient(time.Second, 0).StreamToFile(context.Background(), server.URL, nil, dest, nil))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestStreamToFile_DestinationExists(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(serveBody([]byte("new content"), &requests))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "a.7z")
	require.NoError(t, os.WriteFile(dest, []byte("old"), 0o644))

	err := NewClient(time.Second, 0).StreamToFile(context.Background(), server.URL, nil, dest, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDestinationExists)
	assert.ErrorIs(t, err, fs.ErrExist)
	assert.ErrorIs(t, err, errors.ErrIO)
	assert.Zero(t, requests.Load(), "no request may be sent for an existing destination")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestStreamToFile_MissingContentLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("streamed"))
		w.(http.Flusher).Flush()
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "a.7z")
	err := NewClient(time.Second, 0).StreamToFile(context.Background(), server.URL, nil, dest, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSizeUnknown)

	_, statErr := os.Stat(dest)
	assert.True(t, goerrors.Is(statErr, fs.ErrNotExist), "no file may be created")
}

func TestStreamToFile_UnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "a.7z")
	err := NewClient(time.Second, 0).StreamToFile(context.Background(), server.URL, nil, dest, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNetwork)
	assert.Contains(t, err.Error(), "unexpected status code: 404")

	var transferErr *Error
	require.True(t, goerrors.As(err, &transferErr))
	assert.Equal(t, server.URL, transferErr.URL)

	_, statErr := os.Stat(dest)
	assert.True(t, goerrors.Is(statErr, fs.ErrNotExist))
}

func TestStreamToFile_ShortBodyLeavesPartialFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write(bytes.Repeat([]byte("x"), 400))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "a.7z")
	err := NewClient(time.Second, 0).StreamToFile(context.Background(), server.URL, nil, dest, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNetwork)

	info, statErr := os.Stat(dest)
	require.NoError(t, statErr, "partial file stays on disk")
	assert.EqualValues(t, 400, info.Size())
}

func TestStreamToFile_CanceledContext(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(serveBody([]byte("content"), &requests))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "a.7z")
	err := NewClient(time.Second, 0).StreamToFile(ctx, server.URL, nil, dest, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNetwork)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient(t *testing.T) {
	c := NewClient(5*time.Second, 0)
	assert.Equal(t, DefaultChunkSize, c.chunkSize)

	transport, ok := c.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, transport.ResponseHeaderTimeout)
	assert.True(t, transport.DisableCompression)
	assert.Zero(t, c.client.Timeout)
}
