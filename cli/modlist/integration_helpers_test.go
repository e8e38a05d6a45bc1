//go:build integration

package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCLI executes the root command with args and returns what it printed to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	cmd := newRootCmd()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())

	_ = w.Close()
	os.Stdout = oldStdout
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), err
}

// startFileServer serves files by name with an explicit Content-Length.
func startFileServer(t *testing.T, files map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeTempConfig writes a config with the given download directory next to path.
func writeTempConfig(t *testing.T, path, downloadDir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	yamlContent := "settings:\n" +
		"  download_dir: " + strings.ReplaceAll(downloadDir, "\\", "\\\\") + "\n" +
		"  http_timeout: 5s\n" +
		"  color_output: false\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))
}

// writeManifest writes a YAML manifest of direct downloads served by srv.
func writeManifest(t *testing.T, path, srvURL string, files map[string][]byte) {
	t.Helper()
	content := "name: test-list\ndownloads:\n"
	for name, body := range files {
		content += "  - file_name: " + name + "\n" +
			"    hash: " + sha256Hex(body) + "\n" +
			"    direct: {url: \"" + srvURL + "/" + name + "\"}\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
