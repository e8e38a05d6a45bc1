package cli

import (
	"bytes"
	goerrors "errors"
	"strings"
	"testing"

	"github.com/glorpus-work/modlist/pkg/download"
	"github.com/glorpus-work/modlist/pkg/model"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestFitLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		width int
		want  string
	}{
		{name: "pads short label", label: "a.7z", width: 8, want: "a.7z    "},
		{name: "exact width", label: "abcd", width: 4, want: "abcd"},
		{name: "truncates long label", label: "SkyUI_5_2_SE-12604-5-2SE.7z", width: 10, want: "SkyUI_5_~~"},
		{name: "wide runes", label: "日本語のファイル.zip", width: 8, want: "日本語~~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fitLabel(tt.label, tt.width)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.width, runewidth.StringWidth(got))
		})
	}
}

func TestLabelWidth(t *testing.T) {
	assert.Equal(t, MinLabelWidth, labelWidth(10))
	assert.Equal(t, MaxLabelWidth, labelWidth(500))
	w := labelWidth(DefaultTerminalWidth)
	assert.GreaterOrEqual(t, w, MinLabelWidth)
	assert.LessOrEqual(t, w, MaxLabelWidth)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "  0%", percent(0))
	assert.Equal(t, " 42%", percent(0.425))
	assert.Equal(t, "100%", percent(1))
}

func TestProgressRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressRenderer(&buf, false)
	hooks := r.Hooks()

	hooks.OnEvent(download.Event{State: download.StateStart, FileName: "a.7z"})
	hooks.OnEvent(download.Event{State: download.StateTransferring, FileName: "a.7z"})
	hooks.OnProgress("a.7z", model.Progress{BytesDone: 50, BytesTotal: 100})
	hooks.OnProgress("a.7z", model.Progress{BytesDone: 100, BytesTotal: 100})
	hooks.OnEvent(download.Event{State: download.StateVerifying, FileName: "a.7z"})
	hooks.OnEvent(download.Event{State: download.StateVerified, FileName: "a.7z"})

	hooks.OnEvent(download.Event{State: download.StateTransferring, FileName: "b.zip"})
	hooks.OnProgress("b.zip", model.Progress{BytesDone: 25, BytesTotal: 100})
	hooks.OnEvent(download.Event{State: download.StateFailed, FileName: "b.zip", Err: goerrors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, fitLabel("a.7z", labelWidth(DefaultTerminalWidth))+" 100% Done\n")
	assert.Contains(t, out, fitLabel("b.zip", labelWidth(DefaultTerminalWidth))+"  25% FAILED\n")
	assert.Nil(t, r.bar)
}

func TestProgressRenderer_NoColorCodes(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressRenderer(&buf, false)
	r.onEvent(download.Event{State: download.StateVerified, FileName: "a.7z"})

	assert.False(t, strings.Contains(buf.String(), "\x1b["))
}

func TestProgressRenderer_FailureBeforeTransferShowsZero(t *testing.T) {
	var buf bytes.Buffer
	r := newProgressRenderer(&buf, false)
	hooks := r.Hooks()

	hooks.OnEvent(download.Event{State: download.StateStart, FileName: "a.7z"})
	hooks.OnProgress("a.7z", model.Progress{BytesDone: 100, BytesTotal: 100})
	hooks.OnEvent(download.Event{State: download.StateVerified, FileName: "a.7z"})

	hooks.OnEvent(download.Event{State: download.StateStart, FileName: "b.7z"})
	hooks.OnEvent(download.Event{State: download.StateResolving, FileName: "b.7z"})
	hooks.OnEvent(download.Event{State: download.StateFailed, FileName: "b.7z", Err: goerrors.New("not found")})

	assert.Contains(t, buf.String(), fitLabel("b.7z", labelWidth(DefaultTerminalWidth))+"   0% FAILED\n")
}
