package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/glorpus-work/modlist/pkg/download"
	"github.com/glorpus-work/modlist/pkg/model"
	"github.com/mattn/go-runewidth"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// progressRenderer draws one progress bar per running download and a status
// line once the download is verified or has failed.
type progressRenderer struct {
	mu       sync.Mutex
	w        io.Writer
	width    int
	bar      *progressbar.ProgressBar
	fraction float64
	done     *color.Color
	failed   *color.Color
}

func newProgressRenderer(w io.Writer, colorOutput bool) *progressRenderer {
	r := &progressRenderer{
		w:      w,
		width:  terminalWidth(w),
		done:   color.New(color.FgGreen, color.Bold),
		failed: color.New(color.FgRed, color.Bold),
	}
	if !colorOutput {
		r.done.DisableColor()
		r.failed.DisableColor()
	}
	return r
}

// Hooks returns download hooks that feed the renderer.
func (r *progressRenderer) Hooks() download.Hooks {
	return download.Hooks{
		OnEvent:    r.onEvent,
		OnProgress: r.onProgress,
	}
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return DefaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return width
}

// labelWidth is the room left for the file name next to the bar and the status.
func labelWidth(termWidth int) int {
	w := termWidth - ProgressBarWidth - len(" 100% FAILED") - 2*TabWidth
	return min(max(w, MinLabelWidth), MaxLabelWidth)
}

// fitLabel truncates label with LabelEllipsis or pads it with spaces so that
// it occupies exactly width terminal cells.
func fitLabel(label string, width int) string {
	if runewidth.StringWidth(label) > width {
		return runewidth.Truncate(label, width, LabelEllipsis)
	}
	return runewidth.FillRight(label, width)
}

// percent formats f as a whole percentage padded to four cells.
func percent(f float64) string {
	return fmt.Sprintf("%4s", fmt.Sprintf("%d%%", int(f*100)))
}

func (r *progressRenderer) onEvent(e download.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.State {
	case download.StateStart, download.StateTransferring:
		r.fraction = 0
	case download.StateVerified:
		r.finishBar()
		r.fraction = 1
		r.statusLine(e.FileName, r.done.Sprint("Done"))
	case download.StateFailed:
		r.finishBar()
		r.statusLine(e.FileName, r.failed.Sprint("FAILED"))
	}
}

func (r *progressRenderer) onProgress(fileName string, p model.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.BytesTotal <= 0 {
		return
	}
	if r.bar == nil {
		r.bar = progressbar.NewOptions64(p.BytesTotal,
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetWidth(ProgressBarWidth),
			progressbar.OptionSetDescription(fitLabel(fileName, labelWidth(r.width))),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
	}
	r.bar.ChangeMax64(p.BytesTotal)
	_ = r.bar.Set64(p.BytesDone)
	r.fraction = p.Fraction()
}

func (r *progressRenderer) finishBar() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
	r.bar = nil
}

func (r *progressRenderer) statusLine(fileName, status string) {
	_, _ = fmt.Fprintf(r.w, "%s %s %s\n", fitLabel(fileName, labelWidth(r.width)), percent(r.fraction), status)
}
