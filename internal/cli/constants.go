package cli

// Default values for CLI output.
const (
	// TabWidth is the width of tabs in formatted output.
	TabWidth = 2
	// DefaultTerminalWidth is used when the output is not a terminal.
	DefaultTerminalWidth = 80
	// MinLabelWidth and MaxLabelWidth bound the file name column of progress lines.
	MinLabelWidth = 12
	MaxLabelWidth = 40
	// ProgressBarWidth is the width of the bar itself, excluding label and counters.
	ProgressBarWidth = 30
	// LabelEllipsis marks a truncated file name.
	LabelEllipsis = "~~"
)
