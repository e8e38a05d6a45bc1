package fsutil

import "os"

// File and directory permission constants.
const (
	// Default file modes.
	FileModeDefault os.FileMode = 0o644 // -rw-r--r--: Default for regular files
	FileModeSecure  os.FileMode = 0o600 // -rw-------: For files holding credentials

	// Directory modes.
	DirModeDefault os.FileMode = 0o755 // drwxr-xr-x: Default for directories
)

const (
	// AppName is the name of the application used in paths
	AppName = "modlist"
)
