package download

import "github.com/glorpus-work/modlist/pkg/model"

// State is a step of one download.
type State string

const (
	StateStart        State = "start"
	StateResolving    State = "resolving"
	StateTransferring State = "transferring"
	StateVerifying    State = "verifying"
	StateVerified     State = "verified"
	StateFailed       State = "failed"
)

// ExistingPolicy decides what happens when the target file is already on disk.
type ExistingPolicy int

const (
	// ExistingFail leaves the file alone and fails the transfer.
	ExistingFail ExistingPolicy = iota
	// ExistingRepair keeps the file if its hash matches and downloads it again otherwise.
	ExistingRepair
	// ExistingReplace removes the file and downloads it again.
	ExistingReplace
)

func (p ExistingPolicy) String() string {
	switch p {
	case ExistingRepair:
		return "repair"
	case ExistingReplace:
		return "replace"
	default:
		return "fail"
	}
}

// Options control a single download.
type Options struct {
	Existing ExistingPolicy
}

// Event is a state transition of one download.
type Event struct {
	State    State
	FileName string
	Msg      string
	Err      error // set for StateFailed
}

// Hooks carries callbacks for download events.
type Hooks struct {
	OnEvent    func(Event)
	OnProgress func(fileName string, p model.Progress)
}

// Result describes a verified file.
type Result struct {
	FileName     string // descriptor file name
	Path         string // absolute location on disk
	Kind         model.SourceKind
	Verification model.Verification
	Reused       bool // true when an existing file passed verification and nothing was transferred
}
