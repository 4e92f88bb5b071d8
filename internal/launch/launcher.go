package launch

import "errors"

// ErrEmptyCommand reports that there is no service command to start. An
// empty launch vector after a successful migration is a misconfiguration
// and must surface as a startup error, never a silent zero exit.
var ErrEmptyCommand = errors.New("launch command is empty")

// Launcher starts the long-running service process with the given argument
// vector. Implementations do not return on success: the service takes over
// the process (by image replacement or by the parent exiting with the
// child's exit code). A returned error always means the service was not
// started.
type Launcher interface {
	Launch(argv []string) error
}
