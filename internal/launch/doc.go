// Package launch hands the process over to the long-running service after a
// successful migration. ExecLauncher replaces the current process image so
// external process managers observe the service directly; SuperviseLauncher
// is the functional equivalent for setups where exec is unavailable: it
// spawns the service as a child, forwards signals, and exits with the
// child's exit code.
package launch
