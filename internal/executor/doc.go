// Package executor runs package manager commands for the pkgscripts CLI.
//
// Commands are passed as a single shell string and run through the
// platform shell (sh -c, or cmd /C on Windows) so that the exact text
// the user would type is what runs. Output is streamed to the caller's
// terminal while stderr is also captured for error reporting.
//
// A non-zero exit, a signal, or a failure to start the shell is reported
// as *model.ExecutionError.
package executor
