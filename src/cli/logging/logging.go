// Package logging holds the single logger every pipeline phase and command
// shares. lumenplan is a one-shot planner, not a long-running interactive
// build: there is no progress display contending for terminal rows, so this
// stays a thin wrapper over go-logging rather than a custom backend.
package logging

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/op/go-logging.v1"
)

// Log is the singleton logger instance, shared by every package so a single
// verbosity setting governs the whole pipeline.
var Log = logging.MustGetLogger("lumen")

// Level is a re-export of the library type, used by flag structs that want
// to parse a verbosity from the command line without importing go-logging
// directly.
type Level = logging.Level

// Re-exports of the levels this module's phases actually emit, from Debug
// (lock acquisition) up through Error (fatal per-package discovery
// failures).
const (
	CRITICAL = logging.CRITICAL
	ERROR    = logging.ERROR
	WARNING  = logging.WARNING
	NOTICE   = logging.NOTICE
	INFO     = logging.INFO
	DEBUG    = logging.DEBUG
)

// ParseLevel parses one of the names in the constants above, case
// insensitively, for a front-end command's verbosity flag.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "critical":
		return CRITICAL, nil
	case "error":
		return ERROR, nil
	case "warning":
		return WARNING, nil
	case "notice":
		return NOTICE, nil
	case "info":
		return INFO, nil
	case "debug":
		return DEBUG, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// InitVerbosity sets the process-wide log level and points output at
// stderr with a plain formatter, regardless of whether stderr is a
// terminal: a dry run's action graph goes to stdout, so stderr is left free
// for log lines a caller may want to grep or redirect to a file.
func InitVerbosity(level Level) {
	formatter := logging.MustStringFormatter("%{time:15:04:05.000} %{level:7s}: %{message}")
	backend := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), formatter)
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
}
