package core

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/google/shlex"
)

// ErrSpawn matches every *SpawnError via errors.Is.
var ErrSpawn = errors.New("spawn failure")

var errEmptyCommand = errors.New("empty command")

// Spawn failure reasons.
const (
	ReasonNotFound    = "command_not_found"
	ReasonParseFailed = "parse_failed"
	ReasonStartFailed = "start_failed"
)

// SpawnError reports a command that could not be started.
type SpawnError struct {
	Command string
	Reason  string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot run %q (%s): %v", e.Command, e.Reason, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

func (e *SpawnError) Is(target error) bool { return target == ErrSpawn }

func newSpawnError(command string, err error) *SpawnError {
	return &SpawnError{Command: command, Reason: classifyStartError(err), Err: err}
}

func classifyStartError(err error) string {
	if errors.Is(err, exec.ErrNotFound) {
		return ReasonNotFound
	}

	// On some platforms the underlying error is a PathError.
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return ReasonNotFound
	}

	return ReasonStartFailed
}

// Invocation is one command as it will be spawned.
type Invocation struct {
	Line     string
	Argv     []string
	Shell    bool
	ExitCode int
}

// NewInvocation prepares line for execution. On Windows the line goes to
// cmd.exe unchanged; elsewhere it is split with shell quoting rules and run
// without a shell.
func NewInvocation(line string) (*Invocation, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, &SpawnError{Command: line, Reason: ReasonParseFailed, Err: errEmptyCommand}
	}

	if runtime.GOOS == "windows" {
		return &Invocation{Line: line, Argv: []string{"cmd", "/C", line}, Shell: true}, nil
	}

	argv, err := shlex.Split(line)
	if err != nil {
		return nil, &SpawnError{Command: line, Reason: ReasonParseFailed, Err: err}
	}
	if len(argv) == 0 {
		return nil, &SpawnError{Command: line, Reason: ReasonParseFailed, Err: errEmptyCommand}
	}

	return &Invocation{Line: line, Argv: argv}, nil
}

// InvocationFromArgs wraps an already tokenized argument vector.
func InvocationFromArgs(argv []string) (*Invocation, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, &SpawnError{Reason: ReasonParseFailed, Err: errEmptyCommand}
	}
	return &Invocation{Line: strings.Join(argv, " "), Argv: argv}, nil
}

// FirstWord returns the program name a line would run, or "".
func FirstWord(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
