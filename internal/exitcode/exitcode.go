package exitcode

import (
	"errors"
	"os"

	"github.com/spf13/pflag"
)

// Exit codes of the command-line tool
const (
	OK = 0

	// esbuild reported errors, or output couldn't be written
	BuildFailed = 1

	// The library or one of the files it references couldn't be found. This
	// is also used for command-line usage errors.
	Unresolved = 2

	// Two different workers would be written to the same file
	Collision = 3
)

// Coder is an interface to control what value Get returns.
type Coder interface {
	error
	ExitCode() int
}

// Get gets the exit code associated with an error. Cases:
//
//	nil => 0
//	errors implementing Coder => value returned by ExitCode
//	pflag.ErrHelp => 2
//	all other errors => 1
func Get(err error) int {
	if err == nil {
		return OK
	}

	if coder := Coder(nil); errors.As(err, &coder) {
		return coder.ExitCode()
	}

	if errors.Is(err, pflag.ErrHelp) {
		return Unresolved
	}

	return BuildFailed
}

// Set wraps an error in a Coder, setting its error code.
func Set(err error, code int) error {
	if err == nil {
		return nil
	}
	return coder{err, code}
}

var _ Coder = coder{}

type coder struct {
	error
	int
}

func (co coder) ExitCode() int {
	return co.int
}

func (co coder) Unwrap() error {
	return co.error
}

// Exit is a convenience function that calls os.Exit
// with the exit code associated with err.
func Exit(err error) {
	os.Exit(Get(err))
}
