package catalog

import (
	"fmt"
	"strings"
)

// ResolutionError is returned when the catalog itself or one of the files it
// references can't be located. It unwraps to "fs.ErrNotExist" when nothing was
// found, and to the underlying error otherwise.
type ResolutionError struct {
	Err error

	// "catalog", "module", or "worker source"
	Kind string
	Name string

	// Every location that was checked, in order
	Tried []string
}

func (e *ResolutionError) Error() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Could not resolve %s %q", e.Kind, e.Name))
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	if len(e.Tried) > 0 {
		sb.WriteString(" (tried ")
		sb.WriteString(strings.Join(e.Tried, ", "))
		sb.WriteString(")")
	}
	return sb.String()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
