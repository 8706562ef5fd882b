package sequence

import "fmt"

// ReferenceError reports a by-name reference to a parameter, signal, or
// observable that does not resolve. References are resolved at
// configuration time, so this surfaces before any instruction is
// emitted, never at hardware runtime.
type ReferenceError struct {
	Path  string
	Where string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference %q under %s", e.Path, e.Where)
}
