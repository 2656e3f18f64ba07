package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveStack reports a tree whose active leaf path does not end in
	// a stack. Well-formed trees never trigger this; it guards against
	// malformed input such as an unchecked snapshot restore.
	ErrNoActiveStack = errors.New("no active stack")

	// ErrUnknownPaneRole reports a pane navigation against a role the
	// current pane node does not declare.
	ErrUnknownPaneRole = errors.New("unknown pane role")

	// ErrUnknownTab reports a tab operation against a key that is not a tab
	// node in the current tree.
	ErrUnknownTab = errors.New("unknown tab")

	// ErrUnknownKey reports a node-addressed operation whose key is not
	// present in the addressed stack.
	ErrUnknownKey = errors.New("unknown node key")

	// ErrMalformedDeepLink reports an unparseable deep link or a failed
	// required-parameter conversion.
	ErrMalformedDeepLink = errors.New("malformed deep link")

	// ErrInvalidSnapshot reports a snapshot that decodes but violates a
	// structural invariant. Restore never repairs a tree silently.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// IndexError reports an out-of-range index on a direct stack manipulation.
// Callers that want clamping must clamp before calling.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range for stack of %d", e.Op, e.Index, e.Len)
}
