package mapping

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that no mapping definition exists for an origin type.
// It is fatal: without a definition nothing can be mapped.
var ErrNotFound = errors.New("mapping definition not found")

// MalformedChangeError reports a raw record that cannot become a valid
// Change. It is a per-item failure: the adapter logs it and drops the item,
// the batch continues.
type MalformedChangeError struct {
	Reason string
}

func (e *MalformedChangeError) Error() string {
	return fmt.Sprintf("malformed change: %s", e.Reason)
}
