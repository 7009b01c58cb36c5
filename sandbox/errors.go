package sandbox

import (
	"fmt"
	"time"
)

// SecurityError reports an expression rejected during static validation
// because it references a denied construct or an identifier outside the
// allow-list. The caller logs it and keeps the untransformed value.
type SecurityError struct {
	// Expr is the offending expression source.
	Expr string
	// Reason describes what was denied.
	Reason string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("expression rejected: %s", e.Reason)
}

// TimeoutError reports an expression that exceeded its wall-clock
// deadline. Distinct from SecurityError: the expression was legal but did
// not finish.
type TimeoutError struct {
	// Expr is the expression source.
	Expr string
	// Timeout is the deadline that was exceeded.
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("expression timed out after %s", e.Timeout)
}
