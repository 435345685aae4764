package loader

import (
	"errors"
	"fmt"
)

// ErrBadExport marks an export that cannot be decoded at all, such as an
// empty file or a header without itow.
var ErrBadExport = errors.New("unreadable export")

// WriteError is a storage write that still failed after every retry. The
// whole import is safe to run again: samples upsert by itow and no batch
// row was recorded.
type WriteError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a storage write failure, as opposed to
// a malformed export or a cancelled context.
func IsRetryable(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
