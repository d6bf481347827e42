package board

import "fmt"

// ValidationError reports a rejected operation. The board is unchanged and
// nothing was sent to the task API.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// LoadError reports that the board could not be fetched.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load board: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// PersistError reports a failed remote write. For move and update the local
// board already reflects the change and is not rolled back.
type PersistError struct {
	Op     string
	CardID int64
	Err    error
}

func (e *PersistError) Error() string {
	if e.CardID == 0 {
		return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("persist %s card %d: %v", e.Op, e.CardID, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

func invalid(op, format string, args ...any) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
