// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error values used across the statemux library.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrNotSupported  = fmt.Errorf("operation not supported on this platform")
	ErrNotRunning    = fmt.Errorf("reactor is not running")
	ErrClosed        = fmt.Errorf("already closed")
	ErrAlreadyExists = fmt.Errorf("handle already registered")
	ErrNotFound      = fmt.Errorf("not found")
	ErrShortRead     = fmt.Errorf("short counter read")
	ErrNoSnapshot    = fmt.Errorf("container has no snapshot hooks")
)
