package executor

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// ConfigError is returned when an Executor cannot be built. It is fatal for
// the whole batch and always surfaces before any request is sent.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Op, e.Err)
}

func (e *ConfigError) Cause() error  { return e.Err }
func (e *ConfigError) Unwrap() error { return e.Err }

// Kind classifies why a single request attempt failed.
type Kind int

const (
	Connection Kind = iota
	Timeout
	BodyRead
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case BodyRead:
		return "body-read"
	default:
		return "connection"
	}
}

// ExecutionError is local to one attempt.
type ExecutionError struct {
	Kind Kind
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Err)
}

func (e *ExecutionError) Cause() error  { return e.Err }
func (e *ExecutionError) Unwrap() error { return e.Err }

func newExecutionError(kind Kind, err error) *ExecutionError {
	if isTimeout(err) {
		kind = Timeout
	}
	return &ExecutionError{Kind: kind, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsConfigError reports whether err, or any error it wraps, is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}
