package manager

import (
	"errors"
	"fmt"

	"modelbridge/pkg/types"
)

var (
	errModelLimit  = errors.New("model limit reached")
	errClosed      = errors.New("manager closed")
	errNoEngine    = errors.New("no engine configured")
	errNilModel    = errors.New("engine returned no model")
	errNilModule   = errors.New("module is nil")
	errNilOutputs  = errors.New("outputs is nil")
	errEmptyInputs = errors.New("inputs must not be empty")
)

// unknownHandleError signals a handle that is not live.
type unknownHandleError struct{ handle types.Handle }

func (e unknownHandleError) Error() string { return fmt.Sprintf("unknown handle: %d", e.handle) }

func (e unknownHandleError) Kind() types.ErrorKind { return types.KindUnknownHandle }

// ErrUnknownHandle returns the error reported for a handle that is not live.
func ErrUnknownHandle(h types.Handle) error { return unknownHandleError{handle: h} }

// IsUnknownHandle reports whether err indicates a handle that is not live.
func IsUnknownHandle(err error) bool {
	var ue unknownHandleError
	return errors.As(err, &ue)
}

// loadError wraps an engine or capacity failure during Load.
type loadError struct {
	path string
	err  error
}

func (e loadError) Error() string { return "load " + e.path + ": " + e.err.Error() }

func (e loadError) Unwrap() error { return e.err }

func (e loadError) Kind() types.ErrorKind { return types.KindLoadError }

// IsLoadError reports whether err is a failed Load.
func IsLoadError(err error) bool {
	var le loadError
	return errors.As(err, &le)
}

// IsModelLimit reports whether a Load failed because MaxModels modules are live.
func IsModelLimit(err error) bool { return errors.Is(err, errModelLimit) }

// forwardError wraps a failure while running a live module.
type forwardError struct {
	handle types.Handle
	err    error
}

func (e forwardError) Error() string {
	return fmt.Sprintf("forward %d: %s", e.handle, e.err.Error())
}

func (e forwardError) Unwrap() error { return e.err }

func (e forwardError) Kind() types.ErrorKind { return types.KindForwardError }

// IsForwardError reports whether err is a failed Forward on a live module.
func IsForwardError(err error) bool {
	var fe forwardError
	return errors.As(err, &fe)
}

// invalidInputsError rejects a malformed input list before the engine runs.
type invalidInputsError struct{ err error }

func (e invalidInputsError) Error() string { return e.err.Error() }

func (e invalidInputsError) Kind() types.ErrorKind { return types.KindInvalidShape }

// IsInvalidInputs reports whether Forward rejected its inputs without running.
func IsInvalidInputs(err error) bool {
	var ie invalidInputsError
	return errors.As(err, &ie)
}
