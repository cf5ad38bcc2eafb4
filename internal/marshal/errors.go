package marshal

import (
	"errors"
	"fmt"

	"modelbridge/pkg/types"
)

// fieldError reports a malformed request field.
type fieldError struct {
	kind  types.ErrorKind
	field string
	msg   string
}

func (e fieldError) Error() string {
	if e.field == "" {
		return e.msg
	}
	return e.field + ": " + e.msg
}

// Kind returns the error kind reported to callers.
func (e fieldError) Kind() types.ErrorKind { return e.kind }

func missingField(field, msg string) error {
	return fieldError{kind: types.KindMissingField, field: field, msg: msg}
}

func invalidShape(field, format string, args ...any) error {
	return fieldError{kind: types.KindInvalidShape, field: field, msg: fmt.Sprintf(format, args...)}
}

// IsMissingField reports whether err is a missing or mistyped required field.
func IsMissingField(err error) bool {
	var fe fieldError
	return errors.As(err, &fe) && fe.kind == types.KindMissingField
}

// IsInvalidShape reports whether err is a malformed tensor list or descriptor.
func IsInvalidShape(err error) bool {
	var fe fieldError
	return errors.As(err, &fe) && fe.kind == types.KindInvalidShape
}

// notImplementedError signals a method name the bridge does not handle.
type notImplementedError struct{ method string }

func (e notImplementedError) Error() string { return "method not implemented: " + e.method }

// IsNotImplemented reports whether err signals an unrecognized method.
func IsNotImplemented(err error) bool {
	var ne notImplementedError
	return errors.As(err, &ne)
}
