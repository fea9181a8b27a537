package object

import (
	"errors"
	"fmt"
)

// Error represents a failure detected by the object runtime.
//
// Runtime errors include:
//   - Registration faults: duplicate type names, unknown parents
//   - Property faults: unknown names, access violations, kind mismatches
//   - Signal faults: undeclared signals, unknown connection ids
//   - Lifetime faults: release of an already-destroyed instance
//
// Error includes structured fields for diagnostics.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Type identifies the affected type name, if any.
	Type string

	// Property identifies the affected property, if any.
	Property string

	// Signal identifies the affected signal, if any.
	Signal string
}

// ErrorCode categorizes runtime errors.
type ErrorCode string

const (
	// ErrCodeDuplicateType indicates a type name is already registered.
	ErrCodeDuplicateType ErrorCode = "DUPLICATE_TYPE"

	// ErrCodeUnknownType indicates a type name is not registered.
	ErrCodeUnknownType ErrorCode = "UNKNOWN_TYPE"

	// ErrCodeUnknownParent indicates a named parent type is not registered.
	ErrCodeUnknownParent ErrorCode = "UNKNOWN_PARENT"

	// ErrCodeInvalidSpec indicates a malformed registration input.
	ErrCodeInvalidSpec ErrorCode = "INVALID_SPEC"

	// ErrCodeUnknownProperty indicates a property name absent from the
	// type's entire resolved spec set, inherited specs included.
	ErrCodeUnknownProperty ErrorCode = "UNKNOWN_PROPERTY"

	// ErrCodeNotReadable indicates a Get on a write-only property.
	ErrCodeNotReadable ErrorCode = "NOT_READABLE"

	// ErrCodeNotWritable indicates a Set on a read-only property.
	ErrCodeNotWritable ErrorCode = "NOT_WRITABLE"

	// ErrCodeTypeMismatch indicates a value whose kind disagrees with the
	// property's declared kind.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeUnknownSignal indicates a signal name not declared for the
	// instance's type, inherited signals included.
	ErrCodeUnknownSignal ErrorCode = "UNKNOWN_SIGNAL"

	// ErrCodeUnknownConnection indicates a connection id with no live
	// subscriber entry.
	ErrCodeUnknownConnection ErrorCode = "UNKNOWN_CONNECTION"

	// ErrCodeInvalidRelease indicates a release (or any other use) of an
	// instance whose reference count already reached zero.
	ErrCodeInvalidRelease ErrorCode = "INVALID_RELEASE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Type != "" && e.Property != "":
		return fmt.Sprintf("%s: %s (type=%s, property=%s)", e.Code, e.Message, e.Type, e.Property)
	case e.Type != "" && e.Signal != "":
		return fmt.Sprintf("%s: %s (type=%s, signal=%s)", e.Code, e.Message, e.Type, e.Signal)
	case e.Type != "":
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.Type)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// CodeOf extracts the ErrorCode from an error, unwrapping as needed.
// Returns the empty code for non-runtime errors.
func CodeOf(err error) ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsUnknownProperty reports whether err is an UNKNOWN_PROPERTY fault.
func IsUnknownProperty(err error) bool { return CodeOf(err) == ErrCodeUnknownProperty }

// IsTypeMismatch reports whether err is a TYPE_MISMATCH fault.
func IsTypeMismatch(err error) bool { return CodeOf(err) == ErrCodeTypeMismatch }

// IsUnknownSignal reports whether err is an UNKNOWN_SIGNAL fault.
func IsUnknownSignal(err error) bool { return CodeOf(err) == ErrCodeUnknownSignal }

// IsUnknownConnection reports whether err is an UNKNOWN_CONNECTION fault.
func IsUnknownConnection(err error) bool { return CodeOf(err) == ErrCodeUnknownConnection }

// IsInvalidRelease reports whether err is an INVALID_RELEASE fault.
func IsInvalidRelease(err error) bool { return CodeOf(err) == ErrCodeInvalidRelease }

func newDuplicateTypeError(name string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateType,
		Message: "type name already registered",
		Type:    name,
	}
}

func newUnknownTypeError(name string) *Error {
	return &Error{
		Code:    ErrCodeUnknownType,
		Message: "type not registered",
		Type:    name,
	}
}

func newUnknownParentError(name, parent string) *Error {
	return &Error{
		Code:    ErrCodeUnknownParent,
		Message: fmt.Sprintf("parent type %q not registered", parent),
		Type:    name,
	}
}

func newInvalidSpecError(name, msg string) *Error {
	return &Error{
		Code:    ErrCodeInvalidSpec,
		Message: msg,
		Type:    name,
	}
}

func newUnknownPropertyError(typeName, prop string) *Error {
	return &Error{
		Code:     ErrCodeUnknownProperty,
		Message:  "property not declared on type or any ancestor",
		Type:     typeName,
		Property: prop,
	}
}

func newNotReadableError(typeName, prop string) *Error {
	return &Error{
		Code:     ErrCodeNotReadable,
		Message:  "property is write-only",
		Type:     typeName,
		Property: prop,
	}
}

func newNotWritableError(typeName, prop string) *Error {
	return &Error{
		Code:     ErrCodeNotWritable,
		Message:  "property is read-only",
		Type:     typeName,
		Property: prop,
	}
}

func newTypeMismatchError(typeName, prop string, want, got string) *Error {
	return &Error{
		Code:     ErrCodeTypeMismatch,
		Message:  fmt.Sprintf("property expects %s, got %s", want, got),
		Type:     typeName,
		Property: prop,
	}
}

func newUnknownSignalError(typeName, signal string) *Error {
	return &Error{
		Code:    ErrCodeUnknownSignal,
		Message: "signal not declared on type or any ancestor",
		Type:    typeName,
		Signal:  signal,
	}
}

func newUnknownConnectionError(typeName string, id ConnectionID) *Error {
	return &Error{
		Code:    ErrCodeUnknownConnection,
		Message: fmt.Sprintf("no subscriber with connection id %d", id),
		Type:    typeName,
	}
}

func newInvalidReleaseError(typeName string) *Error {
	return &Error{
		Code:    ErrCodeInvalidRelease,
		Message: "instance already destroyed",
		Type:    typeName,
	}
}
