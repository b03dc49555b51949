package settingsx

import (
	"fmt"
	"reflect"

	"go.eggybyte.com/settingsx/core/errors"
)

// DescriptorError reports a missing or malformed settings marker tag.
type DescriptorError struct {
	Type   reflect.Type
	Reason string
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("settings descriptor of %s: %s", e.Type, e.Reason)
}

// Code implements errors.Coder.
func (e *DescriptorError) Code() errors.Code { return errors.CodeInvalidArgument }

// AmbiguousValidatorError reports a method marked as a validator more than once.
type AmbiguousValidatorError struct {
	Type   reflect.Type
	Method string
}

func (e *AmbiguousValidatorError) Error() string {
	return fmt.Sprintf("validator %s.%s is marked more than once", e.Type, e.Method)
}

// Code implements errors.Coder.
func (e *AmbiguousValidatorError) Code() errors.Code { return errors.CodeInvalidArgument }

// InvalidValidatorShapeError reports a marked method that is not a func(T) bool
// declared on T.
type InvalidValidatorShapeError struct {
	Type   reflect.Type
	Method string
	Reason string
}

func (e *InvalidValidatorShapeError) Error() string {
	return fmt.Sprintf("validator %s.%s: %s", e.Type, e.Method, e.Reason)
}

// Code implements errors.Coder.
func (e *InvalidValidatorShapeError) Code() errors.Code { return errors.CodeInvalidArgument }

// OperationResolutionError reports that the host catalog has no operation of
// the expected shape. It aborts the whole registration call.
type OperationResolutionError struct {
	Operation Operation
	Type      reflect.Type
	Reason    string
}

func (e *OperationResolutionError) Error() string {
	return fmt.Sprintf("resolve %s for %s: %s", e.Operation, e.Type, e.Reason)
}

// Code implements errors.Coder.
func (e *OperationResolutionError) Code() errors.Code { return errors.CodeInternal }

// BindingFailure reports a section that could not be mapped onto its type.
type BindingFailure struct {
	Type    reflect.Type
	Section string
	Err     error
}

func (e *BindingFailure) Error() string {
	return fmt.Sprintf("bind section %q to %s: %v", e.Section, e.Type, e.Err)
}

func (e *BindingFailure) Unwrap() error { return e.Err }

// Code implements errors.Coder.
func (e *BindingFailure) Code() errors.Code { return errors.CodeFailedPrecondition }

// DuplicateRegistrationError reports a type registered twice into one
// collection or twice within one registration call.
type DuplicateRegistrationError struct {
	Type reflect.Type
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("settings type %s is already registered", e.Type)
}

// Code implements errors.Coder.
func (e *DuplicateRegistrationError) Code() errors.Code { return errors.CodeAlreadyExists }

// errorKind names the error class for metrics and logs.
func errorKind(err error) string {
	var (
		descriptor *DescriptorError
		ambiguous  *AmbiguousValidatorError
		shape      *InvalidValidatorShapeError
		resolution *OperationResolutionError
		binding    *BindingFailure
		duplicate  *DuplicateRegistrationError
	)
	switch {
	case errors.As(err, &descriptor):
		return "descriptor"
	case errors.As(err, &ambiguous):
		return "ambiguous_validator"
	case errors.As(err, &shape):
		return "validator_shape"
	case errors.As(err, &resolution):
		return "operation_resolution"
	case errors.As(err, &binding):
		return "binding"
	case errors.As(err, &duplicate):
		return "duplicate"
	default:
		return "unknown"
	}
}
