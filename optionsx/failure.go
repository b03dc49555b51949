package optionsx

import (
	"fmt"
	"strings"

	"go.eggybyte.com/settingsx/core/errors"
)

// ValidationFailure reports the failed rules of one settings type.
type ValidationFailure struct {
	Type     string   // Settings type name
	Section  string   // Configuration section path
	Failures []string // Failed rule messages in rule order
}

// Error implements the error interface.
func (f *ValidationFailure) Error() string {
	return fmt.Sprintf("settings %s (section %q) failed validation: %s",
		f.Type, f.Section, strings.Join(f.Failures, "; "))
}

// Code classifies validation failures for core/errors.
func (f *ValidationFailure) Code() errors.Code {
	return errors.CodeFailedPrecondition
}
