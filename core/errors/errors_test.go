package errors

import (
	"errors"
	"testing"
)

type codedErr struct{ code Code }

func (c *codedErr) Error() string { return "coded" }
func (c *codedErr) Code() Code    { return c.code }

func TestNew(t *testing.T) {
	err := New(CodeInvalidArgument, "section path is empty")

	var customErr *E
	if !errors.As(err, &customErr) {
		t.Fatal("Error should be of type *E")
	}
	if customErr.Code != CodeInvalidArgument {
		t.Errorf("Expected code %s, got %s", CodeInvalidArgument, customErr.Code)
	}
	if err.Error() != "INVALID_ARGUMENT: section path is empty" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(CodeInternal, "operation", originalErr)

	var customErr *E
	if !errors.As(wrappedErr, &customErr) {
		t.Fatal("Wrapped error should be of type *E")
	}
	if customErr.Op != "operation" {
		t.Errorf("Expected operation %q, got %q", "operation", customErr.Op)
	}
	if errors.Unwrap(wrappedErr) != originalErr {
		t.Error("Unwrap should return original error")
	}
	if wrappedErr.Error() != "operation: INTERNAL: original error" {
		t.Errorf("unexpected message %q", wrappedErr.Error())
	}
}

func TestWrapf(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrapf(CodeNotFound, "operation", originalErr, "formatted message: %s", "test")

	var customErr *E
	if !errors.As(wrappedErr, &customErr) {
		t.Fatal("Wrapped error should be of type *E")
	}
	if customErr.Msg != "formatted message: test" {
		t.Errorf("Expected message %q, got %q", "formatted message: test", customErr.Msg)
	}
	if wrappedErr.Error() != "operation: NOT_FOUND: formatted message: test: original error" {
		t.Errorf("unexpected message %q", wrappedErr.Error())
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{name: "custom error with code", err: New(CodeInvalidArgument, "test"), expected: CodeInvalidArgument},
		{name: "wrapped error with code", err: Wrap(CodeNotFound, "op", errors.New("test")), expected: CodeNotFound},
		{name: "coder", err: &codedErr{code: CodeAlreadyExists}, expected: CodeAlreadyExists},
		{name: "coder wrapped by fmt", err: Join(errors.New("x"), &codedErr{code: CodeAborted}), expected: CodeAborted},
		{name: "E wins over inner coder", err: Wrap(CodeInternal, "op", &codedErr{code: CodeAborted}), expected: CodeInternal},
		{name: "standard error", err: errors.New("standard error"), expected: ""},
		{name: "nil error", err: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := CodeOf(tt.err); code != tt.expected {
				t.Errorf("Expected code %q, got %q", tt.expected, code)
			}
			if tt.expected != "" && !IsCode(tt.err, tt.expected) {
				t.Errorf("IsCode(%q) = false", tt.expected)
			}
		})
	}
}
