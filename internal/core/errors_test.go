// internal/core/errors_test.go
package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{Code: "TEST_ERROR", Message: "test message"}
	if err.Error() != "[TEST_ERROR] test message" {
		t.Errorf("unexpected error string: %s", err.Error())
	}

	wrapped := WrapError(ErrFetchFailed, errors.New("timeout"))
	if wrapped.Error() != "[FETCH_FAILED] upstream request failed: timeout" {
		t.Errorf("unexpected error string: %s", wrapped.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{Code: "WRAP", Message: "wrapped", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("Unwrap should return cause")
	}
}

func TestError_Is(t *testing.T) {
	if !errors.Is(ErrInsufficientData, ErrInsufficientData) {
		t.Error("same error should match")
	}
	if errors.Is(ErrInsufficientData, ErrNumericDegenerate) {
		t.Error("different codes should not match")
	}
}

func TestError_IsThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("rsi: %w", WrapError(ErrInsufficientData, errors.New("need 15 closes, got 3")))
	if !errors.Is(err, ErrInsufficientData) {
		t.Error("coded error should match through fmt wrapping")
	}
}

func TestWrapError(t *testing.T) {
	cause := errors.New("original")
	wrapped := WrapError(ErrMalformedPayload, cause)
	if wrapped.Cause != cause {
		t.Error("cause not set")
	}
	if wrapped.Code != ErrMalformedPayload.Code {
		t.Error("code not preserved")
	}
}
