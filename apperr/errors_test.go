package apperr

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestNewCapturesStack(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
	}{
		{"without cause", EmptyResult("no records")},
		{"with cause", Storage("writing snapshot", io.ErrUnexpectedEOF)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack := string(tt.err.StackTrace())
			if !strings.Contains(stack, "TestNewCapturesStack") {
				t.Errorf("stack does not reach the caller:\n%s", stack)
			}
		})
	}
}

func TestStackOfWrapped(t *testing.T) {
	err := fmt.Errorf("load: %w", Network("connection reset", nil))

	if got := StackOf(err); len(got) == 0 {
		t.Error("StackOf should find the stack through wrapping")
	}
	if got := StackOf(errors.New("plain")); got != nil {
		t.Errorf("StackOf(plain) = %q; want nil", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{Parse("bad zip", nil), KindParse},
		{fmt.Errorf("fetch: %w", InsufficientData("one year")), KindInsufficientData},
		{errors.New("plain"), ""},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %q; want %q", tt.err, got, tt.want)
		}
	}
	if IsKind(nil, "") {
		t.Error("IsKind(nil) should be false")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Network("downloading bls_data_2023.zip", io.EOF)
	if got, want := err.Error(), "NETWORK: downloading bls_data_2023.zip: EOF"; got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
	if !errors.Is(err, io.EOF) {
		t.Error("Unwrap should expose the cause")
	}
}
