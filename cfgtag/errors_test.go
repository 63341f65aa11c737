package cfgtag

import (
	"fmt"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	err := &FormatError{Magic: 0x12345678, Size: 64}

	errMsg := err.Error()
	if !strings.Contains(errMsg, "0x12345678") {
		t.Errorf("error message should contain magic, got: %s", errMsg)
	}

	short := &FormatError{Size: 2}
	if !strings.Contains(short.Error(), "too short") {
		t.Errorf("error message should mention short buffer, got: %s", short.Error())
	}
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{ID: 0x8201}

	if !strings.Contains(err.Error(), "0x8201") {
		t.Errorf("error message should contain id, got: %s", err.Error())
	}

	wrapped := fmt.Errorf("lookup: %w", err)
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound() should see through wrapping")
	}
	if IsFormatError(wrapped) {
		t.Error("IsFormatError() should be false for NotFoundError")
	}
}
