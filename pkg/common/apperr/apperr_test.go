package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// ============================================================================
// Construction and extraction
// ============================================================================

func TestFromRoundTrip(t *testing.T) {
	cause := errors.New("socket closed")
	err := Wrap(cause, CodePersistence, "write failed", http.StatusInternalServerError)

	// The typed error must survive further stdlib wrapping.
	wrapped := fmt.Errorf("handler: %w", err)

	appErr, ok := From(wrapped)
	if !ok {
		t.Fatal("From failed to recover the AppError")
	}
	if appErr.Code != CodePersistence {
		t.Errorf("Code = %d, want %d", appErr.Code, CodePersistence)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("cause must stay reachable through Unwrap")
	}
}

func TestWrapNilIsNil(t *testing.T) {
	if err := Wrap(nil, CodePersistence, "x", http.StatusInternalServerError); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestCodeOfUnknownError(t *testing.T) {
	if code := CodeOf(errors.New("plain")); code != 0 {
		t.Errorf("CodeOf(plain error) = %d, want 0", code)
	}
}

// ============================================================================
// Standardized service messages
// ============================================================================

func TestMapError(t *testing.T) {
	tests := []struct {
		name    string
		cause   error
		wantNil bool
		wantMsg string
	}{
		{"prefixes_service_name", errors.New("dup key"), false, "subscription failed to save"},
		{"nil_cause_is_nil", nil, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapError("subscription", tt.cause, CodePersistence,
				MsgSaveFailed, http.StatusInternalServerError)
			if tt.wantNil {
				if err != nil {
					t.Fatalf("MapError = %v, want nil", err)
				}
				return
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Code != CodePersistence {
				t.Errorf("Code = %d, want %d", err.Code, CodePersistence)
			}
			if !errors.Is(err, tt.cause) {
				t.Error("cause must stay reachable through Unwrap")
			}
		})
	}
}

func TestNewError(t *testing.T) {
	err := NewError("geo", CodeConfigMissing, MsgConfigMissing,
		http.StatusInternalServerError, nil)

	if want := "geo missing required configuration"; err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
	if err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusInternalServerError)
	}
}
