package segment

import (
	"errors"
	"fmt"
	"testing"
)

type fakeExitError struct {
	code int
}

func (e *fakeExitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *fakeExitError) ExitCode() int { return e.code }

func TestNewTrimError_RecoversExitCode(t *testing.T) {
	wrapped := fmt.Errorf("ffmpeg trim failed: %w", &fakeExitError{code: 234})

	err := NewTrimError(wrapped)

	if err.Kind != KindTrim {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTrim)
	}
	if err.ExitCode != 234 {
		t.Errorf("ExitCode = %d, want 234", err.ExitCode)
	}
	if ExitCodeOf(fmt.Errorf("outer: %w", err)) != 234 {
		t.Errorf("ExitCodeOf() did not see through wrapping")
	}
	if err.Error() != wrapped.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), wrapped.Error())
	}
}

func TestNewTrimError_WithoutExitCode(t *testing.T) {
	err := NewTrimError(errors.New("executable file not found in $PATH"))
	if err.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", err.ExitCode)
	}
}

func TestNewFetchError_KeepsTextUnchanged(t *testing.T) {
	original := errors.New("ERROR: [generic] Unable to download webpage")
	err := NewFetchError(original)

	if err.Error() != original.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), original.Error())
	}
	if !errors.Is(err, original) {
		t.Error("expected errors.Is to find the original error")
	}
	if KindOf(err) != KindFetch {
		t.Errorf("KindOf() = %v, want %v", KindOf(err), KindFetch)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain error", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
		{"validation", &Error{Kind: KindValidation, Err: ErrMissingParameters}, KindValidation},
		{"wrapped fetch", fmt.Errorf("run: %w", NewFetchError(errors.New("x"))), KindFetch},
		{"trim", NewTrimError(errors.New("x")), KindTrim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	want := map[Kind]string{
		KindUnknown:    "unknown",
		KindValidation: "validation",
		KindFetch:      "fetch",
		KindTrim:       "trim",
	}
	for k, s := range want {
		if k.String() != s {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), s)
		}
	}
}

func TestError_NilWrapped(t *testing.T) {
	err := &Error{Kind: KindTrim}
	if err.Error() != "trim failure" {
		t.Errorf("Error() = %q", err.Error())
	}
}
