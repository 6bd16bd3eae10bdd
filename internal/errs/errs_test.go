package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsKind(t *testing.T) {
	base := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		kind Kind
		want bool
	}{
		{"direct match", E(Storage, "store", base), Storage, true},
		{"wrong kind", E(Storage, "store", base), Document, false},
		{"wrapped once", fmt.Errorf("run failed: %w", E(Processing, "recognize", base)), Processing, true},
		{"nested kinds, outer", E(Processing, "process", E(Storage, "store", base)), Processing, true},
		{"nested kinds, inner", E(Processing, "process", E(Storage, "store", base)), Storage, true},
		{"plain error", base, Storage, false},
		{"nil cause", E(Configuration, "profile", nil), Configuration, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.want {
				t.Errorf("IsKind(%v, %v) = %v, want %v", tt.err, tt.kind, got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Ef(Document, "classify", "open %s: no such file", "a.pdf")
	want := "classify: open a.pdf: no such file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if KindOf(err) != Document {
		t.Errorf("KindOf() = %v, want Document", KindOf(err))
	}
}

func TestUnwrapChain(t *testing.T) {
	base := errors.New("engine crashed")
	err := E(Processing, "recognize", fmt.Errorf("page 3: %w", base))
	if !errors.Is(err, base) {
		t.Error("errors.Is should reach the base error through the chain")
	}
}
