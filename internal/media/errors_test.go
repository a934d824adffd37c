package media

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	if got := KindOf(WrapKind(KindExtraction, base)); got != KindExtraction {
		t.Errorf("KindOf = %q, want %q", got, KindExtraction)
	}
	if got := KindOf(base); got != KindInternal {
		t.Errorf("KindOf(untagged) = %q, want %q", got, KindInternal)
	}

	// Tags survive further wrapping.
	wrapped := fmt.Errorf("handler: %w", WrapKind(KindTranscode, base))
	if got := KindOf(wrapped); got != KindTranscode {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, KindTranscode)
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error lost its cause")
	}
}

func TestWrapKindNil(t *testing.T) {
	if err := WrapKind(KindExtraction, nil); err != nil {
		t.Errorf("WrapKind(nil) = %v, want nil", err)
	}
	if err := WrapKindDetail(KindTranscode, "detail", nil); err != nil {
		t.Errorf("WrapKindDetail(nil) = %v, want nil", err)
	}
}

func TestDetailOf(t *testing.T) {
	err := WrapKindDetail(KindTranscode, "ffmpeg said no", errors.New("conversion failed"))
	if got := DetailOf(err); got != "ffmpeg said no" {
		t.Errorf("DetailOf = %q", got)
	}
	if got := DetailOf(errors.New("plain")); got != "" {
		t.Errorf("DetailOf(plain) = %q, want empty", got)
	}
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"\x1b[31mERROR:\x1b[0m not found", "ERROR: not found"},
		{"\x1b[1;32mbold green\x1b[0m", "bold green"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripANSI(tt.in); got != tt.want {
			t.Errorf("StripANSI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
