package utils

import (
	"strings"
	"testing"
)

func TestGenerateReferenceNo(t *testing.T) {
	ref := GenerateReferenceNo("CC")
	if !strings.HasPrefix(ref, "CC-") {
		t.Errorf("expected CC- prefix, got %s", ref)
	}
	if len(ref) != 11 {
		t.Errorf("expected length 11, got %d (%s)", len(ref), ref)
	}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		r := GenerateReferenceNo("CC")
		if seen[r] {
			t.Fatalf("duplicate reference %s", r)
		}
		seen[r] = true
	}
}
