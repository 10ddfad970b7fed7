package cim

import (
	"strings"
	"testing"
)

func TestNewMRIDKnownValues(t *testing.T) {
	tests := []struct {
		prefix string
		parts  []string
		want   string
	}{
		{PrefixRemoteUnit, []string{"maple", "MAP1"}, "_rtu-6b7eb2e2-8265-57f6-991b-9b7e05877ba4"},
		{PrefixPoint, []string{"maple", "BRK1_STATUS"}, "_pt-b474953e-fb51-5e22-9eb3-aa4b34b67ea7"},
	}
	for _, tt := range tests {
		if got := NewMRID(tt.prefix, tt.parts...); got != tt.want {
			t.Errorf("NewMRID(%q, %v) = %q, want %q", tt.prefix, tt.parts, got, tt.want)
		}
	}
}

func TestModelURN(t *testing.T) {
	want := "urn:uuid:a961eae0-25c3-58c7-ae3b-0f0f5dcba87b"
	if got := ModelURN("maple"); got != want {
		t.Fatalf("ModelURN(maple) = %q, want %q", got, want)
	}
}

func TestNewMRIDStable(t *testing.T) {
	a := NewMRID(PrefixPoint, "sub", "TAG")
	b := NewMRID(PrefixPoint, "sub", "TAG")
	if a != b {
		t.Fatalf("mRID not stable: %q != %q", a, b)
	}
	if DeterministicUUID("x", "a").Version() != 5 {
		t.Fatal("expected a version 5 UUID")
	}
}

func TestNewMRIDKindsDoNotCollide(t *testing.T) {
	seen := make(map[string]string)
	for _, prefix := range []string{PrefixRemoteUnit, PrefixCentralUnit, PrefixPoint, PrefixRemoteSource, PrefixRemoteControl} {
		id := NewMRID(prefix, "maple", "SAME_KEY")
		if !strings.HasPrefix(id, "_"+prefix+"-") {
			t.Errorf("mRID %q does not carry prefix %q", id, prefix)
		}
		uuidPart := strings.TrimPrefix(id, "_"+prefix+"-")
		if other, ok := seen[uuidPart]; ok {
			t.Errorf("prefixes %q and %q share uuid %s", prefix, other, uuidPart)
		}
		seen[uuidPart] = prefix
	}
}

func TestDeterministicUUIDSeparator(t *testing.T) {
	// Parts are separated, so ("ab","c") and ("a","bc") differ.
	if DeterministicUUID("pt", "ab", "c") == DeterministicUUID("pt", "a", "bc") {
		t.Fatal("part boundaries must change the identifier")
	}
}
