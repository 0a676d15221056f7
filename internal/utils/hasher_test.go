package utils

import "testing"

func TestHashSeparatesParts(t *testing.T) {
	if Hash("ab", "c") == Hash("a", "bc") {
		t.Fatal("expected different hashes for different part boundaries")
	}
	if Hash("x") != Hash("x") {
		t.Fatal("expected stable hash")
	}
	if len(Hash("x")) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(Hash("x")))
	}
}
