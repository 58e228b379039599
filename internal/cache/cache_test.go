package cache

import (
	"strings"
	"testing"
)

func TestKey_NormalizesQuestion(t *testing.T) {
	base := Key("What was our best xG match?")

	same := []string{
		"what was our best xg match?",
		"  What was our best xG match?  ",
		"WHAT WAS OUR BEST XG MATCH?",
	}
	for _, q := range same {
		if Key(q) != base {
			t.Errorf("key for %q should match the base key", q)
		}
	}

	if Key("How do we press at home?") == base {
		t.Error("different questions must not collide")
	}
}

func TestKey_Prefix(t *testing.T) {
	key := Key("anything")
	if !strings.HasPrefix(key, "clubgpt:answer:") {
		t.Errorf("key missing namespace prefix: %q", key)
	}
	// Prefix plus a hex-encoded sha256 digest.
	if len(key) != len("clubgpt:answer:")+64 {
		t.Errorf("unexpected key length: %d", len(key))
	}
}
