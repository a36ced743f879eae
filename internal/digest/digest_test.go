package digest

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

var corpus = []string{
	"password", "hunter2", "s3cr3t!", "letmein", "Pässwörd", "correct horse battery staple",
	"pass word", "PASSWORD", "password ", "مفتاح", "🔑🔑🔑🔑",
}

func TestSumKnownVector(t *testing.T) {
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Sum("abc"); got != want {
		t.Errorf("Sum(abc) = %s, want %s", got, want)
	}
}

func TestSumDeterministicAndDistinct(t *testing.T) {
	seen := make(map[string]string)
	for _, p := range corpus {
		d := Sum(p)
		if d != Sum(p) {
			t.Fatalf("Sum(%q) not deterministic", p)
		}
		if len(d) != 64 {
			t.Errorf("len(Sum(%q)) = %d, want 64", p, len(d))
		}
		if other, ok := seen[d]; ok {
			t.Fatalf("collision between %q and %q", p, other)
		}
		seen[d] = p
		if strings.Contains(d, p) {
			t.Errorf("digest of %q contains the plaintext", p)
		}
	}
}

func TestSHA256Verify(t *testing.T) {
	h := SHA256{}
	stored, err := h.Hash("abcd")
	if err != nil {
		t.Fatal(err)
	}
	if !h.Verify(stored, "abcd") {
		t.Error("correct password rejected")
	}
	if h.Verify(stored, "abce") {
		t.Error("wrong password accepted")
	}
	if h.Verify("", "") {
		t.Error("empty stored digest must never verify")
	}
}

func TestBcryptVerifiesBothFormats(t *testing.T) {
	h := Bcrypt{Cost: bcrypt.MinCost}
	stored, err := h.Hash("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !IsBcrypt(stored) {
		t.Fatalf("stored = %q, want bcrypt format", stored)
	}
	if !h.Verify(stored, "hunter2") || h.Verify(stored, "hunter3") {
		t.Error("bcrypt verification wrong")
	}
	legacy := Sum("hunter2")
	if !h.Verify(legacy, "hunter2") {
		t.Error("legacy sha256 digest should verify under bcrypt hasher")
	}
}

func TestForName(t *testing.T) {
	if _, err := ForName("sha256", 0); err != nil {
		t.Error(err)
	}
	if _, err := ForName("md5", 0); err == nil {
		t.Error("unknown hasher should fail")
	}
}
