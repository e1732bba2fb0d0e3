package security

import (
	"errors"
	"testing"
)

func TestHashSecret_VerifyMatch(t *testing.T) {
	t.Parallel()

	hash, err := HashSecret("hunter2-but-longer")
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}

	ok, err := VerifySecret("hunter2-but-longer", hash)
	if err != nil {
		t.Fatalf("VerifySecret: %v", err)
	}
	if !ok {
		t.Fatal("correct secret rejected")
	}

	ok, err = VerifySecret("wrong-secret", hash)
	if err != nil {
		t.Fatalf("VerifySecret mismatch: %v", err)
	}
	if ok {
		t.Fatal("wrong secret accepted")
	}
}

func TestHashSecret_SaltsDiffer(t *testing.T) {
	t.Parallel()

	a, err := HashSecret("same-input")
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	b, err := HashSecret("same-input")
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	if string(a) == string(b) {
		t.Fatal("two hashes of the same input share a salt")
	}
}

func TestVerifySecret_MalformedHash(t *testing.T) {
	t.Parallel()

	for _, bad := range [][]byte{nil, []byte(""), []byte("plaintext"), []byte("$argon2id$v=19$bogus")} {
		if _, err := VerifySecret("x", bad); !errors.Is(err, ErrHashMalformed) {
			t.Fatalf("VerifySecret(%q): expected ErrHashMalformed, got %v", bad, err)
		}
	}
}
