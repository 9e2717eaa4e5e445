package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secret123!", 4)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "Secret123!" {
		t.Fatal("hash must not equal the plain password")
	}
	if !VerifyPassword(hash, "Secret123!") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "WrongPass!") {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordCostFallback(t *testing.T) {
	// Costs below the bcrypt minimum fall back to the library default
	// instead of failing.
	hash, err := HashPassword("Secret123!", 0)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !VerifyPassword(hash, "Secret123!") {
		t.Fatal("correct password rejected")
	}
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("Secret123!")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !h.Verify(hash, "Secret123!") {
		t.Fatal("correct password rejected")
	}
	if h.Verify(hash, "nope") {
		t.Fatal("wrong password accepted")
	}
}
