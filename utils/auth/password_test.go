package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in plaintext")
	}

	if err := VerifyPassword(hash, "correct horse battery staple"); err != nil {
		t.Errorf("expected matching password to verify: %v", err)
	}
	if err := VerifyPassword(hash, "wrong password!"); err == nil {
		t.Error("expected mismatched password to fail")
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Error("expected short password to be rejected")
	}
}

func TestIsPasswordValid(t *testing.T) {
	if IsPasswordValid("1234567") {
		t.Error("7 characters should be invalid")
	}
	if !IsPasswordValid("12345678") {
		t.Error("8 characters should be valid")
	}
}

func TestHashIsSalted(t *testing.T) {
	first, err := HashPassword("same password here")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	second, err := HashPassword("same password here")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password should differ")
	}
}
