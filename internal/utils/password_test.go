package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
    hash, err := HashPassword("s3cret-pass", 4)
    if err != nil {
        t.Fatalf("hash: %v", err)
    }
    if hash == "s3cret-pass" {
        t.Fatal("hash equals plaintext")
    }
    if !VerifyPassword(hash, "s3cret-pass") {
        t.Fatal("correct password rejected")
    }
    if VerifyPassword(hash, "wrong-pass") {
        t.Fatal("wrong password accepted")
    }
}

func TestHashPasswordClampsCost(t *testing.T) {
    // Out-of-range costs fall back to the default instead of failing.
    if _, err := HashPassword("pw", -1); err != nil {
        t.Fatalf("negative cost: %v", err)
    }
    if _, err := HashPassword("pw", 99); err != nil {
        t.Fatalf("oversized cost: %v", err)
    }
}
