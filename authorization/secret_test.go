package authorization

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPlainSecret(t *testing.T) {
	secret := PlainSecret("hunter2")

	if !secret.Verify("hunter2") {
		t.Fatal("correct password rejected")
	}
	if secret.Verify("wrong") {
		t.Fatal("wrong password accepted")
	}
	if secret.Verify("") {
		t.Fatal("empty password accepted")
	}
}

func TestHashedSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generate hash: %v", err)
	}
	secret := HashedSecret(string(hash))

	if !secret.Verify("hunter2") {
		t.Fatal("correct password rejected")
	}
	if secret.Verify("wrong") {
		t.Fatal("wrong password accepted")
	}
}

func TestUnconfiguredSecretNeverMatches(t *testing.T) {
	secret := PlainSecret("")

	if secret.Verify("") {
		t.Fatal("unconfigured secret matched the empty string")
	}
	if secret.Verify("anything") {
		t.Fatal("unconfigured secret matched a candidate")
	}

	var nilSecret *Secret
	if nilSecret.Verify("anything") {
		t.Fatal("nil secret matched a candidate")
	}
}
