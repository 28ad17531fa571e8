package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestHashPIN_Roundtrip(t *testing.T) {
	stored, err := HashPIN("1234")
	if err != nil {
		t.Fatalf("HashPIN error = %v", err)
	}
	if !strings.Contains(stored, "$") {
		t.Errorf("stored hash %q missing salt separator", stored)
	}

	if !CheckPIN("1234", stored) {
		t.Error("CheckPIN with correct pin = false, want true")
	}
	if CheckPIN("4321", stored) {
		t.Error("CheckPIN with wrong pin = true, want false")
	}
}

func TestHashPIN_SaltVaries(t *testing.T) {
	a, err := HashPIN("1234")
	if err != nil {
		t.Fatalf("HashPIN error = %v", err)
	}
	b, err := HashPIN("1234")
	if err != nil {
		t.Fatalf("HashPIN error = %v", err)
	}
	if a == b {
		t.Error("two hashes of the same pin are identical, salt not applied")
	}
}

func TestHashPIN_Empty(t *testing.T) {
	if _, err := HashPIN(""); err == nil {
		t.Error("HashPIN(\"\") error = nil, want error")
	}
}

func TestCheckPIN_MalformedStored(t *testing.T) {
	cases := []string{"", "no-separator", "a$b$c", "!!$!!"}

	for _, stored := range cases {
		if CheckPIN("1234", stored) {
			t.Errorf("CheckPIN(%q) = true, want false", stored)
		}
	}
}

func TestEncryptDecryptAES_Roundtrip(t *testing.T) {
	key := "backup-key"
	plain := []byte(`{"projects":[],"expenses":[]}`)

	enc, err := EncryptAES(key, plain)
	if err != nil {
		t.Fatalf("EncryptAES error = %v", err)
	}
	if bytes.Contains(enc, plain) {
		t.Error("ciphertext contains plaintext")
	}

	dec, err := DecryptAES(key, enc)
	if err != nil {
		t.Fatalf("DecryptAES error = %v", err)
	}
	if !bytes.Equal(dec, plain) {
		t.Errorf("roundtrip = %q, want %q", dec, plain)
	}
}

func TestDecryptAES_WrongKey(t *testing.T) {
	enc, err := EncryptAES("key-a", []byte("secret"))
	if err != nil {
		t.Fatalf("EncryptAES error = %v", err)
	}

	if _, err := DecryptAES("key-b", enc); err == nil {
		t.Error("DecryptAES with wrong key error = nil, want error")
	}
}

func TestDecryptAES_TooShort(t *testing.T) {
	if _, err := DecryptAES("key", []byte("short")); err == nil {
		t.Error("DecryptAES on truncated input error = nil, want error")
	}
}
