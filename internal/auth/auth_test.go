package auth

import (
	"encoding/hex"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "password123", false},
		{"empty password", "", false},
		{"long password", "a" + string(make([]byte, 70)), false}, // bcrypt max is 72 bytes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && hash == "" {
				t.Error("HashPassword() returned empty hash")
			}
		})
	}
}

func TestHashPassword_DifferentHashes(t *testing.T) {
	password := "testpassword"
	hash1, _ := HashPassword(password)
	hash2, _ := HashPassword(password)

	if hash1 == hash2 {
		t.Error("HashPassword() should produce different hashes for same password")
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "testpassword123"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{"correct password", hash, password, true},
		{"wrong password", hash, "wrongpassword", false},
		{"empty password", hash, "", false},
		{"invalid hash", "invalidhash", password, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.hash, tt.password); got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTokenKey(t *testing.T) {
	key1, err := NewTokenKey()
	if err != nil {
		t.Fatalf("NewTokenKey() error = %v", err)
	}
	key2, err := NewTokenKey()
	if err != nil {
		t.Fatalf("NewTokenKey() error = %v", err)
	}

	// 20 random bytes hex encoded = 40 chars
	if len(key1) != 40 {
		t.Errorf("NewTokenKey() length = %d, want 40", len(key1))
	}
	if _, err := hex.DecodeString(key1); err != nil {
		t.Errorf("NewTokenKey() not valid hex: %v", err)
	}
	if key1 == key2 {
		t.Error("NewTokenKey() should generate unique keys")
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantKey string
		wantOK  bool
		wantErr bool
	}{
		{"missing header", "", "", false, false},
		{"valid header", "Token abc123", "abc123", true, false},
		{"extra whitespace", "Token   abc123", "abc123", true, false},
		{"lowercase scheme", "token abc123", "", false, true},
		{"wrong scheme", "Bearer abc123", "", false, true},
		{"scheme only", "Token", "", false, true},
		{"too many parts", "Token abc 123", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok, err := ParseHeader(tt.header)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseHeader() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if ok != tt.wantOK {
				t.Errorf("ParseHeader() ok = %v, want %v", ok, tt.wantOK)
			}
			if key != tt.wantKey {
				t.Errorf("ParseHeader() key = %q, want %q", key, tt.wantKey)
			}
		})
	}
}
