package utils

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "password123" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CheckPassword("password123", hash) {
		t.Error("expected the original password to verify")
	}
	if CheckPassword("wrong", hash) {
		t.Error("expected a different password to fail")
	}

	other, _ := HashPassword("password123")
	if other == hash {
		t.Error("expected salted hashes to differ")
	}
}

func TestFormatCode(t *testing.T) {
	tests := []struct {
		prefix string
		seq    int64
		want   string
	}{
		{AccountCodePrefix, 1, "ACC001"},
		{AccountCodePrefix, 42, "ACC042"},
		{TransactionCodePrefix, 1234, "TXN1234"},
	}
	for _, tt := range tests {
		if got := FormatCode(tt.prefix, tt.seq); got != tt.want {
			t.Errorf("FormatCode(%q, %d) = %q, want %q", tt.prefix, tt.seq, got, tt.want)
		}
	}
}

func TestValidateAccountID(t *testing.T) {
	for _, id := range []string{"ACC001", "ACC999", "ACC1234"} {
		if !ValidateAccountID(id) {
			t.Errorf("%q should be valid", id)
		}
	}
	for _, id := range []string{"", "ACC", "TXN001", "acc001", "ACC00X", "ACC-1", "ACC001' OR '1'='1", "ACC00000000000000000001"} {
		if ValidateAccountID(id) {
			t.Errorf("%q should be invalid", id)
		}
	}
}
