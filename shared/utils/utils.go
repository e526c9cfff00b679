package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	AccountCodePrefix     = "ACC"
	TransactionCodePrefix = "TXN"
)

// FormatCode builds a human-readable identifier from a sequence value, e.g. ACC001.
func FormatCode(prefix string, seq int64) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}

// NewCustomerOID proposes an identifier for a customer record in the external bank.
func NewCustomerOID() string {
	return uuid.NewString()
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// maxCodeLength matches the VARCHAR(20) id columns.
const maxCodeLength = 20

// ValidateAccountID validates the account code format: ACC followed by digits.
func ValidateAccountID(accountID string) bool {
	digits, ok := strings.CutPrefix(accountID, AccountCodePrefix)
	if !ok || digits == "" || len(accountID) > maxCodeLength {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
