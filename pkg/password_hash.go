package pkg

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	passwordHashCost  = 12
	MinPasswordLength = 8
)

var ErrPasswordTooShort = fmt.Errorf("password must have at least %d characters", MinPasswordLength)

// HashPassword rejects passwords shorter than MinPasswordLength.
// bcrypt itself refuses anything above 72 bytes.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return BytesToString(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
