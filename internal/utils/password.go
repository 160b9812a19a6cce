package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// SaltRounds matches the cost used for stored hashes.
const SaltRounds = 10

// MaxPasswordBytes is the longest input bcrypt hashes.
const MaxPasswordBytes = 72

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), SaltRounds)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
