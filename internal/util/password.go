package util

import "golang.org/x/crypto/bcrypt"

// Cost 8 keeps register and login latency tolerable on small instances.
const bcryptCost = 8

// HashPassword returns a bcrypt hash of the plaintext password, suitable for
// storing in the users table.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
