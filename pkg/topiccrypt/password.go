package topiccrypt

import "golang.org/x/crypto/bcrypt"

// HashRoomPassword hashes a room join password for storage.
func HashRoomPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyRoomPassword reports whether password matches the stored hash.
func VerifyRoomPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
