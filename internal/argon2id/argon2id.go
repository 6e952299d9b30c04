package argon2id

import (
	"crypto/subtle"
	"fmt"

	"github.com/JRI98/maxogram/internal/cryptorandom"
	"golang.org/x/crypto/argon2"
)

const (
	SaltLen = 16
	time    = 1
	memory  = 64 * 1024
	threads = 1
	keyLen  = 32
)

// HashPassword derives a key from password under a fresh random salt.
func HashPassword(password string) (hash []byte, salt []byte, err error) {
	salt, err = cryptorandom.RandomBytes(SaltLen)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return argon2.IDKey([]byte(password), salt, time, memory, threads, keyLen), salt, nil
}

func VerifyPassword(password string, hash []byte, salt []byte) (bool, error) {
	if len(salt) != SaltLen {
		return false, fmt.Errorf("invalid salt length: %d", len(salt))
	}

	passwordHash := argon2.IDKey([]byte(password), salt, time, memory, threads, keyLen)

	return subtle.ConstantTimeCompare(passwordHash, hash) == 1, nil
}
