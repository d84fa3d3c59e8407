package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
)

// ArgonParams tunes argon2id hashing. Values come from configuration so
// production and tests can trade cost against speed.
type ArgonParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// HashPassword derives an argon2id hash and encodes it in the standard
// $argon2id$ modular crypt form so parameters travel with the hash.
func HashPassword(password string, p ArgonParams) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate salt")
	}

	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// VerifyPassword re-derives the key with the parameters embedded in the
// stored hash and compares in constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, pkgerrors.New(pkgerrors.CodeInternal, "malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse hash version")
	}
	if version != argon2.Version {
		return false, pkgerrors.New(pkgerrors.CodeInternal, "unsupported argon2 version")
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse hash parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode salt")
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode key")
	}

	key := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}
