// Package passwd implements the password codec: scrypt key derivation with
// per-credential random salts and constant-time verification.
package passwd

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/scrypt"
)

const (
	// scrypt cost parameters. Changing these invalidates stored hashes,
	// since the encoding carries no parameter header.
	scryptN = 32768
	scryptR = 8
	scryptP = 1

	// keyLen is the derived digest length in bytes.
	keyLen = 64
	// saltLen is the random salt length in bytes.
	saltLen = 16
	// delimiter joins the hex digest and hex salt in the stored encoding.
	delimiter = "."
)

// ScryptHasher hashes and verifies passwords using scrypt. The stored
// encoding is "digest_hex" + "." + "salt_hex" so verification can recover
// the salt without a separate column.
type ScryptHasher struct {
	logger *slog.Logger
}

// NewScryptHasher creates a ScryptHasher. A nil logger falls back to the
// default logger.
func NewScryptHasher(logger *slog.Logger) *ScryptHasher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScryptHasher{logger: logger.With("component", "passwd")}
}

// Hash derives the encoded form for a plaintext password with a fresh
// random salt. It fails only when the entropy source is exhausted; callers
// should treat that as fatal.
func (h *ScryptHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		// Fail closed rather than fall back to a predictable salt.
		return "", fmt.Errorf("generate salt: %w", err)
	}

	saltHex := hex.EncodeToString(salt)
	digest, err := derive(plaintext, saltHex)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(digest) + delimiter + saltHex, nil
}

// Verify reports whether plaintext matches the stored encoding. Malformed
// encodings fail closed: a format problem is logged and reported as a
// mismatch, never surfaced as an error.
func (h *ScryptHasher) Verify(plaintext, encoded string) bool {
	digestHex, saltHex, ok := strings.Cut(encoded, delimiter)
	if !ok || digestHex == "" || saltHex == "" {
		h.logger.Warn("stored password hash has invalid format")
		return false
	}

	stored, err := hex.DecodeString(digestHex)
	if err != nil {
		h.logger.Warn("stored password digest is not valid hex")
		return false
	}

	derived, err := derive(plaintext, saltHex)
	if err != nil {
		h.logger.Warn("password derivation failed during verify", "error", err)
		return false
	}

	// Constant-time comparison so timing cannot leak how much of the
	// digest matched.
	return subtle.ConstantTimeCompare(derived, stored) == 1
}

// derive runs the KDF over (plaintext, salt). The salt is fed to scrypt in
// its hex form, matching the encoding produced by Hash.
func derive(plaintext, saltHex string) ([]byte, error) {
	digest, err := scrypt.Key([]byte(plaintext), []byte(saltHex), scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return digest, nil
}
