package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when the configured cost is out of bcrypt's range.
const DefaultBcryptCost = 10

// Hasher derives and checks password hashes. The plaintext is keyed through
// HMAC-SHA256 with the pepper before bcrypt, so bcrypt always sees a fixed
// 44-byte input.
type Hasher struct {
	cost   int
	pepper []byte

	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher creates a hasher with the given bcrypt cost and optional pepper.
func NewHasher(cost int, pepper string) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{
		cost:   cost,
		pepper: []byte(pepper),
	}
}

// Hash returns a salted bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(h.prepare(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches stored. Malformed stored values
// never match.
func (h *Hasher) Verify(plaintext, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), h.prepare(plaintext)) == nil
}

// VerifyDummy spends the same work as Verify against a hash nobody owns.
// Login calls it when the identifier is unknown.
func (h *Hasher) VerifyDummy(plaintext string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("authgate-dummy-password"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, h.prepare(plaintext))
}

func (h *Hasher) prepare(plaintext string) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plaintext))
	sum := mac.Sum(nil)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum)
	return out
}
