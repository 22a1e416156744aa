package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// DefaultTTL is how long a freshly issued reset token stays valid.
const DefaultTTL = time.Hour

const entropyBytes = 16

// Issuer mints single-use password-reset tokens.
type Issuer struct {
	TTL time.Duration
	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

func NewIssuer() *Issuer { return &Issuer{TTL: DefaultTTL} }

// Issue returns an opaque token and its expiry instant. The token carries
// 16 bytes of entropy rendered as hex; an entropy-source failure is an
// error, never a weaker token.
func (i *Issuer) Issue() (string, time.Time, error) {
	buf := make([]byte, entropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("generate reset token: %w", err)
	}
	ttl := i.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	return hex.EncodeToString(buf), now().Add(ttl), nil
}
