package password

import "golang.org/x/crypto/bcrypt"

// Hash derives a bcrypt hash with an embedded per-call salt. Errors are
// returned as-is so a failed hash can never be mistaken for a usable one.
func Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether plain matches the stored hash. The comparison is
// constant-time inside bcrypt.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
