package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a signup password.  Cost comes from
// configuration; out-of-range values fall back to the library default
// rather than erroring, so a bad BCRYPT_COST cannot break signups.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.  The
// comparison is constant-time inside bcrypt; the login handler returns
// the same response for a bad password and an unknown username.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
