package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt hash using the given cost.  Costs below
// the bcrypt minimum fall back to the library default.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// BcryptHasher carries a configured cost so the engine can hash without
// knowing about bcrypt.
type BcryptHasher struct{ cost int }

func NewBcryptHasher(cost int) BcryptHasher { return BcryptHasher{cost: cost} }

func (h BcryptHasher) Hash(plain string) (string, error) { return HashPassword(plain, h.cost) }

func (h BcryptHasher) Verify(hash, plain string) bool { return VerifyPassword(hash, plain) }
