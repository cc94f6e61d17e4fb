package orchestrators

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SweepTokenScope is the claim value a sweep invocation token must carry.
const SweepTokenScope = "renewal-sweep"

// Sweep token errors.
var (
	ErrSweepTokenInvalid = errors.New("sweep token is invalid")
	ErrSweepTokenScope   = errors.New("sweep token has wrong scope")
)

// sweepClaims are the registered claims plus the scope marker.
type sweepClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// MintSweepToken issues a short-lived HS256 token that authorizes one
// scheduler to trigger the renewal sweep.
// PRE: secret is non-empty; ttl > 0
// POST: Returns a signed compact JWT with scope=renewal-sweep
func MintSweepToken(secret []byte, now time.Time, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("sweep token secret is required")
	}

	claims := sweepClaims{
		Scope: SweepTokenScope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign sweep token: %w", err)
	}
	return signed, nil
}

// VerifySweepToken checks signature, expiry and scope of a sweep token.
// POST: nil only for a currently valid token with the sweep scope
func VerifySweepToken(secret []byte, tokenString string) error {
	var claims sweepClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSweepTokenInvalid, err)
	}
	if claims.Scope != SweepTokenScope {
		return ErrSweepTokenScope
	}
	return nil
}
