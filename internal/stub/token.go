package stub

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const tokenLifetime = 24 * time.Hour

// stubClaims mirrors the payload the production backend encodes: sub and
// email always, firstTime whenever known.
type stubClaims struct {
	Email     string `json:"email"`
	FirstTime *bool  `json:"firstTime,omitempty"`
	jwt.RegisteredClaims
}

// newSigningKey generates a random HS256 key per stub instance.
func newSigningKey() []byte {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("generate signing key: %v", err))
	}
	return key
}

// mintToken issues a signed JWT for a user.
func (s *Server) mintToken(u *stubUser) (string, error) {
	firstTime := u.FirstTime
	claims := stubClaims{
		Email:     u.Email,
		FirstTime: &firstTime,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// parseToken validates a bearer token and returns the subject user ID.
func (s *Server) parseToken(raw string) (string, error) {
	var claims stubClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return "", err
	}
	if !tok.Valid || claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}
