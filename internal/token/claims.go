package token

import (
	"github.com/golang-jwt/jwt/v4"

	"github.com/nextreadapp/nextread-client/internal/errors"
)

// Claims is the payload the backend encodes into the bearer token: a
// three-segment JWT whose middle segment decodes to at least sub and email,
// optionally firstTime.
type Claims struct {
	Email     string `json:"email"`
	FirstTime *bool  `json:"firstTime,omitempty"`
	jwt.RegisteredClaims
}

// Decode extracts the claims from a raw token WITHOUT verifying its
// signature. The backend is the authority on token validity; the client only
// needs the payload's self-description, and a server-rejected token surfaces
// on the first authenticated request anyway.
func Decode(raw string) (*Claims, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return nil, errors.TokenInvalid("malformed token").WithCause(err)
	}
	if claims.Subject == "" {
		return nil, errors.TokenInvalid("token payload missing subject")
	}
	return &claims, nil
}

// OnboardingRequired reports the token's own view of the firstTime flag.
// Defaults to true unless the payload explicitly encodes firstTime=false;
// an authoritative profile fetch overrides this when present.
func (c Claims) OnboardingRequired() bool {
	return c.FirstTime == nil || *c.FirstTime
}
