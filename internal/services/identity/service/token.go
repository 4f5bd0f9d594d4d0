package service

import (
	"time"

	perr "orgcore/internal/platform/errors"
	pnet "orgcore/internal/platform/net"
	ptime "orgcore/internal/platform/time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the bearer token body
type Claims struct {
	Org string `json:"org"`
	MFA bool   `json:"mfa,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  ptime.Clock
}

// NewTokens returns a token codec; an empty secret is refused
func NewTokens(secret, issuer string, ttl time.Duration, clock ptime.Clock) (*Tokens, error) {
	if len(secret) < 16 {
		return nil, perr.Validationf("secret", "jwt secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, clock: ptime.Or(clock)}, nil
}

// Issue signs a token for p
func (t *Tokens) Issue(p pnet.Principal) (string, error) {
	if p.UserID == "" || p.OrgID == "" {
		return "", perr.Validationf("principal", "user and org are required")
	}
	now := t.clock.Now()
	c := Claims{
		Org: p.OrgID,
		MFA: p.MFAVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "sign token")
	}
	return s, nil
}

// Parse verifies raw and returns its principal
func (t *Tokens) Parse(raw string) (pnet.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return t.secret, nil }, opts...)
	if err != nil {
		return pnet.Principal{}, perr.Wrap(err, perr.ErrorCodeUnauthorized, "invalid bearer token")
	}
	if c.Subject == "" || c.Org == "" {
		return pnet.Principal{}, perr.Unauthorizedf("invalid bearer token")
	}
	return pnet.Principal{UserID: c.Subject, OrgID: c.Org, MFAVerified: c.MFA}, nil
}
