// Package token issues and verifies the bearer tokens the admin console
// authenticates with. The packed permission string rides in a custom claim,
// so a token holds the caller's entire permission set without a database
// round trip.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xraph/countersign"
	"github.com/xraph/countersign/permission"
)

// ErrInvalidToken is returned when a token fails signature or claim checks.
var ErrInvalidToken = errors.New("token: invalid token")

// Claims carries the countersign custom claims alongside the registered set.
// Permissions is a pointer so a token minted without the claim stays
// distinguishable from one carrying an empty permission set.
type Claims struct {
	Identity    string  `json:"uid"`
	Permissions *string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HMAC-signed tokens.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// Option configures a Signer.
type Option func(*Signer)

// WithIssuer sets the iss claim on issued tokens.
func WithIssuer(issuer string) Option {
	return func(s *Signer) { s.issuer = issuer }
}

// WithTTL sets the token lifetime. Defaults to 24 hours.
func WithTTL(ttl time.Duration) Option {
	return func(s *Signer) { s.ttl = ttl }
}

// NewSigner creates a Signer with the given HMAC secret.
func NewSigner(secret []byte, opts ...Option) *Signer {
	s := &Signer{
		secret: secret,
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue mints a token for an identity holding the given permissions.
func (s *Signer) Issue(identity string, names ...permission.Name) (string, error) {
	packed := permission.PackNames(names...)
	now := time.Now()
	claims := &Claims{
		Identity:    identity,
		Permissions: &packed,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the principal it carries.
// A token without the permissions claim fails with
// permission.ErrNoPackedPermissions.
func (s *Signer) Parse(tokenString string) (*countersign.Principal, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := permission.UnpackClaim(claims.Permissions); err != nil {
		return nil, err
	}
	identity := claims.Identity
	if identity == "" {
		identity = claims.Subject
	}
	return &countersign.Principal{
		Identity:    identity,
		Permissions: *claims.Permissions,
	}, nil
}

// ExtractBearer pulls the token out of an Authorization header value.
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: missing authorization header", ErrInvalidToken)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1]), nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "", fmt.Errorf("%w: malformed authorization header", ErrInvalidToken)
}
