package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xraph/countersign/permission"
)

var testSecret = []byte("test-secret")

func TestIssueParseRoundTrip(t *testing.T) {
	s := NewSigner(testSecret, WithIssuer("countersign-test"))

	signed, err := s.Issue("alice@example.com", permission.UsersView, permission.UsersApprove)
	if err != nil {
		t.Fatal(err)
	}

	p, err := s.Parse(signed)
	if err != nil {
		t.Fatal(err)
	}
	if p.Identity != "alice@example.com" {
		t.Fatalf("expected alice@example.com, got %s", p.Identity)
	}
	if !p.Holds(permission.UsersApprove) {
		t.Fatal("expected principal to hold UsersApprove")
	}
	if p.Holds(permission.RolesApprove) {
		t.Fatal("principal must not hold permissions it was not issued")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	s := NewSigner(testSecret)
	other := NewSigner([]byte("other-secret"))

	signed, err := s.Issue("alice@example.com", permission.UsersView)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := other.Parse(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	s := NewSigner(testSecret, WithTTL(-time.Minute))

	signed, err := s.Issue("alice@example.com", permission.UsersView)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Parse(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseMissingPermissionsClaim(t *testing.T) {
	// Mint a token by hand without the permissions claim.
	claims := &Claims{
		Identity: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}

	s := NewSigner(testSecret)
	if _, err := s.Parse(signed); !errors.Is(err, permission.ErrNoPackedPermissions) {
		t.Fatalf("expected ErrNoPackedPermissions, got %v", err)
	}
}

func TestEmptyPermissionSetIsValid(t *testing.T) {
	s := NewSigner(testSecret)

	signed, err := s.Issue("alice@example.com")
	if err != nil {
		t.Fatal(err)
	}

	p, err := s.Parse(signed)
	if err != nil {
		t.Fatal(err)
	}
	if p.Permissions != "" {
		t.Fatalf("expected empty packed string, got %q", p.Permissions)
	}
}

func TestExtractBearer(t *testing.T) {
	tok, err := ExtractBearer("Bearer abc.def.ghi")
	if err != nil {
		t.Fatal(err)
	}
	if tok != "abc.def.ghi" {
		t.Fatalf("unexpected token %q", tok)
	}

	tok, err = ExtractBearer("abc.def.ghi")
	if err != nil {
		t.Fatal(err)
	}
	if tok != "abc.def.ghi" {
		t.Fatalf("unexpected token %q", tok)
	}

	if _, err := ExtractBearer(""); err == nil {
		t.Fatal("expected error for empty header")
	}
}
