package security

import (
	"errors"
	"testing"
	"time"

	"EduTalk/tools/errs"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	token, expireAt, err := Generate(opts, "user-42")
	if err != nil {
		t.Fatal(err)
	}
	if !expireAt.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}
	sub, err := Verify(opts, token)
	if err != nil {
		t.Fatal(err)
	}
	if sub != "user-42" {
		t.Fatalf("subject = %q", sub)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	past := time.Now().Add(-time.Hour)
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "user-42",
		"iat": past.Add(-time.Hour).Unix(),
		"exp": past.Unix(),
	})
	token, err := tok.SignedString(opts.Secret)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Verify(opts, token)
	if !errors.Is(err, errs.ErrTokenExpired) {
		t.Fatalf("want token-expired, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := Generate(DefaultOptions([]byte("secret-a")), "user-42")
	if err != nil {
		t.Fatal(err)
	}
	_, err = Verify(DefaultOptions([]byte("secret-b")), token)
	if !errors.Is(err, errs.ErrTokenInvalid) {
		t.Fatalf("want token-invalid, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := Verify(DefaultOptions([]byte("test-secret")), "not.a.token")
	if !errors.Is(err, errs.ErrTokenInvalid) {
		t.Fatalf("want token-invalid, got %v", err)
	}
}
