package aqsdk

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func TestParseAccessClaims_ShortNames(t *testing.T) {
	tok := signed(t, jwt.MapClaims{
		"sub":   "u-1",
		"email": "mona@gmail.com",
		"name":  "Mona Ali",
		"iss":   "aquakeys",
		"iat":   1000,
		"exp":   2000,
	})

	c, err := ParseAccessClaims(tok)
	if err != nil {
		t.Fatalf("ParseAccessClaims error: %v", err)
	}
	if c.Subject != "u-1" || c.Email != "mona@gmail.com" || c.Name != "Mona Ali" || c.Issuer != "aquakeys" {
		t.Fatalf("unexpected claims: %#v", c)
	}
	if c.Iat != 1000 || c.Exp != 2000 {
		t.Fatalf("unexpected times: iat=%d exp=%d", c.Iat, c.Exp)
	}
	if !c.ExpiresAt().Equal(time.Unix(2000, 0)) {
		t.Fatalf("ExpiresAt = %v", c.ExpiresAt())
	}
}

func TestParseAccessClaims_DotNetNames(t *testing.T) {
	tok := signed(t, jwt.MapClaims{
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier": "u-2",
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress":   "ali@gmail.com",
		"exp": 2000,
	})

	c, err := ParseAccessClaims(tok)
	if err != nil {
		t.Fatalf("ParseAccessClaims error: %v", err)
	}
	if c.Subject != "u-2" || c.Email != "ali@gmail.com" {
		t.Fatalf("unexpected claims: %#v", c)
	}
}

func TestAccessClaims_Expired(t *testing.T) {
	c := &AccessClaims{Exp: 2000}
	if c.Expired(time.Unix(1999, 0)) {
		t.Fatal("token should not be expired before exp")
	}
	if !c.Expired(time.Unix(2000, 0)) {
		t.Fatal("token should be expired at exp")
	}

	noExp := &AccessClaims{}
	if noExp.Expired(time.Now()) || !noExp.ExpiresAt().IsZero() {
		t.Fatal("token without exp never expires")
	}
}

func TestParseAccessClaims_Garbage(t *testing.T) {
	if _, err := ParseAccessClaims("not-a-jwt"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}
