package aqsdk

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is what the CLI shows about an access token. The token is
// decoded without verifying its signature; only the server can do that.
type AccessClaims struct {
	Subject string
	Email   string
	Name    string
	Issuer  string
	Iat     int64
	Exp     int64
}

// ExpiresAt returns the expiry, or the zero time when the token has none.
func (c *AccessClaims) ExpiresAt() time.Time {
	if c.Exp == 0 {
		return time.Time{}
	}
	return time.Unix(c.Exp, 0)
}

// Expired reports whether the token had expired at now.
func (c *AccessClaims) Expired(now time.Time) bool {
	return c.Exp != 0 && !now.Before(c.ExpiresAt())
}

func ParseTokenClaims(tokenStr string) (jwt.MapClaims, error) {
	var claims jwt.MapClaims
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(tokenStr, &claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseAccessClaims decodes the claims the API puts in its access tokens,
// accepting both the short JWT names and the long .NET claim URIs.
func ParseAccessClaims(tokenStr string) (*AccessClaims, error) {
	mc, err := ParseTokenClaims(tokenStr)
	if err != nil {
		return nil, err
	}

	ac := &AccessClaims{
		Subject: firstString(mc, "sub", "nameid", "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"),
		Email:   firstString(mc, "email", "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"),
		Name:    firstString(mc, "name", "unique_name", "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"),
		Issuer:  firstString(mc, "iss"),
		Iat:     numeric(mc["iat"]),
		Exp:     numeric(mc["exp"]),
	}
	return ac, nil
}

func firstString(mc jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := mc[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatInt(int64(v), 10)
		case nil:
		default:
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

func numeric(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}
