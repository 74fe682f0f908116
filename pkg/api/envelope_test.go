package api

import (
	"testing"

	"github.com/quatton/aquakeys/pkg/aqerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelopeSuccess(t *testing.T) {
	body := []byte(`{"succeeded":true,"message":"ok","data":{"accessToken":"at-2","refreshToken":"rt-2","user":{"id":"u1","email":"a@gmail.com"}}}`)

	env, err := DecodeEnvelope[*TokenGrant](200, body)
	require.NoError(t, err)
	assert.True(t, env.Succeeded)
	require.NotNil(t, env.Data)
	assert.Equal(t, "at-2", env.Data.AccessToken)
	assert.Equal(t, "rt-2", env.Data.RefreshToken)
	assert.Equal(t, "u1", env.Data.User.ID)
}

func TestDecodeEnvelopeBusinessFailureOnClientError(t *testing.T) {
	body := []byte(`{"succeeded":false,"message":"Email already registered","data":null}`)

	env, err := DecodeEnvelope[any](400, body)
	require.NoError(t, err, "a business failure is a result, not an error")
	assert.False(t, env.Succeeded)
	assert.Equal(t, "Email already registered", env.Message)
}

func TestDecodeEnvelopeRejectsNonEnvelopes(t *testing.T) {
	for _, body := range []string{``, `<html>bad gateway</html>`, `{"title":"Unauthorized","status":401}`} {
		_, err := DecodeEnvelope[any](502, []byte(body))
		assert.True(t, aqerr.IsCode(err, aqerr.CodeUnexpectedStatus), "body %q", body)
	}
}

func TestUserProfilePathEscapes(t *testing.T) {
	assert.Equal(t, "/api/v1/Profiles/abc", UserProfilePath("abc"))
	assert.Equal(t, "/api/v1/Profiles/a%2Fb", UserProfilePath("a/b"))
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"0": RoleClient, "client": RoleClient, "1": RoleLandlord, "Land Lord": RoleLandlord, "landlord": RoleLandlord} {
		got, ok := ParseRole(in)
		if !ok || got != want {
			t.Errorf("ParseRole(%q) = %v, %v; want %v", in, got, ok, want)
		}
	}
	if _, ok := ParseRole("admin"); ok {
		t.Error("ParseRole(admin) should fail")
	}
	if RoleLandlord.String() != "Landlord" || Role(7).String() != "Unknown" {
		t.Error("unexpected role names")
	}
}
