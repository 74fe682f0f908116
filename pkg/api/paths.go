package api

import "net/url"

const (
	AuthBase    = "/api/v1/Authentication"
	ProfileBase = "/api/v1/Profiles"

	RegisterPath           = AuthBase + "/register"
	SignInPath             = AuthBase + "/sign-in"
	RefreshTokenPath       = AuthBase + "/refresh-token"
	ConfirmEmailPath       = AuthBase + "/confirm-email"
	ResendConfirmationPath = AuthBase + "/resend-confirmation"
	ForgotPasswordPath     = AuthBase + "/forgot-password"
	ResetPasswordPath      = AuthBase + "/reset-password"
	ChangePasswordPath     = AuthBase + "/change-password"

	MyProfilePath = ProfileBase + "/me"
)

// UserProfilePath returns the public profile path for userID.
func UserProfilePath(userID string) string {
	return ProfileBase + "/" + url.PathEscape(userID)
}
