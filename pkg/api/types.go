package api

import "strings"

// User is the profile record returned alongside tokens.
type User struct {
	ID          string `json:"id" yaml:"id"`
	Email       string `json:"email" yaml:"email"`
	FirstName   string `json:"firstName" yaml:"firstName"`
	LastName    string `json:"lastName" yaml:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty" yaml:"phoneNumber,omitempty"`
}

// TokenGrant is the data of a successful sign-in or refresh.
type TokenGrant struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}

type Address struct {
	Country string `json:"country" validate:"required,min=2,alpha"`
	City    string `json:"city" validate:"required,min=2,alpha"`
	Street  string `json:"street,omitempty" validate:"omitempty,alnumspace"`
	State   string `json:"state,omitempty" validate:"omitempty,alphaspace"`
	ZipCode string `json:"zipCode,omitempty" validate:"omitempty,zipcode"`
}

// Role is the account type chosen at registration.
type Role int

const (
	RoleClient Role = iota
	RoleLandlord
)

func (r Role) String() string {
	switch r {
	case RoleClient:
		return "Client"
	case RoleLandlord:
		return "Landlord"
	}
	return "Unknown"
}

// ParseRole accepts the role name or its number.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "client":
		return RoleClient, true
	case "1", "landlord", "land lord":
		return RoleLandlord, true
	}
	return 0, false
}

type RegisterRequest struct {
	FirstName       string  `json:"firstName" validate:"required,min=2,max=20,alpha"`
	LastName        string  `json:"lastName" validate:"required,min=2,max=20,alpha"`
	Email           string  `json:"email" validate:"required,gmail"`
	PhoneNumber     string  `json:"phoneNumber" validate:"required,egphone"`
	Address         Address `json:"address"`
	Role            Role    `json:"role" validate:"oneof=0 1"`
	Password        string  `json:"password" validate:"required,min=8,max=32,strongpassword"`
	ConfirmPassword string  `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,gmail"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ConfirmEmailRequest is sent as the UserId, Token and ClientId query
// parameters of the confirmation link.
type ConfirmEmailRequest struct {
	UserID   string `validate:"required"`
	Token    string `validate:"required"`
	ClientID string `validate:"required"`
}

// EmailRequest is the body of resend-confirmation and forgot-password.
type EmailRequest struct {
	Email string `json:"email" validate:"required,gmail"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=32,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=8,max=32,strongpassword"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required,eqfield=NewPassword"`
}

// Profile is the editable profile of the signed-in user.
type Profile struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Email       string   `json:"email,omitempty" yaml:"email,omitempty"`
	PhoneNumber string   `json:"phoneNumber,omitempty" yaml:"phoneNumber,omitempty"`
	FirstName   string   `json:"firstName" yaml:"firstName"`
	LastName    string   `json:"lastName" yaml:"lastName"`
	Country     string   `json:"country" yaml:"country"`
	City        string   `json:"city" yaml:"city"`
	Street      string   `json:"street,omitempty" yaml:"street,omitempty"`
	State       string   `json:"state" yaml:"state"`
	ZipCode     string   `json:"zipCode" yaml:"zipCode"`
	Roles       []string `json:"roles,omitempty" yaml:"roles,omitempty"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=20,alpha"`
	LastName  string `json:"lastName" validate:"required,min=2,max=20,alpha"`
	Country   string `json:"country" validate:"required,min=2,alpha"`
	City      string `json:"city" validate:"required,min=2,alpha"`
	Street    string `json:"street,omitempty"`
	State     string `json:"state" validate:"required,alphaspace"`
	ZipCode   string `json:"zipCode" validate:"required,zipcode"`
}
