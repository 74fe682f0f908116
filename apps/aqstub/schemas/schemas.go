package schemas

import "github.com/quatton/aquakeys/pkg/api"

// Envelope is the body of every API response.
type Envelope struct {
	Succeeded bool   `json:"succeeded" doc:"Whether the operation succeeded"`
	Message   string `json:"message" doc:"Human readable outcome"`
	Data      any    `json:"data" doc:"Operation payload, null on failure"`
}

// EnvelopeOutput lets a handler pick the status code of an envelope reply.
type EnvelopeOutput struct {
	Status int
	Body   Envelope
}

func OK(msg string, data any) *EnvelopeOutput {
	return &EnvelopeOutput{Status: 200, Body: Envelope{Succeeded: true, Message: msg, Data: data}}
}

func Failed(status int, msg string) *EnvelopeOutput {
	return &EnvelopeOutput{Status: status, Body: Envelope{Succeeded: false, Message: msg}}
}

type RegisterInput struct {
	Body api.RegisterRequest
}

type SignInInput struct {
	Body api.SignInRequest
}

type RefreshTokenInput struct {
	Body api.RefreshTokenRequest
}

type ConfirmEmailInput struct {
	UserID   string `query:"UserId" doc:"Id of the user being confirmed"`
	Token    string `query:"Token" doc:"Confirmation token from the email"`
	ClientID string `query:"ClientId" doc:"Client the link was issued for"`
}

type EmailInput struct {
	Body api.EmailRequest
}

type ResetPasswordInput struct {
	Body api.ResetPasswordRequest
}

type ChangePasswordInput struct {
	Body api.ChangePasswordRequest
}

type UpdateProfileInput struct {
	Body api.UpdateProfileRequest
}

type UserProfileInput struct {
	UserID string `path:"userId" doc:"Id of the user"`
}

type HealthOutput struct {
	Body struct {
		Status string `json:"status" example:"ok"`
	}
}
