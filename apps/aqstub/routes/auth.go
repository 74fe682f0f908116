package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/aquakeys/apps/aqstub/schemas"
	"github.com/quatton/aquakeys/apps/aqstub/services/accounts"
	"github.com/quatton/aquakeys/apps/aqstub/services/iam"
	"github.com/quatton/aquakeys/pkg/api"
)

func RegisterAuth(hapi huma.API, svc *accounts.Service) {
	tags := []string{TagAuth.String()}

	huma.Register(hapi, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        api.RegisterPath,
		Summary:     "Create an account",
		Tags:        tags,
	}, func(ctx context.Context, input *schemas.RegisterInput) (*schemas.EnvelopeOutput, error) {
		user, err := svc.Register(ctx, input.Body)
		return reply("Account created. Check your email to confirm it.", user, err)
	})

	huma.Register(hapi, huma.Operation{
		OperationID: "sign-in",
		Method:      http.MethodPost,
		Path:        api.SignInPath,
		Summary:     "Sign in with email and password",
		Tags:        tags,
	}, func(ctx context.Context, input *schemas.SignInInput) (*schemas.EnvelopeOutput, error) {
		grant, err := svc.SignIn(ctx, input.Body)
		return reply("Signed in", grant, err)
	})

	huma.Register(hapi, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        api.RefreshTokenPath,
		Summary:     "Exchange a refresh token for a new token pair",
		Description: "The presented refresh token is invalidated; the response carries its replacement.",
		Tags:        tags,
	}, func(ctx context.Context, input *schemas.RefreshTokenInput) (*schemas.EnvelopeOutput, error) {
		grant, err := svc.Refresh(ctx, input.Body.RefreshToken)
		return reply("", grant, err)
	})

	huma.Register(hapi, huma.Operation{
		OperationID: "confirm-email",
		Method:      http.MethodGet,
		Path:        api.ConfirmEmailPath,
		Summary:     "Confirm an email address",
		Tags:        tags,
	}, func(ctx context.Context, input *schemas.ConfirmEmailInput) (*schemas.EnvelopeOutput, error) {
		err := svc.ConfirmEmail(ctx, api.ConfirmEmailRequest{
			UserID:   input.UserID,
			Token:    input.Token,
			ClientID: input.ClientID,
		})
		return reply("Email confirmed", nil, err)
	})

	huma.Register(hapi, huma.Operation{
		OperationID: "resend-confirmation",
		Method:      http.MethodPost,
		Path:        api.ResendConfirmationPath,
		Summary:     "Send the confirmation email again",
		Tags:        tags,
	}, func(ctx context.Context, input *schemas.EmailInput) (*schemas.EnvelopeOutput, error) {
		err := svc.ResendConfirmation(ctx, input.Body.Email)
		return reply("If the account exists, a confirmation email was sent", nil, err)
	})

	huma.Register(hapi, huma.Operation{
		OperationID: "forgot-password",
		Method:      http.MethodPost,
		Path:        api.ForgotPasswordPath,
		Summary:     "Request a password reset email",
		Tags:        tags,
	}, func(ctx context.Context, input *schemas.EmailInput) (*schemas.EnvelopeOutput, error) {
		err := svc.ForgotPassword(ctx, input.Body.Email)
		return reply("If the account exists, a reset email was sent", nil, err)
	})

	huma.Register(hapi, huma.Operation{
		OperationID: "reset-password",
		Method:      http.MethodPost,
		Path:        api.ResetPasswordPath,
		Summary:     "Set a new password with a reset token",
		Tags:        tags,
	}, func(ctx context.Context, input *schemas.ResetPasswordInput) (*schemas.EnvelopeOutput, error) {
		err := svc.ResetPassword(ctx, input.Body)
		return reply("Password reset", nil, err)
	})

	huma.Register(hapi, huma.Operation{
		OperationID: "change-password",
		Method:      http.MethodPost,
		Path:        api.ChangePasswordPath,
		Summary:     "Change the signed-in user's password",
		Tags:        tags,
		Security:    BearerAuth,
	}, func(ctx context.Context, input *schemas.ChangePasswordInput) (*schemas.EnvelopeOutput, error) {
		userID, ok := iam.UserID(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("Authentication required")
		}
		err := svc.ChangePassword(ctx, userID, input.Body)
		return reply("Password changed", nil, err)
	})
}
