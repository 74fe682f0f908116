package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/quatton/aquakeys/pkg/transport"
)

type AuthService struct {
	client Sender
}

func NewAuthService(client Sender) *AuthService {
	return &AuthService{client: client}
}

func (s *AuthService) Register(ctx context.Context, req api.RegisterRequest) (*Result, error) {
	req.Email = strings.TrimSpace(req.Email)
	return call[json.RawMessage](ctx, s.client, &transport.Request{
		Method: http.MethodPost,
		Path:   api.RegisterPath,
		Body:   req,
	}, req)
}

// SignIn exchanges credentials for a token grant. Storing the grant is the
// session controller's job.
func (s *AuthService) SignIn(ctx context.Context, req api.SignInRequest) (*api.Envelope[*api.TokenGrant], error) {
	req.Email = strings.TrimSpace(req.Email)
	return call[*api.TokenGrant](ctx, s.client, &transport.Request{
		Method: http.MethodPost,
		Path:   api.SignInPath,
		Body:   req,
	}, req)
}

func (s *AuthService) ConfirmEmail(ctx context.Context, req api.ConfirmEmailRequest) (*Result, error) {
	return call[json.RawMessage](ctx, s.client, &transport.Request{
		Method: http.MethodGet,
		Path:   api.ConfirmEmailPath,
		Query: url.Values{
			"UserId":   {req.UserID},
			"Token":    {req.Token},
			"ClientId": {req.ClientID},
		},
	}, req)
}

func (s *AuthService) ResendConfirmation(ctx context.Context, email string) (*Result, error) {
	req := api.EmailRequest{Email: strings.TrimSpace(email)}
	return call[json.RawMessage](ctx, s.client, &transport.Request{
		Method: http.MethodPost,
		Path:   api.ResendConfirmationPath,
		Body:   req,
	}, req)
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*Result, error) {
	req := api.EmailRequest{Email: strings.TrimSpace(email)}
	return call[json.RawMessage](ctx, s.client, &transport.Request{
		Method: http.MethodPost,
		Path:   api.ForgotPasswordPath,
		Body:   req,
	}, req)
}

func (s *AuthService) ResetPassword(ctx context.Context, req api.ResetPasswordRequest) (*Result, error) {
	return call[json.RawMessage](ctx, s.client, &transport.Request{
		Method: http.MethodPost,
		Path:   api.ResetPasswordPath,
		Body:   req,
	}, req)
}

func (s *AuthService) ChangePassword(ctx context.Context, req api.ChangePasswordRequest) (*Result, error) {
	return call[json.RawMessage](ctx, s.client, &transport.Request{
		Method: http.MethodPost,
		Path:   api.ChangePasswordPath,
		Body:   req,
	}, req)
}
