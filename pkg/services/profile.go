package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/quatton/aquakeys/pkg/aqerr"
	"github.com/quatton/aquakeys/pkg/transport"
)

type ProfileService struct {
	client Sender
}

func NewProfileService(client Sender) *ProfileService {
	return &ProfileService{client: client}
}

// Me fetches the signed-in user's profile.
func (s *ProfileService) Me(ctx context.Context) (*api.Envelope[*api.Profile], error) {
	return call[*api.Profile](ctx, s.client, &transport.Request{
		Method: http.MethodGet,
		Path:   api.MyProfilePath,
	}, nil)
}

func (s *ProfileService) UpdateMe(ctx context.Context, req api.UpdateProfileRequest) (*api.Envelope[*api.Profile], error) {
	req = trimProfile(req)
	return call[*api.Profile](ctx, s.client, &transport.Request{
		Method: http.MethodPut,
		Path:   api.MyProfilePath,
		Body:   req,
	}, req)
}

// Get fetches another user's public profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*api.Envelope[*api.Profile], error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, aqerr.Newf(aqerr.CodeValidation, "user id is required")
	}
	return call[*api.Profile](ctx, s.client, &transport.Request{
		Method: http.MethodGet,
		Path:   api.UserProfilePath(userID),
	}, nil)
}

func trimProfile(r api.UpdateProfileRequest) api.UpdateProfileRequest {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Country = strings.TrimSpace(r.Country)
	r.City = strings.TrimSpace(r.City)
	r.Street = strings.TrimSpace(r.Street)
	r.State = strings.TrimSpace(r.State)
	r.ZipCode = strings.TrimSpace(r.ZipCode)
	return r
}
