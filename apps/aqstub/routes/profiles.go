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

func RegisterProfiles(hapi huma.API, svc *accounts.Service) {
	tags := []string{TagProfiles.String()}

	huma.Register(hapi, huma.Operation{
		OperationID: "get-my-profile",
		Method:      http.MethodGet,
		Path:        api.MyProfilePath,
		Summary:     "Get the signed-in user's profile",
		Tags:        tags,
		Security:    BearerAuth,
	}, func(ctx context.Context, input *struct{}) (*schemas.EnvelopeOutput, error) {
		userID, ok := iam.UserID(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("Authentication required")
		}
		profile, err := svc.Profile(ctx, userID)
		return reply("", profile, err)
	})

	huma.Register(hapi, huma.Operation{
		OperationID: "update-my-profile",
		Method:      http.MethodPut,
		Path:        api.MyProfilePath,
		Summary:     "Update the signed-in user's profile",
		Tags:        tags,
		Security:    BearerAuth,
	}, func(ctx context.Context, input *schemas.UpdateProfileInput) (*schemas.EnvelopeOutput, error) {
		userID, ok := iam.UserID(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("Authentication required")
		}
		profile, err := svc.UpdateProfile(ctx, userID, input.Body)
		return reply("Profile updated", profile, err)
	})

	huma.Register(hapi, huma.Operation{
		OperationID: "get-user-profile",
		Method:      http.MethodGet,
		Path:        api.ProfileBase + "/{userId}",
		Summary:     "Get another user's public profile",
		Tags:        tags,
		Security:    BearerAuth,
	}, func(ctx context.Context, input *schemas.UserProfileInput) (*schemas.EnvelopeOutput, error) {
		if _, ok := iam.UserID(ctx); !ok {
			return nil, huma.Error401Unauthorized("Authentication required")
		}
		profile, err := svc.PublicProfile(ctx, input.UserID)
		return reply("", profile, err)
	})
}
