package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/aquakeys/apps/aqstub/services/accounts"
)

func RegisterRoutes(hapi huma.API, svc *accounts.Service) {
	RegisterHealth(hapi)
	RegisterAuth(hapi, svc)
	RegisterProfiles(hapi, svc)
}
