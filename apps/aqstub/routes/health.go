package routes

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/aquakeys/apps/aqstub/schemas"
)

func RegisterHealth(hapi huma.API) {
	huma.Register(hapi, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness probe",
		Tags:        []string{TagHealth.String()},
	}, func(ctx context.Context, input *struct{}) (*schemas.HealthOutput, error) {
		resp := &schemas.HealthOutput{}
		resp.Body.Status = "ok"
		return resp, nil
	})
}
