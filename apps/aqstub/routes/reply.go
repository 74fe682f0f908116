package routes

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/quatton/aquakeys/apps/aqstub/schemas"
	"github.com/quatton/aquakeys/apps/aqstub/services/accounts"
)

// reply turns a service result into an envelope. Business failures are
// envelopes too; anything else is a 500.
func reply(msg string, data any, err error) (*schemas.EnvelopeOutput, error) {
	if err == nil {
		return schemas.OK(msg, data), nil
	}
	var f *accounts.Failure
	if errors.As(err, &f) {
		return schemas.Failed(f.Status, f.Message), nil
	}
	return nil, huma.Error500InternalServerError("internal error", err)
}
