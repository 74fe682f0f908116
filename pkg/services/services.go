// Package services wraps the authentication and profile endpoints. Each call
// validates its input first; an invalid payload is never sent. Responses are
// returned as envelopes, so a business failure (Succeeded == false) is a
// normal result and only transport or auth failures are errors.
package services

import (
	"context"
	"encoding/json"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/quatton/aquakeys/pkg/transport"
	"github.com/quatton/aquakeys/pkg/validation"
)

// Sender performs one API call. *transport.Client implements it.
type Sender interface {
	Send(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

// Result is an envelope whose data the caller does not need.
type Result = api.Envelope[json.RawMessage]

func call[T any](ctx context.Context, s Sender, req *transport.Request, input any) (*api.Envelope[T], error) {
	if input != nil {
		if err := validation.Validate(input); err != nil {
			return nil, err
		}
	}

	resp, err := s.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return api.DecodeEnvelope[T](resp.StatusCode, resp.Body)
}
