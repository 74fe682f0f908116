// Package api holds the request and response shapes of the AquaKeys
// authentication and profile API.
package api

import (
	"encoding/json"
	"fmt"

	"github.com/quatton/aquakeys/pkg/aqerr"
)

// Envelope is the response wrapper every endpoint returns. A false Succeeded
// is a business-rule failure (duplicate email, wrong password) to be shown
// to the user; it is not a transport error.
type Envelope[T any] struct {
	Succeeded bool   `json:"succeeded"`
	Message   string `json:"message"`
	Data      T      `json:"data"`
}

// DecodeEnvelope parses body as an Envelope regardless of status, so
// business failures returned with 4xx codes still reach the caller as
// results. Bodies that are not envelopes become CodeUnexpectedStatus errors.
func DecodeEnvelope[T any](status int, body []byte) (*Envelope[T], error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, aqerr.Newf(aqerr.CodeUnexpectedStatus, "status %d: %s", status, snippet(body))
	}
	if _, ok := probe["succeeded"]; !ok {
		return nil, aqerr.Newf(aqerr.CodeUnexpectedStatus, "status %d: %s", status, snippet(body))
	}

	var env Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, aqerr.New(aqerr.CodeUnexpectedStatus, fmt.Errorf("decoding response (status %d): %w", status, err))
	}
	return &env, nil
}

func snippet(body []byte) string {
	const max = 200
	if len(body) == 0 {
		return "<empty body>"
	}
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
