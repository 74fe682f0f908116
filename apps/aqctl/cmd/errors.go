package cmd

import (
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/quatton/aquakeys/pkg/aqerr"
	"github.com/quatton/aquakeys/pkg/aqsdk"
	"github.com/quatton/aquakeys/pkg/validation"
)

// rejectedError is a call the API answered with succeeded=false.
type rejectedError struct {
	message string
}

func (e *rejectedError) Error() string {
	if e.message == "" {
		return "request was rejected"
	}
	return e.message
}

// exitIfSdkError inspects errors returned from the SDK and emits user-friendly
// guidance before exiting. Non-SDK errors fall back to log.Fatalf.
func exitIfSdkError(err error) {
	if err == nil {
		return
	}

	if ve, ok := validation.AsError(err); ok {
		fields := ve.Fields()
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		for _, k := range keys {
			b.WriteString("\n  " + k + ": " + fields[k])
		}
		log.Fatalf("invalid input:%s", b.String())
	}

	var rejected *rejectedError
	switch {
	case errors.As(err, &rejected):
		log.Fatalf("error: %s", rejected.Error())
	case errors.Is(err, aqsdk.ErrSignInFailed):
		log.Fatalf("sign-in failed: check your email and password")
	case aqerr.IsCode(err, aqerr.CodeUnauthorized):
		log.Fatalf("authentication required: run 'aqctl auth login' (%v)", err)
	case aqerr.IsCode(err, aqerr.CodeRefreshFailed):
		log.Fatalf("session expired: run 'aqctl auth login' (%v)", err)
	case aqerr.IsCode(err, aqerr.CodeTransport):
		log.Fatalf("could not reach the API: %v", err)
	case aqerr.IsCode(err, aqerr.CodeStore):
		log.Fatalf("session store unavailable, try --store file (%v)", err)
	default:
		log.Fatalf("%v", err)
	}
}
