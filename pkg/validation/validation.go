// Package validation checks request payloads before they are sent, the way
// the sign-up and profile forms do, and reports problems per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/quatton/aquakeys/pkg/aqerr"
)

var (
	gmailRe      = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._%+-]*@gmail\.com$`)
	egPhoneRe    = regexp.MustCompile(`^01[0125][0-9]{8}$`)
	zipCodeRe    = regexp.MustCompile(`^[0-9]{7}$`)
	alphaSpaceRe = regexp.MustCompile(`^[A-Za-z\s]+$`)
	alnumSpaceRe = regexp.MustCompile(`^[A-Za-z0-9\s]+$`)
	upperRe      = regexp.MustCompile(`[A-Z]`)
	lowerRe      = regexp.MustCompile(`[a-z]`)
	digitRe      = regexp.MustCompile(`[0-9]`)
	specialRe    = regexp.MustCompile(`[^A-Za-z0-9]`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "gmail", matches(gmailRe))
	mustRegister(v, "egphone", matches(egPhoneRe))
	mustRegister(v, "zipcode", matches(zipCodeRe))
	mustRegister(v, "alphaspace", matches(alphaSpaceRe))
	mustRegister(v, "alnumspace", matches(alnumSpaceRe))
	mustRegister(v, "strongpassword", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return upperRe.MatchString(s) && lowerRe.MatchString(s) && digitRe.MatchString(s) && specialRe.MatchString(s)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("registering %s validation: %v", tag, err))
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Error lists the fields that blocked a request. Keys are JSON paths such as
// "email" or "address.zipCode".
type Error struct {
	fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", k, e.fields[k]))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns a map of field names to error messages.
func (e *Error) Fields() map[string]string {
	out := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// Validate checks s against its validate tags. The returned error carries
// aqerr.CodeValidation and unwraps to *Error.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fieldPath(fe.Namespace())
		if _, seen := fields[key]; !seen {
			fields[key] = msgForTag(fe)
		}
	}
	return aqerr.New(aqerr.CodeValidation, &Error{fields: fields})
}

// AsError extracts the field errors from err, if any.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gmail":
		return "must be a valid Gmail address"
	case "egphone":
		return "must be an Egyptian mobile number (010, 011, 012 or 015 followed by 8 digits)"
	case "zipcode":
		return "must be exactly 7 digits"
	case "alpha":
		return "must contain letters only"
	case "alphaspace":
		return "must contain letters and spaces only"
	case "alnumspace":
		return "can contain letters, numbers and spaces only"
	case "strongpassword":
		return "must contain an uppercase letter, a lowercase letter, a number and a special character"
	case "eqfield":
		return "does not match"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
