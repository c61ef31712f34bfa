package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/dealtracker-backend/pkg/errors"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes int64 = 1 << 20

var (
	validate        = newValidator()
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// fieldMessages renders a failed rule for API clients; param is the rule argument.
var fieldMessages = map[string]func(param string) string{
	"required": func(string) string { return "is required" },
	"min":      func(p string) string { return "must be at least " + p + " characters" },
	"max":      func(p string) string { return "must be at most " + p + " characters" },
	"email":    func(string) string { return "must be a valid email" },
	"eqfield":  func(p string) string { return "does not match " + strings.ToLower(p) },
	"username": func(string) string { return "may only contain letters, numbers, dashes and underscores" },
	"uuid":     func(string) string { return "must be a valid id" },
	"url":      func(string) string { return "must be a valid url" },
	"oneof":    func(p string) string { return "must be one of: " + strings.ReplaceAll(p, " ", ", ") },
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register username validation: %v", err))
	}
	return v
}

// DecodeJSONBody strictly decodes one JSON object into dest and runs its validate tags.
// Unknown fields, trailing data and bodies over MaxBodyBytes are validation errors.
func DecodeJSONBody(r *http.Request, dest any) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return bodyError(err)
	}
	if dec.More() {
		return bodyError(errors.New("body must contain a single JSON object"))
	}
	if err := validate.Struct(dest); err != nil {
		return fieldErrors(err)
	}
	return nil
}

func bodyError(err error) *pkgerrors.Error {
	reason := err.Error()
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		reason = "body is required"
	case errors.As(err, &tooLarge):
		reason = fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").WithDetails(map[string]any{"error": reason})
}

func fieldErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		msg := "is invalid"
		if render, ok := fieldMessages[fe.Tag()]; ok {
			msg = render(fe.Param())
		}
		details[fe.Field()] = msg
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}
