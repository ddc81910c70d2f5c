package server

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"projectmanager/internal/domain/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer inputs.
	maxPasswordBytes  = 72
)

// DecodeObject accepts only a non-empty JSON object. An absent body, an
// array, a scalar, null and {} are all rejected as invalid input.
func DecodeObject(raw []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.ErrInvalidInput
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &payload); err != nil || len(payload) == 0 {
		return nil, errors.ErrInvalidInput
	}
	return payload, nil
}

// RequireFields fails on the first field absent from payload.
func RequireFields(payload map[string]json.RawMessage, fields ...string) error {
	for _, field := range fields {
		if _, ok := payload[field]; !ok {
			return &errors.MissingFieldError{Field: field}
		}
	}
	return nil
}

// ParseID converts a path segment to a record id. Anything that is not an
// unsigned decimal integer of at least 1 is rejected before a lookup happens.
func ParseID(raw string) (int64, error) {
	if raw == "" || raw[0] < '0' || raw[0] > '9' {
		return 0, errors.ErrInvalidIDFormat
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.ErrInvalidIDFormat
	}
	return id, nil
}

// CheckPasswordLength enforces the length bounds on a payload's password
// field when one is present, independent of the rest of the payload. The
// minimum counts characters, the maximum counts bytes.
func CheckPasswordLength(payload map[string]json.RawMessage) error {
	raw, ok := payload["password"]
	if !ok {
		return nil
	}
	var password string
	if err := json.Unmarshal(raw, &password); err != nil {
		return errors.ErrInvalidInput
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return errors.ErrPasswordTooShort
	}
	if len(password) > maxPasswordBytes {
		return errors.ErrPasswordTooLong
	}
	return nil
}

// newValidator reports struct fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func readObject(ctx *gin.Context) (map[string]json.RawMessage, error) {
	raw, err := ctx.GetRawData()
	if err != nil {
		return nil, errors.ErrInvalidInput
	}
	return DecodeObject(raw)
}

// bindObject reads the request body, checks its shape and required fields,
// then decodes and validates it into dst.
func (api *ProjectAPI) bindObject(ctx *gin.Context, dst any, required ...string) (map[string]json.RawMessage, error) {
	payload, err := readObject(ctx)
	if err != nil {
		return nil, err
	}
	if err := api.decodeValidated(payload, dst, required...); err != nil {
		return nil, err
	}
	return payload, nil
}

func (api *ProjectAPI) decodeValidated(payload map[string]json.RawMessage, dst any, required ...string) error {
	if err := RequireFields(payload, required...); err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.ErrInvalidInput
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.ErrInvalidInput
	}
	if err := api.validate.Struct(dst); err != nil {
		return validationErrorToErrorResponse(err)
	}
	return nil
}

func validationErrorToErrorResponse(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.ErrInvalidInput
	}

	verr := verrs[0]
	switch verr.Tag() {
	case "required":
		return &errors.FieldError{Field: verr.Field(), Err: errors.ErrEmptyField}
	case "max":
		return &errors.FieldError{Field: verr.Field(), Err: errors.ErrFieldTooLong}
	case "min":
		if verr.Field() == "password" {
			return errors.ErrPasswordTooShort
		}
	case "eqfield":
		return errors.ErrPasswordMismatch
	case "email":
		return errors.ErrInvalidEmail
	}
	return errors.ErrInvalidInput
}

// optionalNonEmpty rejects a present-but-blank value in a partial update.
func optionalNonEmpty(field string, value *string) error {
	if value != nil && strings.TrimSpace(*value) == "" {
		return &errors.FieldError{Field: field, Err: errors.ErrEmptyField}
	}
	return nil
}
