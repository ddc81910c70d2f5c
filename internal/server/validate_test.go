package server

import (
	"encoding/json"
	"strings"
	"testing"

	"projectmanager/internal/domain/errors"
	"projectmanager/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "object", raw: `{"name":"Apollo"}`},
		{name: "object with whitespace", raw: "  \n{\"a\":1} "},
		{name: "empty body", raw: "", wantErr: true},
		{name: "empty object", raw: `{}`, wantErr: true},
		{name: "array", raw: `[{"name":"Apollo"}]`, wantErr: true},
		{name: "string", raw: `"Apollo"`, wantErr: true},
		{name: "number", raw: `42`, wantErr: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "truncated", raw: `{"name":`, wantErr: true},
		{name: "trailing data", raw: `{"a":1}{"b":2}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := DecodeObject([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidInput)
				assert.Nil(t, payload)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, payload)
		})
	}
}

func TestRequireFields(t *testing.T) {
	payload := map[string]json.RawMessage{
		"email":    json.RawMessage(`"a@example.com"`),
		"password": json.RawMessage(`""`),
	}

	assert.NoError(t, RequireFields(payload, "email", "password"))
	assert.NoError(t, RequireFields(payload))

	err := RequireFields(payload, "email", "first_name", "last_name")
	require.ErrorIs(t, err, errors.ErrMissingField)
	assert.EqualError(t, err, "Missing field: first_name")
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "1", want: 1},
		{raw: "9223372036854775807", want: 9223372036854775807},
		{raw: "-4", wantErr: true},
		{raw: "0", wantErr: true},
		{raw: "+1", wantErr: true},
		{raw: " 1", wantErr: true},
		{raw: "007", want: 7},
		{raw: "abc", wantErr: true},
		{raw: "1.5", wantErr: true},
		{raw: "12abc", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "9223372036854775808", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id, err := ParseID(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidIDFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestCheckPasswordLength(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]json.RawMessage
		wantErr error
	}{
		{name: "absent", payload: map[string]json.RawMessage{}},
		{name: "long enough", payload: map[string]json.RawMessage{"password": json.RawMessage(`"password"`)}},
		{name: "multibyte counted by characters", payload: map[string]json.RawMessage{"password": json.RawMessage(`"пароль12"`)}},
		{name: "72 bytes", payload: map[string]json.RawMessage{"password": json.RawMessage(`"` + strings.Repeat("a", 72) + `"`)}},
		{name: "multibyte over 72 bytes", payload: map[string]json.RawMessage{"password": json.RawMessage(`"` + strings.Repeat("é", 40) + `"`)}, wantErr: errors.ErrPasswordTooLong},
		{name: "too short", payload: map[string]json.RawMessage{"password": json.RawMessage(`"1234567"`)}, wantErr: errors.ErrPasswordTooShort},
		{name: "not a string", payload: map[string]json.RawMessage{"password": json.RawMessage(`12345678`)}, wantErr: errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPasswordLength(tt.payload)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDecodeValidated(t *testing.T) {
	api := &ProjectAPI{validate: newValidator()}
	valid := func() map[string]json.RawMessage {
		return map[string]json.RawMessage{
			"first_name":       json.RawMessage(`"Ada"`),
			"last_name":        json.RawMessage(`"Lovelace"`),
			"email":            json.RawMessage(`"ada@example.com"`),
			"role":             json.RawMessage(`"manager"`),
			"password":         json.RawMessage(`"password123"`),
			"confirm_password": json.RawMessage(`"password123"`),
		}
	}

	tests := []struct {
		name    string
		mutate  func(map[string]json.RawMessage)
		wantMsg string
	}{
		{name: "valid", mutate: func(map[string]json.RawMessage) {}},
		{name: "wrong type", mutate: func(p map[string]json.RawMessage) { p["first_name"] = json.RawMessage(`7`) }, wantMsg: "Invalid input"},
		{name: "too long", mutate: func(p map[string]json.RawMessage) {
			p["last_name"] = json.RawMessage(`"` + strings.Repeat("x", 51) + `"`)
		}, wantMsg: "Field is too long: last_name"},
		{name: "mismatch", mutate: func(p map[string]json.RawMessage) { p["confirm_password"] = json.RawMessage(`"password124"`) }, wantMsg: "Passwords do not match"},
		{name: "bad email", mutate: func(p map[string]json.RawMessage) { p["email"] = json.RawMessage(`"ada"`) }, wantMsg: "Invalid email"},
		{name: "missing", mutate: func(p map[string]json.RawMessage) { delete(p, "role") }, wantMsg: "Missing field: role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := valid()
			tt.mutate(payload)

			var req models.CreateUserRequest
			err := api.decodeValidated(payload, &req, createUserFields...)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, "ada@example.com", req.Email)
				return
			}
			require.Error(t, err)
			_, msg := translateError(err)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
