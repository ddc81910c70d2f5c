package models

import (
	"encoding/json"
	"testing"

	"projectmanager/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "manager", want: RoleManager},
		{in: "employee", want: RoleEmployee},
		{in: "Manager", wantErr: true},
		{in: "admin", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			role, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidRole)
				assert.True(t, role.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
			assert.Equal(t, tt.in, role.String())
		})
	}

	assert.True(t, RoleManager.IsManager())
	assert.False(t, RoleEmployee.IsManager())
	assert.False(t, Role{}.IsManager())
}

func TestUserJSON(t *testing.T) {
	user := User{ID: 3, FirstName: "Ada", Email: "ada@example.com", Role: RoleManager, PasswordHash: "$2a$secret"}

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"role":"manager"`)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")

	var decoded User
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, RoleManager, decoded.Role)

	err = json.Unmarshal([]byte(`{"role":"owner"}`), &decoded)
	assert.ErrorIs(t, err, errors.ErrInvalidRole)
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		total int
		req   PageRequest
		want  struct {
			pages  int
			offset int
			json   string
		}
	}{
		{
			name:  "exact fit",
			items: []int{3, 4},
			total: 4,
			req:   PageRequest{Page: 2, PerPage: 2},
			want: struct {
				pages  int
				offset int
				json   string
			}{pages: 2, offset: 2, json: `{"total":4,"page":2,"per_page":2,"pages":2,"data":[3,4]}`},
		},
		{
			name:  "partial last page",
			items: []int{5},
			total: 5,
			req:   PageRequest{Page: 3, PerPage: 2},
			want: struct {
				pages  int
				offset int
				json   string
			}{pages: 3, offset: 4, json: `{"total":5,"page":3,"per_page":2,"pages":3,"data":[5]}`},
		},
		{
			name:  "empty collection",
			items: nil,
			total: 0,
			req:   PageRequest{Page: 1, PerPage: 10},
			want: struct {
				pages  int
				offset int
				json   string
			}{pages: 0, offset: 0, json: `{"total":0,"page":1,"per_page":10,"pages":0,"data":[]}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage(tt.items, tt.total, tt.req)
			assert.Equal(t, tt.want.pages, page.Pages)
			assert.Equal(t, tt.want.offset, tt.req.Offset())

			raw, err := json.Marshal(page)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want.json, string(raw))
		})
	}
}
