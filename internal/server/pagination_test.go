package server

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPageRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		want  struct {
			page    int
			perPage int
		}
	}{
		{
			name:  "defaults",
			query: "",
			want: struct {
				page    int
				perPage int
			}{page: 1, perPage: 10},
		},
		{
			name:  "explicit values",
			query: "page=3&per_page=25",
			want: struct {
				page    int
				perPage int
			}{page: 3, perPage: 25},
		},
		{
			name:  "per_page over the cap",
			query: "per_page=500",
			want: struct {
				page    int
				perPage int
			}{page: 1, perPage: 100},
		},
		{
			name:  "largest page with per_page 10",
			query: "page=9223372036854775807&per_page=10",
			want: struct {
				page    int
				perPage int
			}{page: math.MaxInt / 10, perPage: 10},
		},
		{
			name:  "largest page with capped per_page",
			query: "page=9223372036854775807&per_page=1000",
			want: struct {
				page    int
				perPage int
			}{page: math.MaxInt / 100, perPage: 100},
		},
		{
			name:  "largest page with per_page 1",
			query: "page=9223372036854775807&per_page=1",
			want: struct {
				page    int
				perPage int
			}{page: math.MaxInt, perPage: 1},
		},
		{
			name:  "page beyond int",
			query: "page=99999999999999999999",
			want: struct {
				page    int
				perPage int
			}{page: 1, perPage: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
			ctx.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			req := pageRequest(ctx, 100)
			assert.Equal(t, tt.want.page, req.Page)
			assert.Equal(t, tt.want.perPage, req.PerPage)
			assert.GreaterOrEqual(t, req.Offset(), 0)
		})
	}
}
