package server

import (
	"math"
	"strconv"

	"projectmanager/internal/domain/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
)

// pageRequest reads page and per_page from the query string. Missing,
// non-numeric or non-positive values fall back to the defaults, per_page
// is capped at maxPerPage and page is capped so the offset cannot overflow.
func pageRequest(ctx *gin.Context, maxPerPage int) models.PageRequest {
	page := queryInt(ctx, "page", defaultPage)
	perPage := queryInt(ctx, "per_page", defaultPerPage)
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	// Keep (page-1)*perPage within int.
	if limit := math.MaxInt / perPage; page > limit {
		page = limit
	}
	return models.PageRequest{Page: page, PerPage: perPage}
}

func queryInt(ctx *gin.Context, key string, def int) int {
	raw, ok := ctx.GetQuery(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
