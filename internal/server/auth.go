package server

import (
	"context"
	"strings"

	"projectmanager/internal/domain/errors"
	"projectmanager/internal/domain/models"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	currentUserKey      = "currentUser"
)

// TokenVerifier resolves a bearer token to the stored user it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*models.User, error)
}

// TokenRequired authenticates the request and stores the current user in
// the gin context for later stages.
func TokenRequired(tokens TokenVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader(authorizationHeader)
		if header == "" {
			abortWithError(ctx, errors.ErrTokenRequired)
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		user, err := tokens.Verify(ctx.Request.Context(), raw)
		if err != nil {
			abortWithError(ctx, err)
			return
		}

		ctx.Set(currentUserKey, user)
		ctx.Next()
	}
}

// ManagerRequired lets the request through only for managers. It must run
// after TokenRequired.
func ManagerRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok || !user.Role.IsManager() {
			abortWithError(ctx, errors.ErrForbidden)
			return
		}
		ctx.Next()
	}
}

func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	v, ok := ctx.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
