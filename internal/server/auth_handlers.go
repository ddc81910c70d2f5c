package server

import (
	"net/http"

	"projectmanager/internal/auth"
	"projectmanager/internal/domain/errors"
	"projectmanager/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (api *ProjectAPI) issueToken(ctx *gin.Context) {
	var req models.LoginRequest
	if _, err := api.bindObject(ctx, &req, "email", "password"); err != nil {
		abortWithError(ctx, err)
		return
	}

	user, err := api.users.GetUserByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			abortWithError(ctx, errors.ErrInvalidCredentials)
			return
		}
		abortWithError(ctx, err)
		return
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		abortWithError(ctx, errors.ErrInvalidCredentials)
		return
	}

	token, err := api.tokens.Issue(user)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.TokenResponse{Token: token})
}
