package server

import (
	"net/http"

	"projectmanager/internal/auth"
	"projectmanager/internal/domain/models"

	"github.com/gin-gonic/gin"
)

var createUserFields = []string{"first_name", "last_name", "email", "role", "password", "confirm_password"}

func (api *ProjectAPI) createUser(ctx *gin.Context) {
	payload, err := readObject(ctx)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	if err := CheckPasswordLength(payload); err != nil {
		abortWithError(ctx, err)
		return
	}

	var req models.CreateUserRequest
	if err := api.decodeValidated(payload, &req, createUserFields...); err != nil {
		abortWithError(ctx, err)
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	hash, err := auth.HashPassword(req.Password, api.cfg.Bcrypt.Cost)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
	}
	if err := api.users.CreateUser(ctx.Request.Context(), user); err != nil {
		abortWithError(ctx, err)
		return
	}

	api.log.Info().Int64("user_id", user.ID).Str("role", role.String()).Msg("user created")
	ctx.JSON(http.StatusCreated, user)
}

func (api *ProjectAPI) listUsers(ctx *gin.Context) {
	page := pageRequest(ctx, api.cfg.Pagination.MaxPerPage)

	users, total, err := api.users.ListUsers(ctx.Request.Context(), page)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, models.NewPage(users, total, page))
}

func (api *ProjectAPI) getUser(ctx *gin.Context) {
	user, ok := api.loadUser(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (api *ProjectAPI) updateUser(ctx *gin.Context) {
	user, ok := api.loadUser(ctx)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if _, err := api.bindObject(ctx, &req); err != nil {
		abortWithError(ctx, err)
		return
	}

	for _, f := range []struct {
		name  string
		value *string
	}{
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"email", req.Email},
	} {
		if err := optionalNonEmpty(f.name, f.value); err != nil {
			abortWithError(ctx, err)
			return
		}
	}

	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		user.Role = role
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}

	if err := api.users.UpdateUser(ctx.Request.Context(), user); err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

func (api *ProjectAPI) deleteUser(ctx *gin.Context) {
	user, ok := api.loadUser(ctx)
	if !ok {
		return
	}

	if err := api.users.DeleteUser(ctx.Request.Context(), user.ID); err != nil {
		abortWithError(ctx, err)
		return
	}

	api.log.Info().Int64("user_id", user.ID).Msg("user deleted")
	ctx.JSON(http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// loadUser resolves the :id path parameter to a stored user, writing the
// error response itself when that fails.
func (api *ProjectAPI) loadUser(ctx *gin.Context) (*models.User, bool) {
	id, err := ParseID(ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return nil, false
	}

	user, err := api.users.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		abortWithError(ctx, err)
		return nil, false
	}
	return user, true
}
