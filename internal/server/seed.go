package server

import (
	"context"
	"fmt"

	"projectmanager/internal/auth"
	"projectmanager/internal/domain/errors"
	"projectmanager/internal/domain/models"

	"github.com/rs/zerolog"
)

const DemoPassword = "SecureP@ssword1"

var demoUsers = []struct {
	firstName string
	lastName  string
	email     string
	role      models.Role
}{
	{"Test", "Manager", "test-manager@example.com", models.RoleManager},
	{"Test", "Employee", "test-employee@example.com", models.RoleEmployee},
}

// SeedDemoUsers creates one manager and one employee sharing DemoPassword.
// Accounts whose email is already registered are left untouched. It returns
// the number of users created.
func SeedDemoUsers(ctx context.Context, repo UserRepository, cost int, log zerolog.Logger) (int, error) {
	hash, err := auth.HashPassword(DemoPassword, cost)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, du := range demoUsers {
		user := &models.User{
			FirstName:    du.firstName,
			LastName:     du.lastName,
			Email:        du.email,
			Role:         du.role,
			PasswordHash: hash,
		}
		err := repo.CreateUser(ctx, user)
		switch {
		case errors.Is(err, errors.ErrEmailAlreadyExists):
			log.Info().Str("email", du.email).Msg("seed user already exists")
			continue
		case err != nil:
			return created, fmt.Errorf("seed %s: %w", du.email, err)
		}
		log.Info().Str("email", du.email).Str("role", du.role.String()).Int64("user_id", user.ID).Msg("seed user created")
		created++
	}
	return created, nil
}
