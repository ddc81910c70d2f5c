package db

import (
	"context"
	"strings"
	"time"

	"projectmanager/internal/domain/errors"
	"projectmanager/internal/domain/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const queryTimeout = 15 * time.Second

const (
	sqlCreateUser = `INSERT INTO users (first_name, last_name, email, role, password_hash)
		VALUES ($1, $2, $3, $4::user_role, $5) RETURNING id, created_at, updated_at`
	sqlGetUserByID    = `SELECT id, first_name, last_name, email, role::text, password_hash, created_at, updated_at FROM users WHERE id = $1`
	sqlGetUserByEmail = `SELECT id, first_name, last_name, email, role::text, password_hash, created_at, updated_at FROM users WHERE email = $1`
	sqlCountUsers     = `SELECT count(*) FROM users`
	sqlListUsers      = `SELECT id, first_name, last_name, email, role::text, password_hash, created_at, updated_at
		FROM users ORDER BY id LIMIT $1 OFFSET $2`
	sqlUpdateUser = `UPDATE users SET first_name = $1, last_name = $2, email = $3, role = $4::user_role, updated_at = now()
		WHERE id = $5 RETURNING created_at, updated_at`
	sqlDeleteUser = `DELETE FROM users WHERE id = $1`

	sqlCreateProject  = `INSERT INTO projects (name, description) VALUES ($1, $2) RETURNING id`
	sqlGetProjectByID = `SELECT id, name, description FROM projects WHERE id = $1`
	sqlProjectExists  = `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`
	sqlCountProjects  = `SELECT count(*) FROM projects`
	sqlListProjects   = `SELECT id, name, description FROM projects ORDER BY id LIMIT $1 OFFSET $2`
	sqlUpdateProject  = `UPDATE projects SET name = $1, description = $2 WHERE id = $3`
	sqlDeleteTasksOf  = `DELETE FROM tasks WHERE project_id = $1`
	sqlDeleteProject  = `DELETE FROM projects WHERE id = $1`

	sqlCreateTask   = `INSERT INTO tasks (title, description, project_id) VALUES ($1, $2, $3) RETURNING id`
	sqlCountTasksOf = `SELECT count(*) FROM tasks WHERE project_id = $1`
	sqlListTasksOf  = `SELECT id, title, description, project_id FROM tasks WHERE project_id = $1 ORDER BY id LIMIT $2 OFFSET $3`
)

// PostgreSQL error codes the storage translates into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRepr     = "22P02"
)

type Storage struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

func NewStorage(ctx context.Context, connStr string, log zerolog.Logger) (*Storage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Error().Err(err).Msg("failed to configure database pool")
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		log.Error().Err(err).Msg("failed to connect to database")
		return nil, err
	}

	log.Info().Msg("database connection established")
	return &Storage{pool: pool, log: log}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
}

// inTx runs fn in a transaction that is rolled back on any error.
func (s *Storage) inTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role.IsZero() {
		return errors.ErrInvalidRole
	}

	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, sqlCreateUser,
			user.FirstName, user.LastName, user.Email, user.Role.String(), user.PasswordHash,
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	})
	if err != nil {
		s.log.Error().Err(err).Str("email", user.Email).Msg("failed to create user")
		return mapError(err)
	}

	s.log.Debug().Int64("user_id", user.ID).Msg("user created")
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, sqlGetUserByID, id)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, sqlGetUserByEmail, email)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	user, err := scanUser(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrUserNotFound
		}
		s.log.Error().Err(err).Interface("key", arg).Msg("failed to load user")
		return nil, err
	}
	return user, nil
}

func (s *Storage) ListUsers(ctx context.Context, page models.PageRequest) ([]models.User, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var total int
	if err := s.pool.QueryRow(ctx, sqlCountUsers).Scan(&total); err != nil {
		s.log.Error().Err(err).Msg("failed to count users")
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, sqlListUsers, page.PerPage, page.Offset())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list users")
		return nil, 0, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to read user row")
			return nil, 0, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *models.User) error {
	if user.Role.IsZero() {
		return errors.ErrInvalidRole
	}

	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, sqlUpdateUser,
			user.FirstName, user.LastName, user.Email, user.Role.String(), user.ID,
		).Scan(&user.CreatedAt, &user.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.ErrUserNotFound
		}
		s.log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to update user")
		return mapError(err)
	}

	s.log.Debug().Int64("user_id", user.ID).Msg("user updated")
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, sqlDeleteUser, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return errors.ErrUserNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errors.ErrUserNotFound) {
		s.log.Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
	}
	return err
}

func (s *Storage) CreateProject(ctx context.Context, project *models.Project) error {
	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, sqlCreateProject, project.Name, project.Description).Scan(&project.ID)
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create project")
		return mapError(err)
	}
	return nil
}

func (s *Storage) GetProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	project := &models.Project{}
	err := s.pool.QueryRow(ctx, sqlGetProjectByID, id).Scan(&project.ID, &project.Name, &project.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.ErrProjectNotFound
		}
		s.log.Error().Err(err).Int64("project_id", id).Msg("failed to load project")
		return nil, err
	}
	return project, nil
}

func (s *Storage) ListProjects(ctx context.Context, page models.PageRequest) ([]models.Project, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var total int
	if err := s.pool.QueryRow(ctx, sqlCountProjects).Scan(&total); err != nil {
		s.log.Error().Err(err).Msg("failed to count projects")
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, sqlListProjects, page.PerPage, page.Offset())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list projects")
		return nil, 0, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, 0, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (s *Storage) UpdateProject(ctx context.Context, project *models.Project) error {
	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, sqlUpdateProject, project.Name, project.Description, project.ID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return errors.ErrProjectNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, errors.ErrProjectNotFound) {
		s.log.Error().Err(err).Int64("project_id", project.ID).Msg("failed to update project")
		return mapError(err)
	}
	return err
}

// DeleteProject removes the project's tasks and then the project in one
// transaction. The schema cascades too; deleting tasks first keeps the
// operation correct on databases created without the cascade.
func (s *Storage) DeleteProject(ctx context.Context, id int64) error {
	var removedTasks int64
	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, sqlDeleteTasksOf, id)
		if err != nil {
			return err
		}
		removedTasks = ct.RowsAffected()

		ct, err = tx.Exec(ctx, sqlDeleteProject, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return errors.ErrProjectNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, errors.ErrProjectNotFound) {
			s.log.Error().Err(err).Int64("project_id", id).Msg("failed to delete project")
		}
		return err
	}

	s.log.Debug().Int64("project_id", id).Int64("tasks", removedTasks).Msg("project deleted")
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctx, sqlCreateTask, task.Title, task.Description, task.ProjectID).Scan(&task.ID)
	})
	if err != nil {
		mapped := mapError(err)
		if !errors.Is(mapped, errors.ErrProjectNotFound) {
			s.log.Error().Err(err).Int64("project_id", task.ProjectID).Msg("failed to create task")
		}
		return mapped
	}
	return nil
}

func (s *Storage) ListTasksByProject(ctx context.Context, projectID int64, page models.PageRequest) ([]models.Task, int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	if err := s.pool.QueryRow(ctx, sqlProjectExists, projectID).Scan(&exists); err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, errors.ErrProjectNotFound
	}

	var total int
	if err := s.pool.QueryRow(ctx, sqlCountTasksOf, projectID).Scan(&total); err != nil {
		s.log.Error().Err(err).Int64("project_id", projectID).Msg("failed to count tasks")
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx, sqlListTasksOf, projectID, page.PerPage, page.Offset())
	if err != nil {
		s.log.Error().Err(err).Int64("project_id", projectID).Msg("failed to list tasks")
		return nil, 0, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.ProjectID); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		user models.User
		role string
	)
	if err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &role,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := models.ParseRole(role)
	if err != nil {
		return nil, err
	}
	user.Role = parsed
	return &user, nil
}

// mapError turns constraint violations into the domain errors handlers
// understand. Anything else is returned unchanged.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		if pgErr.ConstraintName == "users_email_key" || strings.Contains(pgErr.Message, "email") {
			return errors.ErrEmailAlreadyExists
		}
	case codeInvalidTextRepr:
		if strings.Contains(pgErr.Message, "user_role") {
			return errors.ErrInvalidRole
		}
	case codeForeignKeyViolation:
		if pgErr.ConstraintName == "tasks_project_id_fkey" {
			return errors.ErrProjectNotFound
		}
	}
	return err
}
