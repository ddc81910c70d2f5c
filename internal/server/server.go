package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"projectmanager/internal/auth"
	"projectmanager/internal/domain/errors"
	"projectmanager/internal/domain/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/rs/zerolog"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, page models.PageRequest) ([]models.User, int, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ProjectRepository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProjectByID(ctx context.Context, id int64) (*models.Project, error)
	ListProjects(ctx context.Context, page models.PageRequest) ([]models.Project, int, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	// DeleteProject must remove the project's tasks in the same transaction.
	DeleteProject(ctx context.Context, id int64) error

	CreateTask(ctx context.Context, task *models.Task) error
	ListTasksByProject(ctx context.Context, projectID int64, page models.PageRequest) ([]models.Task, int, error)
}

type Repository interface {
	UserRepository
	ProjectRepository
}

type ProjectAPI struct {
	httpSrv  *http.Server
	users    UserRepository
	projects ProjectRepository
	tokens   *auth.TokenService
	validate *validator.Validate
	cfg      *Config
	log      zerolog.Logger
}

func NewProjectAPI(repo Repository, cfg *Config, log zerolog.Logger) (*ProjectAPI, error) {
	if repo == nil || cfg == nil {
		return nil, fmt.Errorf("%w: repository and config are required", errors.ErrConfigInvalid)
	}

	tokens, err := auth.NewTokenService(cfg.AuthConfig(), repo)
	if err != nil {
		return nil, err
	}

	api := &ProjectAPI{
		httpSrv: &http.Server{
			Addr:              cfg.ListenAddr(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		users:    repo,
		projects: repo,
		tokens:   tokens,
		validate: newValidator(),
		cfg:      cfg,
		log:      log,
	}
	api.configRoutes()

	return api, nil
}

func (api *ProjectAPI) Handler() http.Handler {
	return api.httpSrv.Handler
}

func (api *ProjectAPI) Start() error {
	api.log.Info().Str("addr", api.httpSrv.Addr).Msg("http server listening")
	if err := api.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (api *ProjectAPI) Shutdown(ctx context.Context) error {
	return api.httpSrv.Shutdown(ctx)
}

func (api *ProjectAPI) configRoutes() {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(RequestLogger(api.log), Recovery(api.log), GzipRequestDecompress())

	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	})
	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, errorResponse{Error: "Not found"})
	})

	router.GET("/health", api.health)
	router.POST("/auth/token", api.issueToken)

	protected := router.Group("/api", TokenRequired(api.tokens))

	users := protected.Group("/users")
	{
		users.POST("", ManagerRequired(), api.createUser)
		users.GET("", api.listUsers)
		users.GET("/", api.listUsers)
		users.GET("/:id", api.getUser)
		users.PUT("/:id", ManagerRequired(), api.updateUser)
		users.DELETE("/:id", ManagerRequired(), api.deleteUser)
	}

	projects := protected.Group("/projects")
	{
		projects.POST("", ManagerRequired(), api.createProject)
		projects.GET("", api.listProjects)
		projects.GET("/:id", api.getProject)
		projects.PUT("/:id", ManagerRequired(), api.updateProject)
		projects.DELETE("/:id", ManagerRequired(), api.deleteProject)

		projects.POST("/:id/tasks", ManagerRequired(), api.createTask)
		projects.GET("/:id/tasks", api.listTasks)
	}

	api.httpSrv.Handler = router
}

func (api *ProjectAPI) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
