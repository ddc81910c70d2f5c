package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"projectmanager/internal/domain/errors"
	"projectmanager/internal/server"
	db "projectmanager/repository/db"
	storage "projectmanager/repository/inmemory"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 30 * time.Second

type app struct {
	v          *viper.Viper
	configPath string
	cfg        *server.Config
	log        zerolog.Logger
}

func newApp() *app {
	return &app{v: server.NewViper(), log: zerolog.Nop()}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "projects",
		Short:        "Project management API: users, projects and tasks",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (defaults to $CONFIG)")
	flags.String("addr", "", "listen address")
	flags.Int("port", 0, "listen port")
	flags.String("storage", "", "storage backend (postgres|memory)")
	flags.String("dsn", "", "postgres connection string")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.Bool("log-pretty", false, "human readable console logs")

	for key, name := range map[string]string{
		"addr":       "addr",
		"port":       "port",
		"storage":    "storage",
		"db.dsn":     "dsn",
		"log.level":  "log-level",
		"log.pretty": "log-pretty",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(*cobra.Command, []string) error {
				return RunMigrations(a.cfg, a.log)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create the demo manager and employee accounts",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.seed(cmd.Context())
			},
		},
	)

	return root
}

// load resolves configuration and builds the logger. A missing .env file
// is not an error.
func (a *app) load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := server.ReadConfig(a.v, a.configPath)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	if log.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func newLogger(cfg server.LogConfig, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("%w: log level %q", errors.ErrConfigInvalid, cfg.Level)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func (a *app) serve(ctx context.Context) error {
	repo, closeRepo, err := InitializeRepository(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	defer closeRepo()

	api, err := server.NewProjectAPI(repo, a.cfg, a.log)
	if err != nil {
		return err
	}

	sigChan, serverErr := StartServer(api)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		return HandleShutdown(api, sig, a.log)
	case err := <-serverErr:
		a.log.Error().Err(err).Msg("http server failed")
		return err
	}
}

func (a *app) seed(ctx context.Context) error {
	if a.cfg.Storage != server.StoragePostgres {
		return fmt.Errorf("%w: seeding needs postgres storage", errors.ErrConfigInvalid)
	}

	pg, err := db.NewStorage(ctx, a.cfg.DB.DSN, a.log)
	if err != nil {
		return err
	}
	defer pg.Close()

	if a.cfg.DB.Migrate {
		if err := RunMigrations(a.cfg, a.log); err != nil {
			return err
		}
	}

	created, err := server.SeedDemoUsers(ctx, pg, a.cfg.Bcrypt.Cost, a.log)
	if err != nil {
		return err
	}
	a.log.Info().Int("created", created).Msg("seed complete")
	return nil
}

// InitializeRepository picks the storage backend. When Postgres cannot be
// reached the service keeps running on in-memory storage; a reachable
// database whose migrations fail is fatal.
func InitializeRepository(ctx context.Context, cfg *server.Config, log zerolog.Logger) (server.Repository, func(), error) {
	noop := func() {}

	if cfg.Storage == server.StorageMemory {
		log.Info().Msg("using in-memory storage")
		return storage.NewStorage(), noop, nil
	}

	pg, err := db.NewStorage(ctx, cfg.DB.DSN, log)
	if err != nil {
		log.Warn().Err(err).Msg("database unavailable, falling back to in-memory storage")
		return storage.NewStorage(), noop, nil
	}

	if cfg.DB.Migrate {
		if err := RunMigrations(cfg, log); err != nil {
			pg.Close()
			return nil, noop, err
		}
	}

	log.Info().Msg("using postgres storage")
	return pg, pg.Close, nil
}

func RunMigrations(cfg *server.Config, log zerolog.Logger) error {
	if err := db.Migration(cfg.DB.DSN); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	log.Info().Msg("migrations applied")
	return nil
}

type apiServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// StartServer runs api in the background and returns the channels serve
// waits on: termination signals and a fatal listen error.
func StartServer(api apiServer) (chan os.Signal, chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := api.Start(); err != nil {
			serverErr <- err
		}
	}()

	return sigChan, serverErr
}

func HandleShutdown(api apiServer, sig os.Signal, log zerolog.Logger) error {
	log.Info().Str("signal", sig.String()).Msg("graceful shutdown started")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := api.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info().Msg("graceful shutdown complete")
	return nil
}
