package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/attendance-admin/internal/app/controllers"
	appMigrations "github.com/yigit/attendance-admin/internal/app/migrations"
	appRepos "github.com/yigit/attendance-admin/internal/app/repositories"
	appRoutes "github.com/yigit/attendance-admin/internal/app/routes"
	appServices "github.com/yigit/attendance-admin/internal/app/services"
	"github.com/yigit/attendance-admin/internal/app/views"
	"github.com/yigit/attendance-admin/internal/config"
	"github.com/yigit/attendance-admin/internal/db"
	appMiddleware "github.com/yigit/attendance-admin/internal/middleware"
	"github.com/yigit/attendance-admin/internal/pkg/filestorage"
	"github.com/yigit/attendance-admin/internal/pkg/logger"
	"github.com/yigit/attendance-admin/internal/pkg/loginguard"
	"github.com/yigit/attendance-admin/internal/pkg/validation"
	"github.com/yigit/attendance-admin/internal/seed"
	schema "github.com/yigit/attendance-admin/migrations"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService            appServices.AuthService
	UserService            appServices.UserService
	StudentService         appServices.StudentService
	SubjectService         appServices.SubjectService
	FacultyService         appServices.FacultyService
	EnrollmentService      appServices.EnrollmentService
	AttendanceService      appServices.AttendanceService
	DashboardService       appServices.DashboardService
	FaceRecognitionService appServices.FaceRecognitionService
	Controllers            appRoutes.Controllers
	AuthMiddleware         *appMiddleware.AuthMiddleware
	Repos                  *appRepos.Repositories
	Renderer               *views.Renderer
	FileStorage            *filestorage.LocalStorage
	// RedisClient is nil when login attempts are counted in memory
	RedisClient *redis.Client
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	migrationsFS, err := migrationSource(cfg)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := appMigrations.NewMigrator(dbPool, lgr).Migrate(ctx, migrationsFS); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return dbPool, nil
}

// migrationSource returns the embedded schema unless a directory is configured
func migrationSource(cfg *config.Config) (fs.FS, error) {
	dir := cfg.Database.MigrationsDir
	if dir == "" {
		return schema.Files, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrations directory not found at %s: %w", dir, err)
	}
	return os.DirFS(dir), nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := validation.Register(v); err != nil {
			return nil, fmt.Errorf("failed to register validation rules: %w", err)
		}
	}

	deps.Repos = appRepos.NewRepositories(dbPool)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := seed.CreateDefaultData(seedCtx, deps.Repos.UserRepository, deps.Repos.FacultyRepository, cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, "/uploads", filestorage.ImageExtensions...)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	guard, err := deps.loginGuard(cfg)
	if err != nil {
		return nil, err
	}

	deps.Renderer, err = views.NewRenderer(nil)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	// Services
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, guard, lgr)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, lgr)
	deps.FacultyService = appServices.NewFacultyService(deps.Repos.FacultyRepository)
	deps.StudentService = appServices.NewStudentService(deps.Repos.StudentRepository, deps.FacultyService, deps.FileStorage, lgr)
	deps.SubjectService = appServices.NewSubjectService(deps.Repos.SubjectRepository, deps.FacultyService, lgr)
	deps.EnrollmentService = appServices.NewEnrollmentService(
		deps.Repos.EnrollmentRepository,
		deps.Repos.StudentRepository,
		deps.Repos.SubjectRepository,
		nil,
		lgr,
	)
	deps.AttendanceService = appServices.NewAttendanceService(
		deps.Repos.AttendanceRepository,
		deps.Repos.EnrollmentRepository,
		deps.Repos.SubjectRepository,
		nil,
		lgr,
	)
	deps.DashboardService = appServices.NewDashboardService(
		deps.Repos.UserRepository,
		deps.Repos.StudentRepository,
		deps.Repos.SubjectRepository,
		deps.Repos.AttendanceRepository,
		nil,
	)
	deps.FaceRecognitionService = appServices.NewFaceRecognitionService(appServices.FaceRecognitionConfig{
		Command: cfg.FaceRecognition.Command,
		Args:    cfg.FaceRecognition.Args,
		Timeout: cfg.FaceRecognitionTimeout(),
	}, deps.Repos.SubjectRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)

	// Controllers
	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.AuthService),
		Dashboard:  appControllers.NewDashboardController(deps.DashboardService),
		Attendance: appControllers.NewAttendanceController(deps.AttendanceService, deps.SubjectService, deps.FaceRecognitionService),
		Enrollment: appControllers.NewEnrollmentController(deps.EnrollmentService),
		Subject:    appControllers.NewSubjectController(deps.SubjectService, deps.FacultyService),
		User:       appControllers.NewUserController(deps.UserService),
		Student:    appControllers.NewStudentController(deps.StudentService, deps.FacultyService),
		Profile:    appControllers.NewProfileController(deps.AuthService),
	}

	return deps, nil
}

// loginGuard counts failed logins in Redis when an address is configured
func (deps *Dependencies) loginGuard(cfg *config.Config) (loginguard.Guard, error) {
	if cfg.Redis.Addr == "" {
		deps.Logger.Info().Msg("Redis not configured, counting login attempts in memory")
		return loginguard.NewMemoryGuard(cfg.Login.MaxAttempts, cfg.LoginWindow()), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := loginguard.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		deps.Logger.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	deps.RedisClient = client
	deps.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Counting login attempts in Redis")
	return loginguard.NewRedisGuard(client, cfg.Login.MaxAttempts, cfg.LoginWindow()), nil
}

// Close releases connections owned by the dependencies
func (deps *Dependencies) Close() {
	if deps.RedisClient != nil {
		if err := deps.RedisClient.Close(); err != nil {
			deps.Logger.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.HTMLRender = deps.Renderer

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge().Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(),
		sessions.Sessions(cfg.Session.CookieName, store),
		deps.AuthMiddleware.LoadUser(),
		appMiddleware.CSRF(appMiddleware.CSRFConfig{
			AuthKey:        []byte(cfg.CSRF.AuthKey),
			Secure:         cfg.CSRF.Secure,
			TrustedOrigins: cfg.CSRF.TrustedOrigins,
		}),
	)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, cfg.Server.StoragePath)

	return router
}
