package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wink/config"
	controller "wink/controllers"
	"wink/middleware"
	"wink/services"
	"wink/utils"
)

// NewApp builds the fiber application with every route registered.
func NewApp(db *gorm.DB, cfg *config.Config, log *logrus.Logger, storage fiber.Storage) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "wink",
		ErrorHandler: middleware.ErrorHandler(log.WithField("component", "http")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	app.Use(middleware.CORS(cors))

	SetupRoutes(app, db, cfg, log, storage)
	return app
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, log *logrus.Logger, storage fiber.Storage) {
	validator := utils.NewValidator(cfg.Password.Policy())
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authLogger := log.WithField("component", "auth")
	authService := services.NewAuthService(db, validator, tokens, authLogger)
	teamService := services.NewTeamService(db, validator, log.WithField("component", "teams"))
	taskService := services.NewTaskService(db, validator, log.WithField("component", "tasks"))
	subTaskService := services.NewSubTaskService(db, log.WithField("component", "subtasks"))

	authController := controller.NewAuthController(authService, authLogger)
	teamController := controller.NewTeamController(teamService, log.WithField("component", "teams"))
	taskController := controller.NewTaskController(taskService, log.WithField("component", "tasks"))
	subTaskController := controller.NewSubTaskController(subTaskService, log.WithField("component", "subtasks"))

	protected := middleware.Protected(authService, authLogger)
	authLimiter := middleware.AuthRateLimiter(cfg, storage, authLogger)

	app.Get("/health", healthCheck(db, storage))

	api := app.Group("/api/v1", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${locals:requestid}\n",
	}))

	// Auth routes
	api.Post("/signup", authLimiter, authController.Signup)
	api.Post("/login", authLimiter, authController.Login)
	api.Post("/token/refresh", authLimiter, authController.RefreshToken)
	api.Post("/logout", protected, authController.Logout)
	api.Get("/me", protected, authController.GetCurrentUser)

	// Team routes; listing is public so new users can pick a team at signup
	api.Get("/teams", teamController.GetTeams)
	api.Post("/teams", protected, teamController.CreateTeam)

	// Task routes
	task := api.Group("/tasks", protected)
	task.Get("/", taskController.GetTasks)
	task.Post("/", taskController.CreateTask)
	task.Get("/:id", taskController.GetTask)
	task.Patch("/:id", taskController.UpdateTask)
	task.Delete("/:id", taskController.DeleteTask)

	// SubTask routes
	subtask := api.Group("/subtasks", protected)
	subtask.Get("/:id", subTaskController.GetSubTask)
	subtask.Patch("/:id", subTaskController.UpdateSubTask)
	subtask.Delete("/:id", subTaskController.DeleteSubTask)

	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Route not found", nil)
	})

	log.WithField("component", "routes").Info("Routes initialized successfully")
}

func healthCheck(db *gorm.DB, storage fiber.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "database": "ok"}
		code := fiber.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			code = fiber.StatusServiceUnavailable
		}

		if redisStorage, ok := storage.(*middleware.RedisStorage); ok {
			status["redis"] = "ok"
			if err := redisStorage.Ping(c.UserContext()); err != nil {
				status["status"] = "degraded"
				status["redis"] = err.Error()
				code = fiber.StatusServiceUnavailable
			}
		}

		return c.Status(code).JSON(status)
	}
}
