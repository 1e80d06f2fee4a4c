package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Prajjwal888/Smart-Check-AI/internal/config"
	"github.com/Prajjwal888/Smart-Check-AI/internal/handler"
	"github.com/Prajjwal888/Smart-Check-AI/internal/middleware"
	"github.com/Prajjwal888/Smart-Check-AI/internal/models"
	"github.com/Prajjwal888/Smart-Check-AI/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	PlagiarismHandler *handler.PlagiarismHandler
	EvaluationHandler *handler.EvaluationHandler
	ReportHandler     *handler.ReportHandler
	QuestionHandler   *handler.QuestionHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublic(api.Group("/auth"))
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacher := api.Group("/teacher", jwtMiddleware, middleware.RequireRole(models.RoleTeacher))
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterProfile(teacher)
	}
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(teacher.Group("/assignments"))
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterTeacher(teacher)
	}
	if deps.PlagiarismHandler != nil {
		deps.PlagiarismHandler.Register(teacher)
	}
	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(teacher)
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(teacher)
	}
	if deps.QuestionHandler != nil {
		deps.QuestionHandler.Register(teacher)
	}

	student := api.Group("/student", jwtMiddleware, middleware.RequireRole(models.RoleStudent))
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterProfile(student)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterStudent(student)
	}
}
