package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/forum-service/internal/api/http/handlers"
	"github.com/spec-kit/forum-service/internal/auth"
	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Questions      *handlers.QuestionsHandler
	Answers        *handlers.AnswersHandler
	Profile        *handlers.ProfileHandler
	Experts        *handlers.ExpertsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Handler())
	}

	app.Use(cfg.AuthMiddleware.Optional)
	signedIn := auth.RequireViewer()
	adminOnly := auth.RequireRole(domain.RoleAdmin)

	questions := app.Group("/questions")
	questions.Get("/:id", cfg.Questions.Page)
	questions.Delete("/:id", signedIn, cfg.Questions.Delete)
	questions.Post("/:id/like", signedIn, cfg.Questions.Like)
	questions.Post("/:id/report", signedIn, cfg.Questions.Report)
	questions.Post("/:id/accept/:answerId", signedIn, cfg.Questions.Accept)
	questions.Post("/:id/answers", signedIn, cfg.Questions.CreateAnswer)
	questions.Post("/:id/comments", signedIn, cfg.Questions.CreateComment)
	app.Delete("/comments/:id", signedIn, cfg.Questions.DeleteComment)

	answers := app.Group("/answers", signedIn)
	answers.Patch("/:id", cfg.Answers.Edit)
	answers.Delete("/:id", cfg.Answers.Delete)
	answers.Post("/:id/approve", adminOnly, cfg.Answers.Approve)
	answers.Post("/:id/reject", adminOnly, cfg.Answers.Reject)

	app.Post("/profile", signedIn, cfg.Profile.Update)

	app.Get("/experts", cfg.Experts.List)
	app.Get("/experts/:id", cfg.Experts.Get)

	admin := app.Group("/admin", adminOnly)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Patch("/users/:id/role", cfg.Admin.ChangeRole)
	admin.Get("/moderation-log", cfg.Admin.ModerationLog)
}
