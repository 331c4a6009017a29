package handler

import (
	"github.com/gofiber/fiber/v2"

	"mission-desk/internal/middleware"
	"mission-desk/internal/service"
)

// Routes bundles everything RegisterRoutes mounts.
type Routes struct {
	AuthService service.AuthService
	Auth        *AuthHandler
	Mission     *MissionHandler
	Plan        *PlanHandler
	Draft       *DraftHandler
	// AnalyzeLimiter guards the AI endpoints; nil disables limiting.
	AnalyzeLimiter *middleware.AccountRateLimiter
}

// RegisterRoutes mounts the participant API under /service2.
func RegisterRoutes(app fiber.Router, r Routes) {
	api := app.Group("/service2")

	auth := middleware.Protected(r.AuthService)
	limit := func(c *fiber.Ctx) error { return c.Next() }
	if r.AnalyzeLimiter != nil {
		limit = r.AnalyzeLimiter.Handler()
	}

	api.Post("/auth/login", r.Auth.Login)
	api.Post("/auth/logout", auth, r.Auth.Logout)

	api.Get("/my-exam", auth, r.Mission.GetMyExam)
	api.Post("/submit-task", auth, r.Mission.SubmitTask)
	api.Post("/analyze-task", auth, limit, r.Mission.AnalyzeTask)
	api.Post("/generate-final-verdict", auth, limit, r.Mission.GenerateFinalVerdict)
	api.Get("/final-report/:examId", auth, r.Mission.GetFinalReport)
	api.Get("/finish-slots", auth, r.Mission.GetFinishSlots)

	api.Get("/my-plan", auth, r.Plan.GetMyPlan)
	api.Post("/my-plan", auth, r.Plan.SavePlan)
	api.Post("/my-plan/:planId/tasks/:taskId/analyze", auth, limit, r.Plan.AnalyzeTask)

	api.Post("/answer-draft", auth, r.Draft.SaveDraft)
	api.Get("/answer-draft", auth, r.Draft.GetDraft)
}
