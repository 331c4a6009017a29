package handler

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
	"mission-desk/internal/middleware"
	"mission-desk/internal/service"
	"mission-desk/internal/validation"
)

type PlanHandler struct {
	planService service.PlanService
	validator   *validation.Validator
	maxPDFBytes int64
}

func NewPlanHandler(planService service.PlanService, validator *validation.Validator, maxPDFBytes int64) *PlanHandler {
	return &PlanHandler{planService: planService, validator: validator, maxPDFBytes: maxPDFBytes}
}

// GetMyPlan returns the caller's plan for an exam.
// @Summary Action plan
// @Tags plan
// @Security BearerAuth
// @Param examId query string true "Exam ID"
// @Success 200 {object} dto.PlanData
// @Failure 404 {object} dto.ErrorResponse "No plan yet"
// @Router /service2/my-plan [get]
func (h *PlanHandler) GetMyPlan(c *fiber.Ctx) error {
	plan, err := h.planService.GetMyPlan(c.UserContext(), middleware.AccountID(c), c.Query("examId"))
	if err != nil {
		return err
	}
	return ok(c, dto.PlanData{Plan: *plan})
}

// SavePlan replaces the plan's task list.
// @Summary Save action plan
// @Tags plan
// @Security BearerAuth
// @Param request body dto.SavePlanRequest true "Plan"
// @Success 200 {object} dto.PlanData
// @Router /service2/my-plan [post]
func (h *PlanHandler) SavePlan(c *fiber.Ctx) error {
	var req dto.SavePlanRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	plan, err := h.planService.SavePlan(c.UserContext(), middleware.AccountID(c), &req)
	if err != nil {
		return err
	}
	return ok(c, dto.PlanData{Plan: *plan})
}

// AnalyzeTask scores a plan task report (multipart reportText + pdf).
// @Summary Analyse plan task
// @Tags plan
// @Security BearerAuth
// @Accept multipart/form-data
// @Param planId path string true "Plan ID"
// @Param taskId path string true "Task ID"
// @Param reportText formData string true "Report text"
// @Param pdf formData file true "Report PDF"
// @Success 200 {object} dto.TaskData
// @Router /service2/my-plan/{planId}/tasks/{taskId}/analyze [post]
func (h *PlanHandler) AnalyzeTask(c *fiber.Ctx) error {
	pdf, err := h.readPDF(c)
	if err != nil {
		return err
	}

	task, err := h.planService.AnalyzePlanTask(c.UserContext(), middleware.AccountID(c), service.AnalyzePlanTaskInput{
		PlanID:     c.Params("planId"),
		TaskID:     c.Params("taskId"),
		ReportText: c.FormValue("reportText"),
		PDF:        pdf,
	})
	middleware.ObserveAnalysis("plan_task", err)
	if err != nil {
		return err
	}
	return ok(c, dto.TaskData{Task: *task})
}

// readPDF returns nil when no pdf part was sent; the service reports it as missing.
func (h *PlanHandler) readPDF(c *fiber.Ctx) ([]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.NewInvalidInputError("Expected a multipart/form-data body")
	}
	files := form.File["pdf"]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Size > h.maxPDFBytes {
		return nil, domain.NewInvalidAttachmentError(fmt.Sprintf("PDF exceeds the %d byte limit", h.maxPDFBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, domain.NewInternalError("Failed to read upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxPDFBytes+1))
	if err != nil {
		return nil, domain.NewInternalError("Failed to read upload", err)
	}
	return data, nil
}
