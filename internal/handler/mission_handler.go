package handler

import (
	"github.com/gofiber/fiber/v2"

	"mission-desk/internal/dto"
	"mission-desk/internal/middleware"
	"mission-desk/internal/service"
	"mission-desk/internal/validation"
)

// MissionHandler serves the exam, its main-task submissions and the final report.
type MissionHandler struct {
	examService       service.ExamService
	submissionService service.SubmissionService
	reportService     service.ReportService
	validator         *validation.Validator
}

func NewMissionHandler(
	examService service.ExamService,
	submissionService service.SubmissionService,
	reportService service.ReportService,
	validator *validation.Validator,
) *MissionHandler {
	return &MissionHandler{
		examService:       examService,
		submissionService: submissionService,
		reportService:     reportService,
		validator:         validator,
	}
}

// GetMyExam returns the exam assigned to the caller.
// @Summary Assigned exam
// @Tags mission
// @Security BearerAuth
// @Success 200 {object} dto.ExamData
// @Failure 404 {object} dto.ErrorResponse "No exam assigned"
// @Router /service2/my-exam [get]
func (h *MissionHandler) GetMyExam(c *fiber.Ctx) error {
	exam, err := h.examService.GetMyExam(c.UserContext(), middleware.AccountID(c))
	if err != nil {
		return err
	}
	return ok(c, dto.ExamData{Exam: *exam})
}

// SubmitTask stores an answer to a scenario task.
// @Summary Submit task answer
// @Tags mission
// @Security BearerAuth
// @Param request body dto.SubmitTaskRequest true "Answer"
// @Success 200 {object} dto.SubmitTaskData
// @Router /service2/submit-task [post]
func (h *MissionHandler) SubmitTask(c *fiber.Ctx) error {
	var req dto.SubmitTaskRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	data, err := h.submissionService.SubmitTask(c.UserContext(), middleware.AccountID(c), &req)
	if err != nil {
		return err
	}
	return ok(c, data)
}

// AnalyzeTask scores an answer, attaching the analysis to the given or a new submission.
// @Summary Analyse task answer
// @Tags mission
// @Security BearerAuth
// @Param request body dto.AnalyzeTaskRequest true "Answer"
// @Success 200 {object} dto.AnalyzeTaskData
// @Failure 503 {object} dto.ErrorResponse "AI service unavailable"
// @Router /service2/analyze-task [post]
func (h *MissionHandler) AnalyzeTask(c *fiber.Ctx) error {
	var req dto.AnalyzeTaskRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	data, err := h.submissionService.AnalyzeTask(c.UserContext(), middleware.AccountID(c), &req)
	middleware.ObserveAnalysis("submission", err)
	if err != nil {
		return err
	}
	return ok(c, data)
}

// GenerateFinalVerdict builds the final report, or returns the existing one.
// @Summary Generate final verdict
// @Tags report
// @Security BearerAuth
// @Param request body dto.GenerateVerdictRequest true "Exam"
// @Success 200 {object} dto.ReportData
// @Failure 409 {object} dto.ErrorResponse "Generation already running"
// @Router /service2/generate-final-verdict [post]
func (h *MissionHandler) GenerateFinalVerdict(c *fiber.Ctx) error {
	var req dto.GenerateVerdictRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	report, err := h.reportService.GenerateFinalVerdict(c.UserContext(), middleware.AccountID(c), req.ExamID)
	middleware.ObserveAnalysis("verdict", err)
	if err != nil {
		return err
	}
	return ok(c, dto.ReportData{Report: *report})
}

// GetFinalReport returns the stored report.
// @Summary Final report
// @Tags report
// @Security BearerAuth
// @Param examId path string true "Exam ID"
// @Success 200 {object} dto.ReportData
// @Failure 404 {object} dto.ErrorResponse "Not generated yet"
// @Router /service2/final-report/{examId} [get]
func (h *MissionHandler) GetFinalReport(c *fiber.Ctx) error {
	report, err := h.reportService.GetFinalReport(c.UserContext(), middleware.AccountID(c), c.Params("examId"))
	if err != nil {
		return err
	}
	return ok(c, dto.ReportData{Report: *report})
}

// GetFinishSlots lists the active finish slots.
// @Summary Finish slots
// @Tags mission
// @Security BearerAuth
// @Success 200 {object} dto.SlotsData
// @Router /service2/finish-slots [get]
func (h *MissionHandler) GetFinishSlots(c *fiber.Ctx) error {
	slots, err := h.examService.ListFinishSlots(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, slots)
}
