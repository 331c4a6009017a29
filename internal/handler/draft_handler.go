package handler

import (
	"github.com/gofiber/fiber/v2"

	"mission-desk/internal/dto"
	"mission-desk/internal/middleware"
	"mission-desk/internal/service"
	"mission-desk/internal/validation"
)

type DraftHandler struct {
	draftService service.DraftService
	validator    *validation.Validator
}

func NewDraftHandler(draftService service.DraftService, validator *validation.Validator) *DraftHandler {
	return &DraftHandler{draftService: draftService, validator: validator}
}

// SaveDraft autosaves an unsent answer.
// @Router /service2/answer-draft [post]
func (h *DraftHandler) SaveDraft(c *fiber.Ctx) error {
	var req dto.AnswerDraftRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return err
	}
	draft, err := h.draftService.SaveDraft(c.UserContext(), middleware.AccountID(c), &req)
	if err != nil {
		return err
	}
	return ok(c, dto.AnswerDraftData{Draft: draft})
}

// GetDraft returns the autosaved answer of a task.
// @Router /service2/answer-draft [get]
func (h *DraftHandler) GetDraft(c *fiber.Ctx) error {
	draft, err := h.draftService.GetDraft(c.UserContext(), middleware.AccountID(c), c.Query("examId"), c.Query("taskId"))
	if err != nil {
		return err
	}
	return ok(c, dto.AnswerDraftData{Draft: draft})
}
