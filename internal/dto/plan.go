package dto

import (
	"time"

	"mission-desk/internal/domain"
)

// PlanTaskInput is one row of a plan save. ID is omitted for new rows.
type PlanTaskInput struct {
	ID    string     `json:"id,omitempty"`
	Title string     `json:"title" validate:"required,notblank,max=300"`
	DueAt *time.Time `json:"dueAt"`
}

// SavePlanRequest replaces the plan's task list.
type SavePlanRequest struct {
	ExamID string          `json:"examId" validate:"required"`
	Tasks  []PlanTaskInput `json:"tasks" validate:"max=100,dive"`
}

// PlanResponse is the wire form of an action plan.
type PlanResponse struct {
	ID        string            `json:"id"`
	ExamID    string            `json:"examId"`
	AccountID string            `json:"accountId"`
	Tasks     []domain.PlanTask `json:"tasks"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type PlanData struct {
	Plan PlanResponse `json:"plan"`
}

type TaskData struct {
	Task domain.PlanTask `json:"task"`
}

func NewPlanResponse(p *domain.ActionPlan) PlanResponse {
	tasks := p.Tasks
	if tasks == nil {
		tasks = []domain.PlanTask{}
	}
	return PlanResponse{
		ID:        p.ID,
		ExamID:    p.ExamID,
		AccountID: p.AccountID,
		Tasks:     tasks,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// AnswerDraftRequest autosaves the typed answer of a task.
type AnswerDraftRequest struct {
	ExamID string `json:"examId" validate:"required"`
	TaskID string `json:"taskId,omitempty"`
	Text   string `json:"text" validate:"max=20000"`
}

type AnswerDraftData struct {
	Draft *domain.AnswerDraft `json:"draft"`
}
