package client

import (
	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

func examFromDTO(e *dto.ExamResponse) *domain.Exam {
	return &domain.Exam{
		ID:              e.ID,
		Title:           e.Title,
		ScenarioBrief:   e.ScenarioBrief,
		Constraints:     e.Constraints,
		SuccessCriteria: e.SuccessCriteria,
		Tasks:           e.Tasks,
		VerdictRules:    e.VerdictRules,
		Active:          e.Active,
	}
}

func planFromDTO(p *dto.PlanResponse) *domain.ActionPlan {
	tasks := make([]domain.PlanTask, len(p.Tasks))
	copy(tasks, p.Tasks)
	return &domain.ActionPlan{
		ID:        p.ID,
		ExamID:    p.ExamID,
		AccountID: p.AccountID,
		Tasks:     tasks,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func reportFromDTO(r *dto.ReportResponse) *domain.FinalReport {
	return &domain.FinalReport{
		ID:                        r.ID,
		ExamID:                    r.ExamID,
		AccountID:                 r.AccountID,
		GlobalScore:               r.GlobalScore,
		ConstraintViolationsCount: r.ConstraintViolationsCount,
		Status:                    r.Status,
		Message:                   r.Message,
		Strengths:                 r.Strengths,
		Weaknesses:                r.Weaknesses,
		Recommendations:           r.Recommendations,
		Report:                    r.Report,
		CreatedAt:                 r.CreatedAt,
	}
}
