package repository

import (
	"encoding/json"

	"mission-desk/internal/domain"
	"mission-desk/internal/repository/models"
	"mission-desk/internal/util"
)

func toDomainAccount(m *models.Account) *domain.Account {
	if m == nil {
		return nil
	}
	return &domain.Account{
		ID:            m.ID,
		ParticipantID: m.ParticipantID,
		DisplayName:   m.DisplayName.String,
		PasswordHash:  m.PasswordHash,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func fromDomainAccount(a *domain.Account) *models.Account {
	if a == nil {
		return nil
	}
	return &models.Account{
		ID:            a.ID,
		ParticipantID: a.ParticipantID,
		DisplayName:   util.StringToNullString(a.DisplayName),
		PasswordHash:  a.PasswordHash,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func toDomainExam(m *models.Exam) *domain.Exam {
	if m == nil {
		return nil
	}
	exam := &domain.Exam{
		ID:                m.ID,
		Title:             m.Title,
		ScenarioBrief:     m.ScenarioBrief,
		Constraints:       []string(m.Constraints),
		SuccessCriteria:   []string(m.SuccessCriteria),
		Tasks:             []domain.ExamTask{},
		AssignedAccountID: util.NullStringToPtr(m.AssignedAccountID),
		Active:            m.Active == 1,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.Tasks.Data != nil {
		exam.Tasks = *m.Tasks.Data
	}
	if m.VerdictRules.Valid && m.VerdictRules.String != "" {
		exam.VerdictRules = json.RawMessage(m.VerdictRules.String)
	}
	return exam
}

func fromDomainExam(e *domain.Exam) *models.Exam {
	if e == nil {
		return nil
	}
	tasks := e.Tasks
	return &models.Exam{
		ID:                e.ID,
		Title:             e.Title,
		ScenarioBrief:     e.ScenarioBrief,
		Constraints:       models.StringSlice(e.Constraints),
		SuccessCriteria:   models.StringSlice(e.SuccessCriteria),
		Tasks:             models.NewJSON(&tasks),
		VerdictRules:      util.StringToNullString(string(e.VerdictRules)),
		AssignedAccountID: util.StringPtrToNullString(e.AssignedAccountID),
		Active:            util.BoolToNumber(e.Active),
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func toDomainSubmission(m *models.Submission) *domain.Submission {
	if m == nil {
		return nil
	}
	return &domain.Submission{
		ID:         m.ID,
		ExamID:     m.ExamID,
		TaskID:     m.TaskID.String,
		AccountID:  m.AccountID,
		Text:       m.SubmissionText,
		Analysis:   m.Analysis.Data,
		AnalyzedAt: util.NullTimeToPtr(m.AnalyzedAt),
		CreatedAt:  m.CreatedAt,
	}
}

func toDomainPlan(m *models.ActionPlan) *domain.ActionPlan {
	if m == nil {
		return nil
	}
	plan := &domain.ActionPlan{
		ID:        m.ID,
		ExamID:    m.ExamID,
		AccountID: m.AccountID,
		Tasks:     []domain.PlanTask{},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Tasks.Data != nil {
		plan.Tasks = *m.Tasks.Data
	}
	return plan
}

func toDomainReport(m *models.FinalReport) *domain.FinalReport {
	if m == nil {
		return nil
	}
	return &domain.FinalReport{
		ID:                        m.ID,
		ExamID:                    m.ExamID,
		AccountID:                 m.AccountID,
		GlobalScore:               m.GlobalScore,
		ConstraintViolationsCount: m.ConstraintViolationsCount,
		Status:                    m.Status,
		Message:                   m.Message.String,
		Strengths:                 []string(m.Strengths),
		Weaknesses:                []string(m.Weaknesses),
		Recommendations:           []string(m.Recommendations),
		Report:                    m.Report.String,
		CreatedAt:                 m.CreatedAt,
	}
}

func toDomainSlot(m *models.FinishSlot) *domain.FinishSlot {
	if m == nil {
		return nil
	}
	return &domain.FinishSlot{
		ID:       m.ID,
		Title:    m.Title,
		StartsAt: m.StartsAt,
		EndsAt:   m.EndsAt,
		Active:   m.Active == 1,
	}
}
