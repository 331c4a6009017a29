package dto

import (
	"encoding/json"
	"time"

	"mission-desk/internal/domain"
)

// ExamResponse is the participant view of an exam.
type ExamResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	ScenarioBrief   string            `json:"scenarioBrief"`
	Constraints     []string          `json:"constraints"`
	SuccessCriteria []string          `json:"successCriteria"`
	Tasks           []domain.ExamTask `json:"tasks"`
	VerdictRules    json.RawMessage   `json:"verdictRules,omitempty"`
	Active          bool              `json:"active"`
}

type ExamData struct {
	Exam ExamResponse `json:"exam"`
}

func NewExamResponse(e *domain.Exam) ExamResponse {
	resp := ExamResponse{
		ID:              e.ID,
		Title:           e.Title,
		ScenarioBrief:   e.ScenarioBrief,
		Constraints:     nonNil(e.Constraints),
		SuccessCriteria: nonNil(e.SuccessCriteria),
		Tasks:           e.Tasks,
		VerdictRules:    e.VerdictRules,
		Active:          e.Active,
	}
	if resp.Tasks == nil {
		resp.Tasks = []domain.ExamTask{}
	}
	return resp
}

// SubmitTaskRequest creates a submission.
type SubmitTaskRequest struct {
	ExamID         string `json:"examId" validate:"required"`
	TaskID         string `json:"taskId,omitempty"`
	SubmissionText string `json:"submissionText" validate:"required,notblank,max=20000"`
}

type SubmitTaskData struct {
	SubmissionID string `json:"submissionId"`
}

// AnalyzeTaskRequest asks for an analysis, reusing SubmissionID when given.
type AnalyzeTaskRequest struct {
	ExamID         string `json:"examId" validate:"required"`
	TaskID         string `json:"taskId,omitempty"`
	SubmissionText string `json:"submissionText" validate:"required,notblank,max=20000"`
	SubmissionID   string `json:"submissionId,omitempty"`
}

type AnalyzeTaskData struct {
	Analysis     *domain.AiAnalysis `json:"analysis"`
	SubmissionID string             `json:"submissionId"`
}

// GenerateVerdictRequest asks for the final verdict of an exam.
type GenerateVerdictRequest struct {
	ExamID string `json:"examId" validate:"required"`
}

// ReportResponse is the wire form of a final report.
type ReportResponse struct {
	ID                        string    `json:"id"`
	ExamID                    string    `json:"examId"`
	AccountID                 string    `json:"accountId"`
	GlobalScore               float64   `json:"globalScore"`
	ConstraintViolationsCount int       `json:"constraintViolationsCount"`
	Status                    string    `json:"status"`
	Message                   string    `json:"message"`
	Strengths                 []string  `json:"strengths"`
	Weaknesses                []string  `json:"weaknesses"`
	Recommendations           []string  `json:"recommendations"`
	Report                    string    `json:"report"`
	CreatedAt                 time.Time `json:"createdAt"`
}

type ReportData struct {
	Report ReportResponse `json:"report"`
}

func NewReportResponse(r *domain.FinalReport) ReportResponse {
	return ReportResponse{
		ID:                        r.ID,
		ExamID:                    r.ExamID,
		AccountID:                 r.AccountID,
		GlobalScore:               r.GlobalScore,
		ConstraintViolationsCount: r.ConstraintViolationsCount,
		Status:                    r.Status,
		Message:                   r.Message,
		Strengths:                 nonNil(r.Strengths),
		Weaknesses:                nonNil(r.Weaknesses),
		Recommendations:           nonNil(r.Recommendations),
		Report:                    r.Report,
		CreatedAt:                 r.CreatedAt,
	}
}

// SlotResponse is one finish slot.
type SlotResponse struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Active   bool      `json:"active"`
}

type SlotsData struct {
	Slots []SlotResponse `json:"slots"`
}

func NewSlotsData(slots []*domain.FinishSlot) SlotsData {
	out := SlotsData{Slots: make([]SlotResponse, 0, len(slots))}
	for _, s := range slots {
		out.Slots = append(out.Slots, SlotResponse{ID: s.ID, Title: s.Title, StartsAt: s.StartsAt, EndsAt: s.EndsAt, Active: s.Active})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
