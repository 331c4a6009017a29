package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

type fakeMissionAPI struct {
	GetMyExamFunc       func(ctx context.Context, s *Session) (*dto.ExamResponse, error)
	SubmitTaskFunc      func(ctx context.Context, s *Session, req dto.SubmitTaskRequest) (*dto.SubmitTaskData, error)
	AnalyzeTaskFunc     func(ctx context.Context, s *Session, req dto.AnalyzeTaskRequest) (*dto.AnalyzeTaskData, error)
	SaveAnswerDraftFunc func(ctx context.Context, s *Session, req dto.AnswerDraftRequest) error
	GetAnswerDraftFunc  func(ctx context.Context, s *Session, examID, taskID string) (*domain.AnswerDraft, error)

	submitCalls  atomic.Int32
	analyzeCalls atomic.Int32
}

func (f *fakeMissionAPI) GetMyExam(ctx context.Context, s *Session) (*dto.ExamResponse, error) {
	return f.GetMyExamFunc(ctx, s)
}

func (f *fakeMissionAPI) SubmitTask(ctx context.Context, s *Session, req dto.SubmitTaskRequest) (*dto.SubmitTaskData, error) {
	f.submitCalls.Add(1)
	return f.SubmitTaskFunc(ctx, s, req)
}

func (f *fakeMissionAPI) AnalyzeTask(ctx context.Context, s *Session, req dto.AnalyzeTaskRequest) (*dto.AnalyzeTaskData, error) {
	f.analyzeCalls.Add(1)
	return f.AnalyzeTaskFunc(ctx, s, req)
}

func (f *fakeMissionAPI) SaveAnswerDraft(ctx context.Context, s *Session, req dto.AnswerDraftRequest) error {
	return f.SaveAnswerDraftFunc(ctx, s, req)
}

func (f *fakeMissionAPI) GetAnswerDraft(ctx context.Context, s *Session, examID, taskID string) (*domain.AnswerDraft, error) {
	return f.GetAnswerDraftFunc(ctx, s, examID, taskID)
}

type fakePlanAPI struct {
	GetMyPlanFunc       func(ctx context.Context, s *Session, examID string) (*dto.PlanResponse, error)
	SavePlanFunc        func(ctx context.Context, s *Session, req dto.SavePlanRequest) (*dto.PlanResponse, error)
	AnalyzePlanTaskFunc func(ctx context.Context, s *Session, planID, taskID, reportText string, pdf []byte) (*domain.PlanTask, error)

	analyzeCalls atomic.Int32
}

func (f *fakePlanAPI) GetMyPlan(ctx context.Context, s *Session, examID string) (*dto.PlanResponse, error) {
	return f.GetMyPlanFunc(ctx, s, examID)
}

func (f *fakePlanAPI) SavePlan(ctx context.Context, s *Session, req dto.SavePlanRequest) (*dto.PlanResponse, error) {
	return f.SavePlanFunc(ctx, s, req)
}

func (f *fakePlanAPI) AnalyzePlanTask(ctx context.Context, s *Session, planID, taskID, reportText string, pdf []byte) (*domain.PlanTask, error) {
	f.analyzeCalls.Add(1)
	return f.AnalyzePlanTaskFunc(ctx, s, planID, taskID, reportText, pdf)
}

type fakeReportAPI struct {
	GetFinalReportFunc       func(ctx context.Context, s *Session, examID string) (*dto.ReportResponse, error)
	GenerateFinalVerdictFunc func(ctx context.Context, s *Session, examID string) (*dto.ReportResponse, error)

	getCalls      atomic.Int32
	generateCalls atomic.Int32
}

func (f *fakeReportAPI) GetFinalReport(ctx context.Context, s *Session, examID string) (*dto.ReportResponse, error) {
	f.getCalls.Add(1)
	return f.GetFinalReportFunc(ctx, s, examID)
}

func (f *fakeReportAPI) GenerateFinalVerdict(ctx context.Context, s *Session, examID string) (*dto.ReportResponse, error) {
	f.generateCalls.Add(1)
	return f.GenerateFinalVerdictFunc(ctx, s, examID)
}

func newTestSession() *Session {
	return NewSession(context.Background(), "token-1", "acc-1", "P-001", time.Now())
}

func notFound(code string) error {
	return &APIError{Status: http.StatusNotFound, Code: code, Message: "not found"}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Success: false, Code: code, Message: message})
}
