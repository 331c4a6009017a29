package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"mission-desk/internal/domain"
)

// --- MockAccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetAccountByParticipantID(ctx context.Context, participantID string) (*domain.Account, error) {
	args := m.Called(ctx, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

// --- MockExamRepository ---
type MockExamRepository struct {
	mock.Mock
}

func (m *MockExamRepository) GetExamByID(ctx context.Context, examID string) (*domain.Exam, error) {
	args := m.Called(ctx, examID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Exam), args.Error(1)
}

func (m *MockExamRepository) GetActiveExamForAccount(ctx context.Context, accountID string) (*domain.Exam, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Exam), args.Error(1)
}

func (m *MockExamRepository) SaveExam(ctx context.Context, exam *domain.Exam) error {
	args := m.Called(ctx, exam)
	return args.Error(0)
}

// --- MockSlotRepository ---
type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) ListActiveSlots(ctx context.Context) ([]*domain.FinishSlot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.FinishSlot), args.Error(1)
}

func (m *MockSlotRepository) SaveSlot(ctx context.Context, slot *domain.FinishSlot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

// --- MockSubmissionRepository ---
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	args := m.Called(ctx, submission)
	return args.Error(0)
}

func (m *MockSubmissionRepository) GetSubmissionByID(ctx context.Context, submissionID string) (*domain.Submission, error) {
	args := m.Called(ctx, submissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) SaveAnalysis(ctx context.Context, submissionID string, analysis *domain.AiAnalysis, analyzedAt time.Time) error {
	args := m.Called(ctx, submissionID, analysis, analyzedAt)
	return args.Error(0)
}

func (m *MockSubmissionRepository) ListAnalyzedSubmissions(ctx context.Context, examID, accountID string) ([]*domain.Submission, error) {
	args := m.Called(ctx, examID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Submission), args.Error(1)
}

// --- MockPlanRepository ---
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) GetPlan(ctx context.Context, examID, accountID string) (*domain.ActionPlan, error) {
	args := m.Called(ctx, examID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActionPlan), args.Error(1)
}

func (m *MockPlanRepository) GetPlanByID(ctx context.Context, planID string) (*domain.ActionPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ActionPlan), args.Error(1)
}

func (m *MockPlanRepository) UpsertPlan(ctx context.Context, plan *domain.ActionPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) UpdateTask(ctx context.Context, planID string, patch domain.TaskFeedbackPatch) (domain.PlanTask, string, error) {
	args := m.Called(ctx, planID, patch)
	return args.Get(0).(domain.PlanTask), args.String(1), args.Error(2)
}

// --- MockReportRepository ---
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) GetReport(ctx context.Context, examID, accountID string) (*domain.FinalReport, error) {
	args := m.Called(ctx, examID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinalReport), args.Error(1)
}

func (m *MockReportRepository) CreateReport(ctx context.Context, report *domain.FinalReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

// --- MockAnalyzer ---
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AiAnalysis, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AiAnalysis), args.Error(1)
}

// --- MockVerdictGenerator ---
type MockVerdictGenerator struct {
	mock.Mock
}

func (m *MockVerdictGenerator) GenerateVerdict(ctx context.Context, in domain.VerdictInput) (*domain.Verdict, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Verdict), args.Error(1)
}

// --- MockObjectStorage ---
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) HGet(ctx context.Context, key, field string) (string, error) {
	args := m.Called(ctx, key, field)
	return args.String(0), args.Error(1)
}

func (m *MockCache) HSet(ctx context.Context, key string, field string, value string) error {
	args := m.Called(ctx, key, field, value)
	return args.Error(0)
}

func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	args := m.Called(ctx, key, expiration)
	return args.Error(0)
}

// --- MockDraftStore ---
type MockDraftStore struct {
	mock.Mock
}

func (m *MockDraftStore) SaveDraft(ctx context.Context, accountID string, draft domain.AnswerDraft) error {
	args := m.Called(ctx, accountID, draft)
	return args.Error(0)
}

func (m *MockDraftStore) GetDraft(ctx context.Context, accountID, examID, taskID string) (*domain.AnswerDraft, error) {
	args := m.Called(ctx, accountID, examID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnswerDraft), args.Error(1)
}

// MockTransactionManager runs the function inline.
type MockTransactionManager struct{}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func assignedExam(accountID string) *domain.Exam {
	return &domain.Exam{
		ID:                "exam-1",
		Title:             "Launch the pop-up store",
		ScenarioBrief:     "Open a pop-up store within two weeks.",
		Constraints:       []string{"Budget under 5k"},
		SuccessCriteria:   []string{"Store opens on time"},
		Tasks:             []domain.ExamTask{{ID: "main", Title: "Main plan", Prompt: "Describe your plan"}},
		AssignedAccountID: &accountID,
		Active:            true,
	}
}
