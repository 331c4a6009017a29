package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

func TestSavePlan_SendsOnlyTitledRowsWithNullDueAt(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/service2/my-plan", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		writeJSON(w, http.StatusOK, dto.OK(dto.PlanData{Plan: dto.PlanResponse{
			ID:     "plan-1",
			ExamID: "exam-1",
			Tasks:  []domain.PlanTask{{ID: "t1", Title: "Write report", Status: domain.TaskStatusTodo}},
		}}))
	}))
	defer srv.Close()

	pm := NewPlanManager(NewAPI(srv.URL), newTestSession(), time.UTC)
	plan, err := pm.SavePlan(context.Background(), "exam-1", []DraftRow{
		{Title: "", DueAt: "2025-01-01T10:00"},
		{Title: "Write report", DueAt: ""},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"examId":"exam-1","tasks":[{"title":"Write report","dueAt":null}]}`, body)
	assert.Equal(t, "plan-1", plan.ID)
	assert.False(t, pm.HasUnsavedChanges())
}

func TestSavePlan_NormalizesDueAtToUTC(t *testing.T) {
	var got dto.SavePlanRequest
	api := &fakePlanAPI{SavePlanFunc: func(_ context.Context, _ *Session, req dto.SavePlanRequest) (*dto.PlanResponse, error) {
		got = req
		return &dto.PlanResponse{ID: "plan-1"}, nil
	}}
	pm := NewPlanManager(api, newTestSession(), time.FixedZone("CEST", 2*60*60))

	_, err := pm.SavePlan(context.Background(), "exam-1", []DraftRow{
		{ID: "t1", Title: "  Kickoff  ", DueAt: "2025-01-01T10:00"},
		{Title: "Review", DueAt: "2025-01-02T09:30:00+01:00"},
	})

	require.NoError(t, err)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, "t1", got.Tasks[0].ID)
	assert.Equal(t, "Kickoff", got.Tasks[0].Title)
	assert.Equal(t, "2025-01-01T08:00:00Z", got.Tasks[0].DueAt.Format(time.RFC3339))
	assert.Equal(t, "2025-01-02T08:30:00Z", got.Tasks[1].DueAt.Format(time.RFC3339))
}

func TestSavePlan_InvalidDueAtSkipsNetwork(t *testing.T) {
	api := &fakePlanAPI{}
	pm := NewPlanManager(api, newTestSession(), time.UTC)

	_, err := pm.SavePlan(context.Background(), "exam-1", []DraftRow{{Title: "Kickoff", DueAt: "tomorrow"}})

	assert.ErrorIs(t, err, ErrPrecondition)
	assert.NotEmpty(t, pm.LastError())
}

func TestLoadPlan_NoneYet(t *testing.T) {
	api := &fakePlanAPI{GetMyPlanFunc: func(context.Context, *Session, string) (*dto.PlanResponse, error) {
		return nil, notFound("PLAN_NOT_FOUND")
	}}
	pm := NewPlanManager(api, newTestSession(), time.UTC)

	plan, err := pm.LoadPlan(context.Background(), "exam-1")

	assert.NoError(t, err)
	assert.Nil(t, plan)
	assert.Nil(t, pm.Plan())
}

func twoTaskPlan() *dto.PlanResponse {
	due := time.Date(2025, 1, 3, 12, 0, 0, 0, time.UTC)
	return &dto.PlanResponse{
		ID:     "plan-1",
		ExamID: "exam-1",
		Tasks: []domain.PlanTask{
			{ID: "t1", Title: "Write report", Status: domain.TaskStatusTodo, DueAt: &due},
			{ID: "t2", Title: "Present", Status: domain.TaskStatusTodo, ReportText: "draft notes"},
		},
	}
}

func TestAnalyzeTask_Preconditions(t *testing.T) {
	cases := []struct {
		name       string
		reportText string
		pdf        []byte
	}{
		{name: "no report text", reportText: "  ", pdf: []byte("%PDF-1.4")},
		{name: "no pdf", reportText: "done", pdf: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakePlanAPI{}
			pm := NewPlanManager(api, newTestSession(), time.UTC)

			_, err := pm.AnalyzeTask(context.Background(), "plan-1", "t1", tc.reportText, tc.pdf)

			assert.ErrorIs(t, err, ErrPrecondition)
			assert.Equal(t, int32(0), api.analyzeCalls.Load())
		})
	}
}

func TestAnalyzeTask_MergesOnlyTheAnalysedTask(t *testing.T) {
	now := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	api := &fakePlanAPI{
		GetMyPlanFunc: func(context.Context, *Session, string) (*dto.PlanResponse, error) { return twoTaskPlan(), nil },
		AnalyzePlanTaskFunc: func(_ context.Context, _ *Session, planID, taskID, reportText string, pdf []byte) (*domain.PlanTask, error) {
			return &domain.PlanTask{
				ID:          taskID,
				Title:       "Write report",
				Status:      domain.TaskStatusDone,
				CompletedAt: &now,
				Feedback:    &domain.AiAnalysis{Score: 80},
				ReportText:  reportText,
			}, nil
		},
	}
	pm := NewPlanManager(api, newTestSession(), time.UTC)
	before, err := pm.LoadPlan(context.Background(), "exam-1")
	require.NoError(t, err)
	pm.SetTaskDraft("t1", TaskDraft{ReportText: "done", PDF: []byte("%PDF-1.4")})
	assert.True(t, pm.HasUnsavedChanges())

	task, err := pm.AnalyzeTask(context.Background(), "plan-1", "t1", "done", []byte("%PDF-1.4"))

	require.NoError(t, err)
	assert.False(t, pm.HasUnsavedChanges())
	assert.Equal(t, domain.TaskStatusDone, task.Status)
	after := pm.Plan()
	assert.Equal(t, *task, after.Tasks[0])
	assert.Equal(t, before.Tasks[1], after.Tasks[1])
	_, kept := pm.TaskDraft("t1")
	assert.False(t, kept)
	_, ok := TaskCountdown(after.Tasks[0], now)
	assert.False(t, ok)
}

func TestAnalyzeTask_FailureRetainsDraft(t *testing.T) {
	api := &fakePlanAPI{
		GetMyPlanFunc: func(context.Context, *Session, string) (*dto.PlanResponse, error) { return twoTaskPlan(), nil },
		AnalyzePlanTaskFunc: func(context.Context, *Session, string, string, string, []byte) (*domain.PlanTask, error) {
			return nil, &APIError{Status: http.StatusBadGateway, Code: "STORAGE_ERROR", Message: "Failed to store attachment"}
		},
	}
	pm := NewPlanManager(api, newTestSession(), time.UTC)
	before, err := pm.LoadPlan(context.Background(), "exam-1")
	require.NoError(t, err)
	draft := TaskDraft{ReportText: "done", PDF: []byte("%PDF-1.4")}
	pm.SetTaskDraft("t1", draft)

	_, err = pm.AnalyzeTask(context.Background(), "plan-1", "t1", draft.ReportText, draft.PDF)

	require.Error(t, err)
	kept, ok := pm.TaskDraft("t1")
	assert.True(t, ok)
	assert.Equal(t, draft, kept)
	assert.Equal(t, before, pm.Plan())
	assert.Equal(t, "Failed to store attachment", pm.LastError())
	assert.True(t, pm.HasUnsavedChanges())
}

func TestAnalyzeTask_SameTaskGuarded(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 2)
	scores := map[string]float64{"t1": 61, "t2": 88}
	api := &fakePlanAPI{
		GetMyPlanFunc: func(context.Context, *Session, string) (*dto.PlanResponse, error) { return twoTaskPlan(), nil },
		AnalyzePlanTaskFunc: func(_ context.Context, _ *Session, _, taskID, reportText string, _ []byte) (*domain.PlanTask, error) {
			entered <- struct{}{}
			<-release
			return &domain.PlanTask{
				ID:         taskID,
				Title:      "analysed " + taskID,
				Status:     domain.TaskStatusTodo,
				Feedback:   &domain.AiAnalysis{Score: scores[taskID]},
				ReportText: reportText,
			}, nil
		},
	}
	pm := NewPlanManager(api, newTestSession(), time.UTC)
	_, err := pm.LoadPlan(context.Background(), "exam-1")
	require.NoError(t, err)

	results := make(chan error, 2)
	go func() {
		_, err := pm.AnalyzeTask(context.Background(), "plan-1", "t1", "report one", []byte("%PDF-1.4"))
		results <- err
	}()
	go func() {
		_, err := pm.AnalyzeTask(context.Background(), "plan-1", "t2", "report two", []byte("%PDF-1.4"))
		results <- err
	}()
	<-entered
	<-entered

	_, err = pm.AnalyzeTask(context.Background(), "plan-1", "t1", "again", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrActionInProgress)

	close(release)
	assert.NoError(t, <-results)
	assert.NoError(t, <-results)
	assert.Equal(t, int32(2), api.analyzeCalls.Load())

	plan := pm.Plan()
	require.Len(t, plan.Tasks, 2)
	for i, id := range []string{"t1", "t2"} {
		got := plan.Tasks[i]
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "analysed "+id, got.Title)
		require.NotNil(t, got.Feedback)
		assert.Equal(t, scores[id], got.Feedback.Score)
	}
	assert.Equal(t, "report one", plan.Tasks[0].ReportText)
	assert.Equal(t, "report two", plan.Tasks[1].ReportText)
}

func TestParseDueAt(t *testing.T) {
	got, err := ParseDueAt("", time.UTC)
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseDueAt("2025-06-30T23:15", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-30T23:15:00Z", got.Format(time.RFC3339))

	_, err = ParseDueAt("30/06/2025", time.UTC)
	assert.Error(t, err)
}
