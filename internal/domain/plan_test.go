package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("new-%d", n)
	}
}

func TestReconcileTasks_PreservesFeedbackByTitle(t *testing.T) {
	due := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	feedback := &AiAnalysis{Score: 72, Summary: "solid"}
	existing := []PlanTask{
		{ID: "t1", Title: "Map stakeholders", Status: TaskStatusDone, Feedback: feedback},
		{ID: "t2", Title: "Draft budget", Status: TaskStatusTodo},
	}

	got := ReconcileTasks(existing, []PlanTaskInput{
		{Title: "  map STAKEHOLDERS "},
		{Title: "Write report", DueAt: &due},
	}, sequentialIDs())

	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "map STAKEHOLDERS", got[0].Title)
	assert.Equal(t, TaskStatusDone, got[0].Status)
	assert.Same(t, feedback, got[0].Feedback)

	assert.Equal(t, "new-1", got[1].ID)
	assert.Equal(t, TaskStatusTodo, got[1].Status)
	assert.Equal(t, &due, got[1].DueAt)
	assert.Nil(t, got[1].Feedback)
}

func TestReconcileTasks_MatchesByIDFirst(t *testing.T) {
	existing := []PlanTask{
		{ID: "t1", Title: "Old title", Feedback: &AiAnalysis{Score: 10}},
		{ID: "t2", Title: "Renamed"},
	}

	got := ReconcileTasks(existing, []PlanTaskInput{
		{ID: "t1", Title: "Renamed"},
	}, sequentialIDs())

	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "Renamed", got[0].Title)
	assert.NotNil(t, got[0].Feedback)
}

func TestReconcileTasks_DuplicateTitlesMatchOnce(t *testing.T) {
	existing := []PlanTask{{ID: "t1", Title: "Call client"}}

	got := ReconcileTasks(existing, []PlanTaskInput{
		{Title: "Call client"},
		{Title: "Call client"},
		{Title: "   "},
	}, sequentialIDs())

	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "new-1", got[1].ID)
}

func TestReconcileTasks_DroppedTasksDisappear(t *testing.T) {
	existing := []PlanTask{{ID: "t1", Title: "A"}, {ID: "t2", Title: "B"}}

	got := ReconcileTasks(existing, []PlanTaskInput{{Title: "B"}}, sequentialIDs())

	require.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].ID)
}

func TestActionPlan_TaskByID(t *testing.T) {
	plan := &ActionPlan{Tasks: []PlanTask{{ID: "a"}, {ID: "b"}}}
	assert.Equal(t, 1, plan.TaskByID("b"))
	assert.Equal(t, -1, plan.TaskByID("zzz"))
}

func TestTaskFeedbackPatch_Apply(t *testing.T) {
	due := time.Date(2030, 1, 2, 9, 0, 0, 0, time.UTC)
	doneAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	later := doneAt.Add(time.Hour)
	patch := TaskFeedbackPatch{
		TaskID: "t1", Feedback: &AiAnalysis{Score: 70}, ReportText: "r", ReportObjectKey: "k",
		Status: TaskStatusDone, CompletedAt: &later,
	}

	t.Run("leaves title and due date alone", func(t *testing.T) {
		got := patch.Apply(PlanTask{ID: "t1", Title: "Renamed", DueAt: &due, Status: TaskStatusTodo})
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, &due, got.DueAt)
		assert.Equal(t, TaskStatusDone, got.Status)
		assert.Equal(t, "k", got.ReportObjectKey)
	})

	t.Run("done stays done", func(t *testing.T) {
		undo := patch
		undo.Status = TaskStatusTodo
		undo.CompletedAt = nil
		got := undo.Apply(PlanTask{ID: "t1", Status: TaskStatusDone, CompletedAt: &doneAt})
		assert.Equal(t, TaskStatusDone, got.Status)
		assert.Equal(t, &doneAt, got.CompletedAt)
		assert.Equal(t, 70.0, got.Feedback.Score)
	})
}
