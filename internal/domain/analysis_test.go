package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAiAnalysis_Normalize(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"in range", 64.456, 64.46},
		{"negative", -3, 0},
		{"above max", 140, 100},
		{"nan", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &AiAnalysis{Score: tt.score}
			a.Normalize()
			assert.Equal(t, tt.want, a.Score)
			assert.NotNil(t, a.Warnings)
			assert.NotNil(t, a.ConstraintViolations)
			assert.NotNil(t, a.Recommendations)
		})
	}
}

func TestExam_Task(t *testing.T) {
	exam := &Exam{
		Title:         "Warehouse turnaround",
		ScenarioBrief: "Brief",
		Tasks:         []ExamTask{{ID: "t1", Title: "Diagnose"}, {ID: "t2", Title: "Decide"}},
	}

	main, ok := exam.Task("")
	assert.True(t, ok)
	assert.Equal(t, "t1", main.ID)

	second, ok := exam.Task("t2")
	assert.True(t, ok)
	assert.Equal(t, "Decide", second.Title)

	_, ok = exam.Task("missing")
	assert.False(t, ok)

	bare := &Exam{Title: "No tasks", ScenarioBrief: "Only a brief"}
	fallback, ok := bare.Task(MainTaskID)
	assert.True(t, ok)
	assert.Equal(t, "Only a brief", fallback.Prompt)
}

func TestVerdictInput_ConstraintViolationsCount(t *testing.T) {
	in := VerdictInput{
		Submissions: []*Submission{
			{Analysis: &AiAnalysis{ConstraintViolations: []ConstraintViolation{{Constraint: "budget"}}}},
			{},
		},
		Plan: &ActionPlan{Tasks: []PlanTask{
			{Feedback: &AiAnalysis{ConstraintViolations: []ConstraintViolation{{Constraint: "a"}, {Constraint: "b"}}}},
			{},
		}},
	}
	assert.Equal(t, 3, in.ConstraintViolationsCount())
}
