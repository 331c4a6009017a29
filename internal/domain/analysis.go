package domain

import (
	"context"
	"math"
)

// Warning is one scoring warning raised by the analysis service.
type Warning struct {
	Reason string `json:"reason"`
}

// ConstraintViolation records a scenario constraint the submission breaks.
type ConstraintViolation struct {
	Constraint string `json:"constraint"`
	Reason     string `json:"reason"`
}

// CriterionEvaluation records how the submission fares against one success criterion.
type CriterionEvaluation struct {
	Criterion string `json:"criterion"`
	Met       bool   `json:"met"`
	Comment   string `json:"comment,omitempty"`
}

// AiAnalysis is the structured scoring result for a submission or a plan task report.
type AiAnalysis struct {
	Score                float64               `json:"score"`
	Summary              string                `json:"summary"`
	Warnings             []Warning             `json:"warnings"`
	Tips                 []string              `json:"tips"`
	ConstraintViolations []ConstraintViolation `json:"constraintViolations"`
	CriteriaEvaluations  []CriterionEvaluation `json:"criteriaEvaluations"`
	Strengths            []string              `json:"strengths"`
	Weaknesses           []string              `json:"weaknesses"`
	Recommendations      []string              `json:"recommendations"`
}

// Normalize clamps the score into [0,100] and replaces nil lists with empty ones.
func (a *AiAnalysis) Normalize() {
	switch {
	case math.IsNaN(a.Score) || a.Score < 0:
		a.Score = 0
	case a.Score > 100:
		a.Score = 100
	}
	a.Score = math.Round(a.Score*100) / 100
	if a.Warnings == nil {
		a.Warnings = []Warning{}
	}
	if a.Tips == nil {
		a.Tips = []string{}
	}
	if a.ConstraintViolations == nil {
		a.ConstraintViolations = []ConstraintViolation{}
	}
	if a.CriteriaEvaluations == nil {
		a.CriteriaEvaluations = []CriterionEvaluation{}
	}
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.Weaknesses == nil {
		a.Weaknesses = []string{}
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
}

// AnalysisRequest carries everything the analysis service needs to score one piece of work.
type AnalysisRequest struct {
	ExamTitle       string
	ScenarioBrief   string
	Constraints     []string
	SuccessCriteria []string
	TaskTitle       string
	TaskPrompt      string
	SubmissionText  string
	// PDF is the optional report attachment.
	PDF []byte
}

// Analyzer is the AI analysis/scoring collaborator.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AiAnalysis, error)
}
