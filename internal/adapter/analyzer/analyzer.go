package analyzer

import (
	"context"
	"fmt"
	"time"

	"mission-desk/internal/domain"
	"mission-desk/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const analysisSystemPrompt = `You are an assessor for an operational consulting training mission.
Score the participant's work against the scenario and respond with ONLY a JSON object in this format:
{
  "score": 0,
  "summary": "two or three sentences",
  "warnings": [{"reason": "..."}],
  "tips": ["..."],
  "constraintViolations": [{"constraint": "exact constraint text", "reason": "..."}],
  "criteriaEvaluations": [{"criterion": "exact criterion text", "met": true, "comment": "..."}],
  "strengths": ["..."],
  "weaknesses": ["..."],
  "recommendations": ["..."]
}

Rules:
1. score is a number between 0 and 100
2. evaluate every success criterion exactly once
3. only list a constraint violation when the work clearly breaks that constraint
4. keep every list item under 40 words`

// LLMAnalyzer implements domain.Analyzer on top of a langchaingo model.
type LLMAnalyzer struct {
	model     llms.Model
	timeout   time.Duration
	attachPDF bool
}

// NewLLMAnalyzer creates the analysis adapter. When attachPDF is false the model only
// learns that a PDF was supplied.
func NewLLMAnalyzer(model llms.Model, timeout time.Duration, attachPDF bool) *LLMAnalyzer {
	return &LLMAnalyzer{model: model, timeout: timeout, attachPDF: attachPDF}
}

// Analyze implements domain.Analyzer
func (a *LLMAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AiAnalysis, error) {
	l := logger.Get()
	l.Info("Analyzing submission with LLM",
		zap.String("exam", req.ExamTitle),
		zap.String("task", req.TaskTitle),
		zap.Int("text_length", len(req.SubmissionText)),
		zap.Int("pdf_bytes", len(req.PDF)))

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	parts := []llms.ContentPart{llms.TextContent{Text: buildAnalysisPrompt(req, a.attachPDF)}}
	if a.attachPDF && len(req.PDF) > 0 {
		parts = append(parts, llms.BinaryPart("application/pdf", req.PDF))
	}

	payload, err := generate(ctx, a.model, analysisSystemPrompt, parts)
	if err != nil {
		return nil, domain.NewAIServiceError(err)
	}

	analysis, err := parseAnalysis(payload)
	if err != nil {
		l.Error("Failed to parse analysis from LLM response", zap.Error(err), zap.String("payload", payload))
		return nil, domain.NewAIServiceError(err)
	}

	l.Info("LLM analysis complete", zap.Float64("score", analysis.Score), zap.Int("violations", len(analysis.ConstraintViolations)))
	return analysis, nil
}

func buildAnalysisPrompt(req domain.AnalysisRequest, attachPDF bool) string {
	pdfNote := "No PDF report was attached."
	if len(req.PDF) > 0 {
		if attachPDF {
			pdfNote = "The participant's PDF report is attached; take it into account."
		} else {
			pdfNote = fmt.Sprintf("The participant also uploaded a PDF report (%d bytes) that is not shown here; score the text.", len(req.PDF))
		}
	}

	return fmt.Sprintf(`Scenario: %s

Brief:
%s

Constraints:
%s

Success criteria:
%s

Task: %s
%s

Participant submission:
"""
%s
"""

%s`,
		req.ExamTitle,
		req.ScenarioBrief,
		bulletList(req.Constraints),
		bulletList(req.SuccessCriteria),
		req.TaskTitle,
		req.TaskPrompt,
		req.SubmissionText,
		pdfNote,
	)
}
