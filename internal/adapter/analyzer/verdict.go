package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"mission-desk/internal/domain"
	"mission-desk/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

const verdictSystemPrompt = `You are the lead assessor closing an operational consulting training mission.
Aggregate every analysed submission and action plan task into one final verdict and respond with ONLY a JSON object:
{
  "globalScore": 0,
  "status": "passed | needs_improvement | failed",
  "message": "one sentence addressed to the participant",
  "strengths": ["..."],
  "weaknesses": ["..."],
  "recommendations": ["..."],
  "report": "a structured free-text report of a few paragraphs"
}
globalScore is a number between 0 and 100.`

// verdictRules is the subset of an exam's verdict rules the generator understands.
type verdictRules struct {
	PassScore               *float64 `json:"passScore"`
	NeedsImprovementScore   *float64 `json:"needsImprovementScore"`
	MaxConstraintViolations *int     `json:"maxConstraintViolations"`
}

const (
	defaultPassScore             = 70.0
	defaultNeedsImprovementScore = 50.0
)

// LLMVerdictGenerator implements domain.VerdictGenerator on top of a langchaingo model.
type LLMVerdictGenerator struct {
	model   llms.Model
	timeout time.Duration
}

func NewLLMVerdictGenerator(model llms.Model, timeout time.Duration) *LLMVerdictGenerator {
	return &LLMVerdictGenerator{model: model, timeout: timeout}
}

// GenerateVerdict implements domain.VerdictGenerator
func (g *LLMVerdictGenerator) GenerateVerdict(ctx context.Context, in domain.VerdictInput) (*domain.Verdict, error) {
	l := logger.Get()
	if in.Exam == nil {
		return nil, fmt.Errorf("verdict input has no exam")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	prompt, err := buildVerdictPrompt(in)
	if err != nil {
		return nil, err
	}

	payload, err := generate(ctx, g.model, verdictSystemPrompt, []llms.ContentPart{llms.TextContent{Text: prompt}})
	if err != nil {
		return nil, domain.NewAIServiceError(err)
	}

	var verdict domain.Verdict
	if err := json.Unmarshal([]byte(payload), &verdict); err != nil {
		l.Error("Failed to unmarshal verdict JSON", zap.Error(err), zap.String("payload", payload))
		return nil, domain.NewAIServiceError(fmt.Errorf("failed to unmarshal verdict JSON: %w", err))
	}

	applyVerdictRules(&verdict, parseVerdictRules(in.Exam.VerdictRules), in.ConstraintViolationsCount())
	l.Info("Final verdict generated",
		zap.String("exam_id", in.Exam.ID),
		zap.Float64("global_score", verdict.GlobalScore),
		zap.String("status", verdict.Status))
	return &verdict, nil
}

func parseVerdictRules(raw json.RawMessage) verdictRules {
	var rules verdictRules
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rules); err != nil {
			logger.Get().Warn("Ignoring unreadable verdict rules", zap.Error(err))
		}
	}
	return rules
}

// applyVerdictRules clamps the score and derives the status from the exam thresholds
// so the stored status never contradicts the score.
func applyVerdictRules(v *domain.Verdict, rules verdictRules, violations int) {
	switch {
	case math.IsNaN(v.GlobalScore) || v.GlobalScore < 0:
		v.GlobalScore = 0
	case v.GlobalScore > 100:
		v.GlobalScore = 100
	}
	v.GlobalScore = math.Round(v.GlobalScore*100) / 100

	pass, improve := defaultPassScore, defaultNeedsImprovementScore
	if rules.PassScore != nil {
		pass = *rules.PassScore
	}
	if rules.NeedsImprovementScore != nil {
		improve = *rules.NeedsImprovementScore
	}

	switch {
	case v.GlobalScore >= pass:
		v.Status = domain.ReportStatusPassed
	case v.GlobalScore >= improve:
		v.Status = domain.ReportStatusNeedsImprovement
	default:
		v.Status = domain.ReportStatusFailed
	}
	if rules.MaxConstraintViolations != nil && violations > *rules.MaxConstraintViolations && v.Status == domain.ReportStatusPassed {
		v.Status = domain.ReportStatusNeedsImprovement
	}

	if v.Strengths == nil {
		v.Strengths = []string{}
	}
	if v.Weaknesses == nil {
		v.Weaknesses = []string{}
	}
	if v.Recommendations == nil {
		v.Recommendations = []string{}
	}
}

func buildVerdictPrompt(in domain.VerdictInput) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Scenario: %s\n\nBrief:\n%s\n\nConstraints:\n%s\n\nSuccess criteria:\n%s\n\n",
		in.Exam.Title, in.Exam.ScenarioBrief, bulletList(in.Exam.Constraints), bulletList(in.Exam.SuccessCriteria))

	b.WriteString("Analysed submissions:\n")
	if len(in.Submissions) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, s := range in.Submissions {
		analysis, err := json.Marshal(s.Analysis)
		if err != nil {
			return "", fmt.Errorf("failed to encode submission analysis: %w", err)
		}
		fmt.Fprintf(&b, "- task %q: %q\n  analysis: %s\n", s.TaskID, s.Text, analysis)
	}

	b.WriteString("\nAction plan tasks:\n")
	if in.Plan == nil || len(in.Plan.Tasks) == 0 {
		b.WriteString("- (none)\n")
	} else {
		for _, t := range in.Plan.Tasks {
			fmt.Fprintf(&b, "- %s [%s]", t.Title, t.Status)
			if t.Feedback != nil {
				fmt.Fprintf(&b, " score %.2f: %s", t.Feedback.Score, t.Feedback.Summary)
			}
			b.WriteByte('\n')
		}
	}

	fmt.Fprintf(&b, "\nTotal constraint violations recorded: %d\n", in.ConstraintViolationsCount())
	return b.String(), nil
}
