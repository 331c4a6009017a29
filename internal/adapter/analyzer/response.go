package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mission-desk/internal/domain"
	"mission-desk/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

var errNoJSON = errors.New("no JSON object found in LLM response")

// extractJSON strips <think> blocks emitted by reasoning models and returns the outermost {...} span.
func extractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)

	for {
		start := strings.Index(cleaned, "<think>")
		if start == -1 {
			break
		}
		end := strings.Index(cleaned, "</think>")
		if end == -1 || end < start {
			break
		}
		cleaned = strings.TrimSpace(cleaned[:start] + cleaned[end+len("</think>"):])
	}

	jsonStart := strings.Index(cleaned, "{")
	jsonEnd := strings.LastIndex(cleaned, "}")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		return "", errNoJSON
	}
	return cleaned[jsonStart : jsonEnd+1], nil
}

// generate sends one system + human exchange and returns the extracted JSON object.
func generate(ctx context.Context, model llms.Model, system string, human []llms.ContentPart) (string, error) {
	l := logger.Get()

	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		{Role: llms.ChatMessageTypeHuman, Parts: human},
	}

	resp, err := model.GenerateContent(ctx, msgs, llms.WithTemperature(0.1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			l.Error("LLM request timed out", zap.Error(err))
			return "", fmt.Errorf("LLM request timed out: %w", err)
		}
		l.Error("Failed to get response from LLM", zap.Error(err))
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Content
	l.Debug("Raw LLM response received", zap.String("raw_response", raw))

	extracted, err := extractJSON(raw)
	if err != nil {
		l.Error("Could not find JSON object in LLM response", zap.String("raw_response", raw))
		return "", err
	}
	return extracted, nil
}

// Models do not always honour the object shape for list items, so warnings and
// violations are accepted either as objects or as bare strings.
type rawAnalysis struct {
	Score                float64                      `json:"score"`
	Summary              string                       `json:"summary"`
	Warnings             []json.RawMessage            `json:"warnings"`
	Tips                 []string                     `json:"tips"`
	ConstraintViolations []json.RawMessage            `json:"constraintViolations"`
	CriteriaEvaluations  []domain.CriterionEvaluation `json:"criteriaEvaluations"`
	Strengths            []string                     `json:"strengths"`
	Weaknesses           []string                     `json:"weaknesses"`
	Recommendations      []string                     `json:"recommendations"`
}

func parseAnalysis(payload string) (*domain.AiAnalysis, error) {
	var raw rawAnalysis
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis JSON: %w", err)
	}

	analysis := &domain.AiAnalysis{
		Score:               raw.Score,
		Summary:             strings.TrimSpace(raw.Summary),
		Tips:                raw.Tips,
		CriteriaEvaluations: raw.CriteriaEvaluations,
		Strengths:           raw.Strengths,
		Weaknesses:          raw.Weaknesses,
		Recommendations:     raw.Recommendations,
	}
	for _, w := range raw.Warnings {
		var s string
		if json.Unmarshal(w, &s) == nil {
			analysis.Warnings = append(analysis.Warnings, domain.Warning{Reason: s})
			continue
		}
		var obj domain.Warning
		if err := json.Unmarshal(w, &obj); err != nil {
			return nil, fmt.Errorf("invalid warning entry: %w", err)
		}
		analysis.Warnings = append(analysis.Warnings, obj)
	}
	for _, v := range raw.ConstraintViolations {
		var s string
		if json.Unmarshal(v, &s) == nil {
			analysis.ConstraintViolations = append(analysis.ConstraintViolations, domain.ConstraintViolation{Constraint: s})
			continue
		}
		var obj domain.ConstraintViolation
		if err := json.Unmarshal(v, &obj); err != nil {
			return nil, fmt.Errorf("invalid constraint violation entry: %w", err)
		}
		analysis.ConstraintViolations = append(analysis.ConstraintViolations, obj)
	}

	analysis.Normalize()
	return analysis, nil
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "- (none)"
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(it)
	}
	return b.String()
}
