package domain

import (
	"context"
	"time"
)

// FinalReport is the single aggregated verdict per (exam, account).
type FinalReport struct {
	ID                        string
	ExamID                    string
	AccountID                 string
	GlobalScore               float64
	ConstraintViolationsCount int
	Status                    string
	Message                   string
	Strengths                 []string
	Weaknesses                []string
	Recommendations           []string
	Report                    string
	CreatedAt                 time.Time
}

// Report status values produced by the verdict step.
const (
	ReportStatusPassed           = "passed"
	ReportStatusNeedsImprovement = "needs_improvement"
	ReportStatusFailed           = "failed"
)

// VerdictInput is the aggregate handed to the verdict generator.
type VerdictInput struct {
	Exam        *Exam
	Submissions []*Submission
	Plan        *ActionPlan
}

// ConstraintViolationsCount sums violations across analysed submissions and plan task feedback.
func (in VerdictInput) ConstraintViolationsCount() int {
	n := 0
	for _, s := range in.Submissions {
		if s.Analysis != nil {
			n += len(s.Analysis.ConstraintViolations)
		}
	}
	if in.Plan != nil {
		for _, t := range in.Plan.Tasks {
			if t.Feedback != nil {
				n += len(t.Feedback.ConstraintViolations)
			}
		}
	}
	return n
}

// Verdict is what the verdict generator returns; the report service turns it into a FinalReport.
type Verdict struct {
	GlobalScore     float64  `json:"globalScore"`
	Status          string   `json:"status"`
	Message         string   `json:"message"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
	Report          string   `json:"report"`
}

// VerdictGenerator aggregates all submissions and feedback into one verdict.
type VerdictGenerator interface {
	GenerateVerdict(ctx context.Context, in VerdictInput) (*Verdict, error)
}

// ReportRepository defines the interface for final report persistence.
type ReportRepository interface {
	// GetReport returns the report for (exam, account), or nil when none was generated.
	GetReport(ctx context.Context, examID, accountID string) (*FinalReport, error)
	// CreateReport inserts a report. It returns a CodeConflict DomainError when one already exists.
	CreateReport(ctx context.Context, report *FinalReport) error
}
