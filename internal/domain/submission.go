package domain

import (
	"context"
	"strings"
	"time"
)

// Submission is one participant answer to a task within an exam.
type Submission struct {
	ID         string
	ExamID     string
	TaskID     string
	AccountID  string
	Text       string
	Analysis   *AiAnalysis
	AnalyzedAt *time.Time
	CreatedAt  time.Time
}

// NewSubmission creates a new Submission instance
func NewSubmission(examID, taskID, accountID, text string) *Submission {
	return &Submission{
		ExamID:    examID,
		TaskID:    taskID,
		AccountID: accountID,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// Validate validates the submission
func (s *Submission) Validate() error {
	var errs ValidationErrors
	if s.ExamID == "" {
		errs = append(errs, NewMissingFieldError("examId"))
	}
	if strings.TrimSpace(s.Text) == "" {
		errs = append(errs, NewMissingFieldError("submissionText"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SubmissionRepository defines the interface for submission persistence.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, submission *Submission) error
	GetSubmissionByID(ctx context.Context, submissionID string) (*Submission, error)
	SaveAnalysis(ctx context.Context, submissionID string, analysis *AiAnalysis, analyzedAt time.Time) error
	// ListAnalyzedSubmissions returns the analysed submissions of an account for an exam, newest first.
	ListAnalyzedSubmissions(ctx context.Context, examID, accountID string) ([]*Submission, error)
}
