package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mission-desk/internal/domain"
	"mission-desk/internal/repository/models"
	"mission-desk/internal/util"

	"github.com/jmoiron/sqlx"
)

const submissionColumns = `id "id",
		exam_id "exam_id",
		task_id "task_id",
		account_id "account_id",
		submission_text "submission_text",
		analysis "analysis",
		analyzed_at "analyzed_at",
		created_at "created_at"`

// SubmissionDatabaseAdapter implements domain.SubmissionRepository using sqlx.
type SubmissionDatabaseAdapter struct {
	db *sqlx.DB
}

func NewSubmissionDatabaseAdapter(db *sqlx.DB) domain.SubmissionRepository {
	return &SubmissionDatabaseAdapter{db: db}
}

// CreateSubmission assigns the ID and creation time and inserts the row.
func (a *SubmissionDatabaseAdapter) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	submission.ID = util.NewULID()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now()
	}

	query := `INSERT INTO submissions (id, exam_id, task_id, account_id, submission_text, created_at)
	VALUES (:1, :2, :3, :4, :5, :6)`

	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		submission.ID,
		submission.ExamID,
		util.StringToNullString(submission.TaskID),
		submission.AccountID,
		submission.Text,
		submission.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// GetSubmissionByID returns nil, nil when the submission does not exist.
func (a *SubmissionDatabaseAdapter) GetSubmissionByID(ctx context.Context, submissionID string) (*domain.Submission, error) {
	var m models.Submission
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = :1`

	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, submissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get submission %s: %w", submissionID, err)
	}
	return toDomainSubmission(&m), nil
}

// SaveAnalysis overwrites the latest analysis of a submission.
func (a *SubmissionDatabaseAdapter) SaveAnalysis(ctx context.Context, submissionID string, analysis *domain.AiAnalysis, analyzedAt time.Time) error {
	query := `UPDATE submissions SET analysis = :1, analyzed_at = :2 WHERE id = :3`

	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, models.NewJSON(analysis), analyzedAt, submissionID)
	if err != nil {
		return fmt.Errorf("failed to save analysis for submission %s: %w", submissionID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NewSubmissionNotFoundError(submissionID)
	}
	return nil
}

// ListAnalyzedSubmissions implements domain.SubmissionRepository
func (a *SubmissionDatabaseAdapter) ListAnalyzedSubmissions(ctx context.Context, examID, accountID string) ([]*domain.Submission, error) {
	var rows []models.Submission
	query := `SELECT ` + submissionColumns + `
	FROM submissions
	WHERE exam_id = :1
	AND account_id = :2
	AND analysis IS NOT NULL
	ORDER BY created_at DESC`

	if err := GetExecutor(ctx, a.db).SelectContext(ctx, &rows, query, examID, accountID); err != nil {
		return nil, fmt.Errorf("failed to list analysed submissions: %w", err)
	}

	out := make([]*domain.Submission, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainSubmission(&rows[i]))
	}
	return out, nil
}
