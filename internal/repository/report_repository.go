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

// ReportDatabaseAdapter implements domain.ReportRepository using sqlx.
type ReportDatabaseAdapter struct {
	db *sqlx.DB
}

func NewReportDatabaseAdapter(db *sqlx.DB) domain.ReportRepository {
	return &ReportDatabaseAdapter{db: db}
}

// GetReport returns nil, nil when no report was generated yet.
func (a *ReportDatabaseAdapter) GetReport(ctx context.Context, examID, accountID string) (*domain.FinalReport, error) {
	var m models.FinalReport
	query := `SELECT
		id "id",
		exam_id "exam_id",
		account_id "account_id",
		global_score "global_score",
		constraint_violations_count "constraint_violations_count",
		status "status",
		message "message",
		strengths "strengths",
		weaknesses "weaknesses",
		recommendations "recommendations",
		report "report",
		created_at "created_at"
	FROM final_reports
	WHERE exam_id = :1 AND account_id = :2`

	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, examID, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get final report: %w", err)
	}
	return toDomainReport(&m), nil
}

// CreateReport inserts the report. The (exam_id, account_id) unique key turns a second insert into a conflict.
func (a *ReportDatabaseAdapter) CreateReport(ctx context.Context, report *domain.FinalReport) error {
	if report.ID == "" {
		report.ID = util.NewULID()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	query := `INSERT INTO final_reports (
		id, exam_id, account_id, global_score, constraint_violations_count, status,
		message, strengths, weaknesses, recommendations, report, created_at
	) VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12)`

	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		report.ID,
		report.ExamID,
		report.AccountID,
		report.GlobalScore,
		report.ConstraintViolationsCount,
		report.Status,
		util.StringToNullString(report.Message),
		models.StringSlice(report.Strengths),
		models.StringSlice(report.Weaknesses),
		models.StringSlice(report.Recommendations),
		util.StringToNullString(report.Report),
		report.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.CodeConflict, "final report already exists", err)
		}
		return fmt.Errorf("failed to create final report: %w", err)
	}
	return nil
}
