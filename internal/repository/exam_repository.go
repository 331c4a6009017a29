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

const examColumns = `id "id",
		title "title",
		scenario_brief "scenario_brief",
		constraints "constraints",
		success_criteria "success_criteria",
		tasks "tasks",
		verdict_rules "verdict_rules",
		assigned_account_id "assigned_account_id",
		active "active",
		created_at "created_at",
		updated_at "updated_at"`

// ExamDatabaseAdapter implements domain.ExamRepository using sqlx.
type ExamDatabaseAdapter struct {
	db *sqlx.DB
}

func NewExamDatabaseAdapter(db *sqlx.DB) domain.ExamRepository {
	return &ExamDatabaseAdapter{db: db}
}

// GetExamByID returns nil, nil when the exam does not exist.
func (a *ExamDatabaseAdapter) GetExamByID(ctx context.Context, examID string) (*domain.Exam, error) {
	var m models.Exam
	query := `SELECT ` + examColumns + ` FROM exams WHERE id = :1`

	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, examID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exam %s: %w", examID, err)
	}
	return toDomainExam(&m), nil
}

// GetActiveExamForAccount implements domain.ExamRepository
func (a *ExamDatabaseAdapter) GetActiveExamForAccount(ctx context.Context, accountID string) (*domain.Exam, error) {
	var m models.Exam
	query := `SELECT ` + examColumns + `
	FROM exams
	WHERE assigned_account_id = :1
	AND active = 1
	ORDER BY updated_at DESC
	FETCH FIRST 1 ROWS ONLY`

	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active exam for account %s: %w", accountID, err)
	}
	return toDomainExam(&m), nil
}

// SaveExam inserts or replaces an exam definition.
func (a *ExamDatabaseAdapter) SaveExam(ctx context.Context, exam *domain.Exam) error {
	if exam.ID == "" {
		exam.ID = util.NewULID()
	}
	now := time.Now()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now
	m := fromDomainExam(exam)

	query := `MERGE INTO exams e
	USING (SELECT :1 AS id FROM dual) s
	ON (e.id = s.id)
	WHEN MATCHED THEN UPDATE SET
		e.title = :2, e.scenario_brief = :3, e.constraints = :4, e.success_criteria = :5,
		e.tasks = :6, e.verdict_rules = :7, e.assigned_account_id = :8, e.active = :9, e.updated_at = :10
	WHEN NOT MATCHED THEN INSERT
		(id, title, scenario_brief, constraints, success_criteria, tasks, verdict_rules, assigned_account_id, active, created_at, updated_at)
	VALUES (:11, :12, :13, :14, :15, :16, :17, :18, :19, :20, :21)`

	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		m.ID,
		m.Title, m.ScenarioBrief, m.Constraints, m.SuccessCriteria,
		m.Tasks, m.VerdictRules, m.AssignedAccountID, m.Active, m.UpdatedAt,
		m.ID, m.Title, m.ScenarioBrief, m.Constraints, m.SuccessCriteria,
		m.Tasks, m.VerdictRules, m.AssignedAccountID, m.Active, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save exam: %w", err)
	}
	return nil
}
