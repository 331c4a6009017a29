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

const planColumns = `id "id",
		exam_id "exam_id",
		account_id "account_id",
		tasks "tasks",
		created_at "created_at",
		updated_at "updated_at"`

// PlanDatabaseAdapter implements domain.PlanRepository using sqlx.
// Tasks live in a JSON column of the plan row; the row is unique on (account_id, exam_id).
type PlanDatabaseAdapter struct {
	db *sqlx.DB
}

func NewPlanDatabaseAdapter(db *sqlx.DB) domain.PlanRepository {
	return &PlanDatabaseAdapter{db: db}
}

// GetPlan returns nil, nil when the account has no plan for the exam.
func (a *PlanDatabaseAdapter) GetPlan(ctx context.Context, examID, accountID string) (*domain.ActionPlan, error) {
	var m models.ActionPlan
	query := `SELECT ` + planColumns + ` FROM action_plans WHERE exam_id = :1 AND account_id = :2`

	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, examID, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return toDomainPlan(&m), nil
}

// GetPlanByID returns nil, nil when the plan does not exist.
func (a *PlanDatabaseAdapter) GetPlanByID(ctx context.Context, planID string) (*domain.ActionPlan, error) {
	var m models.ActionPlan
	query := `SELECT ` + planColumns + ` FROM action_plans WHERE id = :1`

	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, query, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get plan %s: %w", planID, err)
	}
	return toDomainPlan(&m), nil
}

// UpsertPlan writes the task list keyed by (account, exam) and reloads the stored row into plan.
func (a *PlanDatabaseAdapter) UpsertPlan(ctx context.Context, plan *domain.ActionPlan) error {
	exec := GetExecutor(ctx, a.db)
	now := time.Now()
	tasks := plan.Tasks
	if tasks == nil {
		tasks = []domain.PlanTask{}
	}
	tasksJSON := models.NewJSON(&tasks)

	query := `MERGE INTO action_plans p
	USING (SELECT :1 AS account_id, :2 AS exam_id FROM dual) s
	ON (p.account_id = s.account_id AND p.exam_id = s.exam_id)
	WHEN MATCHED THEN UPDATE SET p.tasks = :3, p.updated_at = :4
	WHEN NOT MATCHED THEN INSERT (id, exam_id, account_id, tasks, created_at, updated_at)
	VALUES (:5, :6, :7, :8, :9, :10)`

	_, err := exec.ExecContext(ctx, query,
		plan.AccountID, plan.ExamID,
		tasksJSON, now,
		util.NewULID(), plan.ExamID, plan.AccountID, tasksJSON, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}

	stored, err := a.GetPlan(ctx, plan.ExamID, plan.AccountID)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("plan vanished after upsert")
	}
	*plan = *stored
	return nil
}

// UpdateTask applies patch to one task of the plan, matched by ID, on the locked current row, so
// title and due date edits saved meanwhile survive. Siblings are untouched.
// Callers run it inside a transaction so the row lock holds until commit.
func (a *PlanDatabaseAdapter) UpdateTask(ctx context.Context, planID string, patch domain.TaskFeedbackPatch) (domain.PlanTask, string, error) {
	exec := GetExecutor(ctx, a.db)

	var m models.ActionPlan
	query := `SELECT ` + planColumns + ` FROM action_plans WHERE id = :1 FOR UPDATE`
	if err := exec.GetContext(ctx, &m, query, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PlanTask{}, "", domain.NewPlanNotFoundError()
		}
		return domain.PlanTask{}, "", fmt.Errorf("failed to lock plan %s: %w", planID, err)
	}

	plan := toDomainPlan(&m)
	idx := plan.TaskByID(patch.TaskID)
	if idx < 0 {
		return domain.PlanTask{}, "", domain.NewPlanTaskNotFoundError(patch.TaskID)
	}
	replacedKey := plan.Tasks[idx].ReportObjectKey
	plan.Tasks[idx] = patch.Apply(plan.Tasks[idx])

	update := `UPDATE action_plans SET tasks = :1, updated_at = :2 WHERE id = :3`
	if _, err := exec.ExecContext(ctx, update, models.NewJSON(&plan.Tasks), time.Now(), planID); err != nil {
		return domain.PlanTask{}, "", fmt.Errorf("failed to update task %s: %w", patch.TaskID, err)
	}
	if replacedKey == patch.ReportObjectKey {
		replacedKey = ""
	}
	return plan.Tasks[idx], replacedKey, nil
}
