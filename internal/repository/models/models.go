package models

import (
	"database/sql"
	"time"

	"mission-desk/internal/domain"
)

type Account struct {
	ID            string         `db:"id"`
	ParticipantID string         `db:"participant_id"`
	DisplayName   sql.NullString `db:"display_name"`
	PasswordHash  string         `db:"password_hash"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type Exam struct {
	ID                string                  `db:"id"`
	Title             string                  `db:"title"`
	ScenarioBrief     string                  `db:"scenario_brief"`
	Constraints       StringSlice             `db:"constraints"`
	SuccessCriteria   StringSlice             `db:"success_criteria"`
	Tasks             JSON[[]domain.ExamTask] `db:"tasks"`
	VerdictRules      sql.NullString          `db:"verdict_rules"`
	AssignedAccountID sql.NullString          `db:"assigned_account_id"`
	Active            int                     `db:"active"`
	CreatedAt         time.Time               `db:"created_at"`
	UpdatedAt         time.Time               `db:"updated_at"`
}

type Submission struct {
	ID             string                  `db:"id"`
	ExamID         string                  `db:"exam_id"`
	TaskID         sql.NullString          `db:"task_id"`
	AccountID      string                  `db:"account_id"`
	SubmissionText string                  `db:"submission_text"`
	Analysis       JSON[domain.AiAnalysis] `db:"analysis"`
	AnalyzedAt     sql.NullTime            `db:"analyzed_at"`
	CreatedAt      time.Time               `db:"created_at"`
}

type ActionPlan struct {
	ID        string                  `db:"id"`
	ExamID    string                  `db:"exam_id"`
	AccountID string                  `db:"account_id"`
	Tasks     JSON[[]domain.PlanTask] `db:"tasks"`
	CreatedAt time.Time               `db:"created_at"`
	UpdatedAt time.Time               `db:"updated_at"`
}

type FinalReport struct {
	ID                        string         `db:"id"`
	ExamID                    string         `db:"exam_id"`
	AccountID                 string         `db:"account_id"`
	GlobalScore               float64        `db:"global_score"`
	ConstraintViolationsCount int            `db:"constraint_violations_count"`
	Status                    string         `db:"status"`
	Message                   sql.NullString `db:"message"`
	Strengths                 StringSlice    `db:"strengths"`
	Weaknesses                StringSlice    `db:"weaknesses"`
	Recommendations           StringSlice    `db:"recommendations"`
	Report                    sql.NullString `db:"report"`
	CreatedAt                 time.Time      `db:"created_at"`
}

type FinishSlot struct {
	ID       string    `db:"id"`
	Title    string    `db:"title"`
	StartsAt time.Time `db:"starts_at"`
	EndsAt   time.Time `db:"ends_at"`
	Active   int       `db:"active"`
}
