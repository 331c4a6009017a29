package domain

import (
	"context"
	"encoding/json"
	"time"
)

// MainTaskID identifies the scenario's main task when a submission carries no task ID.
const MainTaskID = "main"

// ExamTask is one task of an exam scenario.
type ExamTask struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// Exam is the assigned scenario definition. Participants only ever read it.
type Exam struct {
	ID                string
	Title             string
	ScenarioBrief     string
	Constraints       []string
	SuccessCriteria   []string
	Tasks             []ExamTask
	VerdictRules      json.RawMessage
	AssignedAccountID *string
	Active            bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Task returns the exam task with the given ID. An empty ID resolves to the main scenario task,
// which is the first task when the exam defines any.
func (e *Exam) Task(taskID string) (ExamTask, bool) {
	if taskID == "" || taskID == MainTaskID {
		if len(e.Tasks) > 0 {
			return e.Tasks[0], true
		}
		return ExamTask{ID: MainTaskID, Title: e.Title, Prompt: e.ScenarioBrief}, true
	}
	for _, t := range e.Tasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return ExamTask{}, false
}

// IsAssignedTo reports whether the exam is bound to the given account.
func (e *Exam) IsAssignedTo(accountID string) bool {
	return e.AssignedAccountID != nil && *e.AssignedAccountID == accountID
}

// ExamRepository defines the interface for exam definitions.
type ExamRepository interface {
	GetExamByID(ctx context.Context, examID string) (*Exam, error)
	// GetActiveExamForAccount returns the active exam assigned to the account, or nil when none is.
	GetActiveExamForAccount(ctx context.Context, accountID string) (*Exam, error)
	SaveExam(ctx context.Context, exam *Exam) error
}
