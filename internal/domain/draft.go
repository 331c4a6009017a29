package domain

import (
	"context"
	"time"
)

// AnswerDraft is an autosaved, not yet submitted answer text.
type AnswerDraft struct {
	ExamID  string    `json:"examId"`
	TaskID  string    `json:"taskId"`
	Text    string    `json:"text"`
	SavedAt time.Time `json:"savedAt"`
}

// DraftStore keeps answer drafts per account.
type DraftStore interface {
	SaveDraft(ctx context.Context, accountID string, draft AnswerDraft) error
	// GetDraft returns nil when no draft is stored.
	GetDraft(ctx context.Context, accountID, examID, taskID string) (*AnswerDraft, error)
}
