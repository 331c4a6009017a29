package service

import (
	"context"
	"time"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

// DraftService autosaves answers that have not been submitted yet.
type DraftService interface {
	SaveDraft(ctx context.Context, accountID string, req *dto.AnswerDraftRequest) (*domain.AnswerDraft, error)
	GetDraft(ctx context.Context, accountID, examID, taskID string) (*domain.AnswerDraft, error)
}

type draftServiceImpl struct {
	store domain.DraftStore
	now   func() time.Time
}

func NewDraftService(store domain.DraftStore) DraftService {
	return &draftServiceImpl{store: store, now: time.Now}
}

func (s *draftServiceImpl) SaveDraft(ctx context.Context, accountID string, req *dto.AnswerDraftRequest) (*domain.AnswerDraft, error) {
	draft := domain.AnswerDraft{
		ExamID:  req.ExamID,
		TaskID:  req.TaskID,
		Text:    req.Text,
		SavedAt: s.now().UTC(),
	}
	if draft.TaskID == "" {
		draft.TaskID = domain.MainTaskID
	}
	if err := s.store.SaveDraft(ctx, accountID, draft); err != nil {
		return nil, domain.NewInternalError("Failed to save draft", err)
	}
	return &draft, nil
}

func (s *draftServiceImpl) GetDraft(ctx context.Context, accountID, examID, taskID string) (*domain.AnswerDraft, error) {
	if examID == "" {
		return nil, domain.ValidationErrors{domain.NewMissingFieldError("examId")}
	}
	draft, err := s.store.GetDraft(ctx, accountID, examID, taskID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load draft", err)
	}
	if draft == nil {
		return nil, domain.NewError(domain.CodeDraftNotFound, "No draft saved", nil)
	}
	return draft, nil
}
