package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mission-desk/internal/cache"
	"mission-desk/internal/domain"
)

// CacheDraftStore keeps answer drafts in one cache hash per (account, exam), one field per task.
type CacheDraftStore struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewCacheDraftStore(c domain.Cache, ttl time.Duration) *CacheDraftStore {
	return &CacheDraftStore{cache: c, ttl: ttl}
}

func draftField(taskID string) string {
	if taskID == "" {
		return domain.MainTaskID
	}
	return taskID
}

func (s *CacheDraftStore) SaveDraft(ctx context.Context, accountID string, draft domain.AnswerDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	key := cache.AnswerDraftKey(accountID, draft.ExamID)
	if err := s.cache.HSet(ctx, key, draftField(draft.TaskID), string(raw)); err != nil {
		return err
	}
	if s.ttl > 0 {
		return s.cache.Expire(ctx, key, s.ttl)
	}
	return nil
}

func (s *CacheDraftStore) GetDraft(ctx context.Context, accountID, examID, taskID string) (*domain.AnswerDraft, error) {
	raw, err := s.cache.HGet(ctx, cache.AnswerDraftKey(accountID, examID), draftField(taskID))
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	var draft domain.AnswerDraft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return nil, fmt.Errorf("failed to decode draft: %w", err)
	}
	return &draft, nil
}
