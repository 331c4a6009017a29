package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

func TestDraftService(t *testing.T) {
	store := new(MockDraftStore)
	store.On("SaveDraft", mock.Anything, "acc-1", mock.MatchedBy(func(d domain.AnswerDraft) bool {
		return d.ExamID == "exam-1" && d.TaskID == domain.MainTaskID && d.Text == "half an answer" && !d.SavedAt.IsZero()
	})).Return(nil)
	store.On("GetDraft", mock.Anything, "acc-1", "exam-1", "").Return(nil, nil)
	svc := NewDraftService(store)

	draft, err := svc.SaveDraft(context.Background(), "acc-1", &dto.AnswerDraftRequest{ExamID: "exam-1", Text: "half an answer"})
	require.NoError(t, err)
	assert.Equal(t, domain.MainTaskID, draft.TaskID)

	_, err = svc.GetDraft(context.Background(), "acc-1", "exam-1", "")
	assert.True(t, domain.HasCode(err, domain.CodeDraftNotFound))

	_, err = svc.GetDraft(context.Background(), "acc-1", "", "")
	var verrs domain.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
