package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

func TestValidator_Struct(t *testing.T) {
	v := NewValidator()

	t.Run("valid submit request", func(t *testing.T) {
		err := v.Struct(dto.SubmitTaskRequest{ExamID: "exam-1", SubmissionText: "my answer"})
		assert.NoError(t, err)
	})

	t.Run("blank submission text", func(t *testing.T) {
		err := v.Struct(dto.SubmitTaskRequest{ExamID: "exam-1", SubmissionText: "   "})
		require.Error(t, err)

		var verrs domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 1)
		assert.Equal(t, "submissionText", verrs[0].Field)
		assert.Equal(t, domain.CodeMissingField, verrs[0].Code)
	})

	t.Run("too long text", func(t *testing.T) {
		err := v.Struct(dto.SubmitTaskRequest{ExamID: "exam-1", SubmissionText: strings.Repeat("a", 20001)})

		var verrs domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, domain.CodeOutOfRange, verrs[0].Code)
	})

	t.Run("nested plan rows report their path", func(t *testing.T) {
		err := v.Struct(dto.SavePlanRequest{
			ExamID: "exam-1",
			Tasks:  []dto.PlanTaskInput{{Title: "ok"}, {Title: " "}},
		})

		var verrs domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 1)
		assert.Equal(t, "tasks[1].title", verrs[0].Field)
	})

	t.Run("missing login fields", func(t *testing.T) {
		err := v.Struct(dto.LoginRequest{})

		var verrs domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 2)
	})
}
