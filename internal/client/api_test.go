package client

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

func TestAPI_NotFoundIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "EXAM_NOT_FOUND", "No exam assigned to this account")
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL).GetMyExam(context.Background(), newTestSession())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "EXAM_NOT_FOUND", apiErr.Code)
	assert.Equal(t, "No exam assigned to this account", apiErr.Message)
}

func TestAPI_SuccessFalseOn2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.ErrorResponse{Success: false, Code: "INTERNAL_ERROR", Message: "boom"})
	}))
	defer srv.Close()

	_, err := NewAPI(srv.URL).GetMyExam(context.Background(), newTestSession())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestAPI_UnauthorizedEndsSession(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	}))
	defer srv.Close()

	api := NewAPI(srv.URL)
	session := newTestSession()
	var warned, redirected atomic.Bool
	session.OnAuthFailure(func() { warned.Store(true) })
	session.OnInvalidate(func() { redirected.Store(true) })

	_, err := api.GetMyExam(context.Background(), session)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, warned.Load())
	assert.True(t, redirected.Load())
	assert.False(t, session.Valid())

	_, err = api.GetMyExam(context.Background(), session)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, int32(1), hits.Load())
}

func TestAPI_InvalidateAbortsInFlightRequest(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	session := newTestSession()
	errCh := make(chan error, 1)
	go func() {
		_, err := NewAPI(srv.URL).AnalyzeTask(context.Background(), session, dto.AnalyzeTaskRequest{ExamID: "exam-1", SubmissionText: "x"})
		errCh <- err
	}()

	<-started
	session.Invalidate()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrSessionClosed)
	case <-time.After(3 * time.Second):
		t.Fatal("request was not aborted")
	}
}

func TestAPI_AnalyzePlanTaskSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/service2/my-plan/plan-1/tasks/t1/analyze", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		fields := map[string]string{}
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			b, _ := io.ReadAll(part)
			fields[part.FormName()] = string(b)
		}
		assert.Equal(t, "done it", fields["reportText"])
		assert.Equal(t, "%PDF-1.4 body", fields["pdf"])

		writeJSON(w, http.StatusOK, dto.OK(dto.TaskData{Task: domain.PlanTask{ID: "t1", Title: "Write report", Status: domain.TaskStatusDone}}))
	}))
	defer srv.Close()

	task, err := NewAPI(srv.URL).AnalyzePlanTask(context.Background(), newTestSession(), "plan-1", "t1", "done it", []byte("%PDF-1.4 body"))

	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, task.Status)
}

func TestAPI_GetAnswerDraftMissingIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "exam-1", r.URL.Query().Get("examId"))
		writeError(w, http.StatusNotFound, "DRAFT_NOT_FOUND", "No draft saved")
	}))
	defer srv.Close()

	draft, err := NewAPI(srv.URL).GetAnswerDraft(context.Background(), newTestSession(), "exam-1", "main")

	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestAPI_LogoutDoesNotFireAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true, Message: "Logged out"})
	}))
	defer srv.Close()

	session := newTestSession()
	var warned atomic.Bool
	session.OnAuthFailure(func() { warned.Store(true) })

	require.NoError(t, NewAPI(srv.URL).Logout(context.Background(), session))

	assert.False(t, warned.Load())
	assert.False(t, session.Valid())
}
