package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

const defaultTimeout = 2 * time.Minute

// maxResponseBytes caps what the client reads from one response.
const maxResponseBytes = 8 << 20

// API is the HTTP client of the /service2 participant API.
type API struct {
	baseURL string
	http    *http.Client
}

type Option func(*API)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *API) { a.http = c }
}

// NewAPI creates a client for the backend at baseURL, e.g. "http://localhost:8090".
func NewAPI(baseURL string, opts ...Option) *API {
	a := &API{
		baseURL: strings.TrimRight(baseURL, "/") + "/service2",
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login exchanges participant credentials for a new session.
func (a *API) Login(ctx context.Context, participantID, password string) (*Session, error) {
	body, err := json.Marshal(dto.LoginRequest{ParticipantID: participantID, Password: password})
	if err != nil {
		return nil, err
	}
	var resp dto.LoginResponse
	if err := a.do(ctx, nil, http.MethodPost, "/auth/login", bytes.NewReader(body), "application/json", &resp); err != nil {
		return nil, err
	}
	return NewSession(context.Background(), resp.Token, resp.AccountID, resp.ParticipantID, resp.CreatedAt), nil
}

// Logout revokes the token and ends the session whatever the backend answers.
func (a *API) Logout(ctx context.Context, s *Session) error {
	defer s.Invalidate()
	return a.do(ctx, s, http.MethodPost, "/auth/logout", nil, "", nil)
}

func (a *API) GetMyExam(ctx context.Context, s *Session) (*dto.ExamResponse, error) {
	var data dto.ExamData
	if err := a.do(ctx, s, http.MethodGet, "/my-exam", nil, "", &data); err != nil {
		return nil, err
	}
	return &data.Exam, nil
}

func (a *API) SubmitTask(ctx context.Context, s *Session, req dto.SubmitTaskRequest) (*dto.SubmitTaskData, error) {
	var data dto.SubmitTaskData
	if err := a.postJSON(ctx, s, "/submit-task", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (a *API) AnalyzeTask(ctx context.Context, s *Session, req dto.AnalyzeTaskRequest) (*dto.AnalyzeTaskData, error) {
	var data dto.AnalyzeTaskData
	if err := a.postJSON(ctx, s, "/analyze-task", req, &data); err != nil {
		return nil, err
	}
	if data.Analysis == nil {
		return nil, fmt.Errorf("analyze-task returned no analysis")
	}
	return &data, nil
}

func (a *API) GetFinalReport(ctx context.Context, s *Session, examID string) (*dto.ReportResponse, error) {
	var data dto.ReportData
	if err := a.do(ctx, s, http.MethodGet, "/final-report/"+url.PathEscape(examID), nil, "", &data); err != nil {
		return nil, err
	}
	return &data.Report, nil
}

func (a *API) GenerateFinalVerdict(ctx context.Context, s *Session, examID string) (*dto.ReportResponse, error) {
	var data dto.ReportData
	if err := a.postJSON(ctx, s, "/generate-final-verdict", dto.GenerateVerdictRequest{ExamID: examID}, &data); err != nil {
		return nil, err
	}
	return &data.Report, nil
}

func (a *API) GetFinishSlots(ctx context.Context, s *Session) ([]dto.SlotResponse, error) {
	var data dto.SlotsData
	if err := a.do(ctx, s, http.MethodGet, "/finish-slots", nil, "", &data); err != nil {
		return nil, err
	}
	return data.Slots, nil
}

func (a *API) GetMyPlan(ctx context.Context, s *Session, examID string) (*dto.PlanResponse, error) {
	var data dto.PlanData
	path := "/my-plan?" + url.Values{"examId": {examID}}.Encode()
	if err := a.do(ctx, s, http.MethodGet, path, nil, "", &data); err != nil {
		return nil, err
	}
	return &data.Plan, nil
}

func (a *API) SavePlan(ctx context.Context, s *Session, req dto.SavePlanRequest) (*dto.PlanResponse, error) {
	var data dto.PlanData
	if err := a.postJSON(ctx, s, "/my-plan", req, &data); err != nil {
		return nil, err
	}
	return &data.Plan, nil
}

// AnalyzePlanTask uploads the task report as multipart form data.
func (a *API) AnalyzePlanTask(ctx context.Context, s *Session, planID, taskID, reportText string, pdf []byte) (*domain.PlanTask, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("reportText", reportText); err != nil {
		return nil, err
	}
	part, err := w.CreateFormFile("pdf", "report.pdf")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var data dto.TaskData
	path := fmt.Sprintf("/my-plan/%s/tasks/%s/analyze", url.PathEscape(planID), url.PathEscape(taskID))
	if err := a.do(ctx, s, http.MethodPost, path, &buf, w.FormDataContentType(), &data); err != nil {
		return nil, err
	}
	return &data.Task, nil
}

func (a *API) SaveAnswerDraft(ctx context.Context, s *Session, req dto.AnswerDraftRequest) error {
	return a.postJSON(ctx, s, "/answer-draft", req, nil)
}

// GetAnswerDraft returns nil when nothing was saved.
func (a *API) GetAnswerDraft(ctx context.Context, s *Session, examID, taskID string) (*domain.AnswerDraft, error) {
	var data dto.AnswerDraftData
	path := "/answer-draft?" + url.Values{"examId": {examID}, "taskId": {taskID}}.Encode()
	if err := a.do(ctx, s, http.MethodGet, path, nil, "", &data); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return data.Draft, nil
}

func (a *API) postJSON(ctx context.Context, s *Session, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return a.do(ctx, s, http.MethodPost, path, bytes.NewReader(body), "application/json", out)
}

// do sends one request and decodes the envelope's data into out. With a session, the request is
// aborted when the session ends, and a 401 answer ends the session.
func (a *API) do(ctx context.Context, s *Session, method, path string, body io.Reader, contentType string, out interface{}) error {
	if s != nil {
		if !s.Valid() {
			return ErrSessionClosed
		}
		var cancel context.CancelFunc
		ctx, cancel = s.bind(ctx)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s != nil {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		if s != nil && !s.Valid() {
			return ErrSessionClosed
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	// A session that ended while the request was in flight never applies the result.
	if s != nil && !s.Valid() {
		return ErrSessionClosed
	}

	var env dto.Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil {
			apiErr.Code = env.Code
			apiErr.Errors = env.Errors
			if env.Message != "" {
				apiErr.Message = env.Message
			}
		}
		if resp.StatusCode == http.StatusUnauthorized && s != nil {
			s.rejected()
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if !env.Success {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
