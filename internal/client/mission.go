package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
	"mission-desk/internal/logger"
)

// DefaultDraftDelay is how long typing has to pause before the answer draft is saved.
const DefaultDraftDelay = 600 * time.Millisecond

// MissionAPI is the part of the backend the mission controller talks to.
type MissionAPI interface {
	GetMyExam(ctx context.Context, s *Session) (*dto.ExamResponse, error)
	SubmitTask(ctx context.Context, s *Session, req dto.SubmitTaskRequest) (*dto.SubmitTaskData, error)
	AnalyzeTask(ctx context.Context, s *Session, req dto.AnalyzeTaskRequest) (*dto.AnalyzeTaskData, error)
	SaveAnswerDraft(ctx context.Context, s *Session, req dto.AnswerDraftRequest) error
	GetAnswerDraft(ctx context.Context, s *Session, examID, taskID string) (*domain.AnswerDraft, error)
}

// MainTaskPhase is where the main task stands in the submit/analyze flow.
type MainTaskPhase int

const (
	PhaseUnanswered MainTaskPhase = iota
	PhaseSubmitted
	PhaseAnalyzed
)

func (p MainTaskPhase) String() string {
	switch p {
	case PhaseUnanswered:
		return "unanswered"
	case PhaseSubmitted:
		return "submitted"
	case PhaseAnalyzed:
		return "analyzed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MainTaskState is the tagged state of the main task. SubmissionID and Text are set from
// Submitted on; Analysis only in Analyzed.
type MainTaskState struct {
	Phase        MainTaskPhase
	SubmissionID string
	Text         string
	Analysis     *domain.AiAnalysis
}

type missionAction string

const (
	actionLoadExam missionAction = "load exam"
	actionSubmit   missionAction = "submit"
	actionAnalyze  missionAction = "analyze"
	actionRestore  missionAction = "restore draft"
)

type draftValue struct {
	examID string
	text   string
}

// MissionController drives the main task of the assigned exam for one session.
type MissionController struct {
	api     MissionAPI
	session *Session

	mu        sync.Mutex
	state     MainTaskState
	inFlight  map[missionAction]bool
	lastError string
	draft     string
	draftErr  error

	autosave *Debouncer[draftValue]
}

type MissionOption func(*missionConfig)

type missionConfig struct {
	draftDelay time.Duration
}

// WithDraftDelay overrides DefaultDraftDelay.
func WithDraftDelay(d time.Duration) MissionOption {
	return func(c *missionConfig) { c.draftDelay = d }
}

func NewMissionController(api MissionAPI, session *Session, opts ...MissionOption) *MissionController {
	cfg := missionConfig{draftDelay: DefaultDraftDelay}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &MissionController{
		api:      api,
		session:  session,
		inFlight: make(map[missionAction]bool),
	}
	m.autosave = NewDebouncer(cfg.draftDelay, m.saveDraft)
	// Pending autosaves belong to the session that typed them.
	session.OnInvalidate(m.autosave.Stop)
	return m
}

// State returns a snapshot of the main task state.
func (m *MissionController) State() MainTaskState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastError is the message for the mission error region, empty when the last action succeeded.
func (m *MissionController) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

// LoadAssignedExam returns the exam assigned to the session's account. A nil exam with a nil error
// means no exam is assigned.
func (m *MissionController) LoadAssignedExam(ctx context.Context) (*domain.Exam, error) {
	done, err := m.begin(actionLoadExam)
	if err != nil {
		return nil, err
	}
	defer done()

	resp, err := m.api.GetMyExam(ctx, m.session)
	if errors.Is(err, ErrNotFound) {
		m.setError(nil)
		return nil, nil
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrExamLoad, err)
		m.setError(err)
		return nil, err
	}
	m.setError(nil)
	return examFromDTO(resp), nil
}

// SubmitMainAnswer creates a new submission of text. Every call creates one.
func (m *MissionController) SubmitMainAnswer(ctx context.Context, examID, text string) (string, error) {
	if err := checkAnswer(examID, text); err != nil {
		m.setError(err)
		return "", err
	}
	done, err := m.begin(actionSubmit)
	if err != nil {
		return "", err
	}
	defer done()

	resp, err := m.api.SubmitTask(ctx, m.session, dto.SubmitTaskRequest{
		ExamID:         examID,
		TaskID:         domain.MainTaskID,
		SubmissionText: text,
	})
	if err != nil {
		m.setError(err)
		return "", err
	}

	m.mu.Lock()
	m.state = MainTaskState{Phase: PhaseSubmitted, SubmissionID: resp.SubmissionID, Text: text}
	m.lastError = ""
	m.mu.Unlock()

	logger.Get().Debug("Main answer submitted", zap.String("examID", examID), zap.String("submissionID", resp.SubmissionID))
	return resp.SubmissionID, nil
}

// AnalyzeMainAnswer analyses the held submission. submissionID must be the one the last submit
// returned. The typed draft is kept whatever the outcome.
func (m *MissionController) AnalyzeMainAnswer(ctx context.Context, examID, text, submissionID string) (*domain.AiAnalysis, string, error) {
	if err := checkAnswer(examID, text); err != nil {
		m.setError(err)
		return nil, "", err
	}

	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	switch {
	case state.Phase == PhaseUnanswered:
		err := fmt.Errorf("%w: nothing submitted yet", ErrIllegalTransition)
		m.setError(err)
		return nil, "", err
	case submissionID != state.SubmissionID:
		err := fmt.Errorf("%w: submission %q is not the current one", ErrIllegalTransition, submissionID)
		m.setError(err)
		return nil, "", err
	case text != state.Text:
		err := fmt.Errorf("%w: answer changed since submission %q, submit it again", ErrIllegalTransition, submissionID)
		m.setError(err)
		return nil, "", err
	}

	done, err := m.begin(actionAnalyze)
	if err != nil {
		return nil, "", err
	}
	defer done()

	resp, err := m.api.AnalyzeTask(ctx, m.session, dto.AnalyzeTaskRequest{
		ExamID:         examID,
		TaskID:         domain.MainTaskID,
		SubmissionText: text,
		SubmissionID:   submissionID,
	})
	if err != nil {
		m.setError(err)
		return nil, "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// A submit that completed meanwhile owns the state now.
	if m.state.SubmissionID != submissionID {
		return resp.Analysis, resp.SubmissionID, nil
	}
	m.state = MainTaskState{Phase: PhaseAnalyzed, SubmissionID: submissionID, Text: text, Analysis: resp.Analysis}
	m.lastError = ""
	return resp.Analysis, submissionID, nil
}

// SubmitAndAnalyze submits text and analyses the resulting submission, in that order.
func (m *MissionController) SubmitAndAnalyze(ctx context.Context, examID, text string) (*domain.AiAnalysis, string, error) {
	submissionID, err := m.SubmitMainAnswer(ctx, examID, text)
	if err != nil {
		return nil, "", err
	}
	return m.AnalyzeMainAnswer(ctx, examID, text, submissionID)
}

// SetDraft records the typed answer and schedules its autosave.
func (m *MissionController) SetDraft(examID, text string) {
	m.mu.Lock()
	m.draft = text
	m.mu.Unlock()
	m.autosave.Trigger(draftValue{examID: examID, text: text})
}

func (m *MissionController) Draft() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// FlushDraft writes a pending autosave now and reports how the last autosave went.
func (m *MissionController) FlushDraft() error {
	m.autosave.Flush()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draftErr
}

// RestoreDraft loads the saved answer draft into the controller. It returns the restored text,
// empty when nothing was saved.
func (m *MissionController) RestoreDraft(ctx context.Context, examID string) (string, error) {
	done, err := m.begin(actionRestore)
	if err != nil {
		return "", err
	}
	defer done()

	draft, err := m.api.GetAnswerDraft(ctx, m.session, examID, domain.MainTaskID)
	if err != nil {
		return "", err
	}
	if draft == nil {
		return "", nil
	}
	m.mu.Lock()
	m.draft = draft.Text
	m.mu.Unlock()
	return draft.Text, nil
}

func (m *MissionController) saveDraft(v draftValue) {
	err := m.api.SaveAnswerDraft(m.session.Context(), m.session, dto.AnswerDraftRequest{
		ExamID: v.examID,
		TaskID: domain.MainTaskID,
		Text:   v.text,
	})
	if err != nil {
		logger.Get().Warn("Failed to autosave answer draft", zap.String("examID", v.examID), zap.Error(err))
	}
	m.mu.Lock()
	m.draftErr = err
	m.mu.Unlock()
}

// begin marks action as running. The returned func ends it.
func (m *MissionController) begin(action missionAction) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight[action] {
		return nil, fmt.Errorf("%w: %s", ErrActionInProgress, action)
	}
	m.inFlight[action] = true
	return func() {
		m.mu.Lock()
		delete(m.inFlight, action)
		m.mu.Unlock()
	}, nil
}

func (m *MissionController) setError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		m.lastError = ""
		return
	}
	m.lastError = userMessage(err)
}

func checkAnswer(examID, text string) error {
	if examID == "" {
		return preconditionf("no exam loaded")
	}
	if strings.TrimSpace(text) == "" {
		return preconditionf("answer text is empty")
	}
	return nil
}
