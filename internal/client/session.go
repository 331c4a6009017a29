package client

import (
	"context"
	"sync"
	"time"
)

// Session is one authenticated participant. It is passed explicitly to every controller;
// nothing reads credentials from ambient state.
type Session struct {
	Token         string
	AccountID     string
	ParticipantID string
	CreatedAt     time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	onInvalid  []func()
	onAuthFail []func()
}

// NewSession binds a session to parent. Cancelling parent ends the session too.
func NewSession(parent context.Context, token, accountID, participantID string, createdAt time.Time) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		Token:         token,
		AccountID:     accountID,
		ParticipantID: participantID,
		CreatedAt:     createdAt,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Context is done once the session is invalidated.
func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Valid() bool {
	return s.ctx.Err() == nil
}

// OnInvalidate registers fn to run once when the session ends, e.g. to send the user back to login.
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onInvalid = append(s.onInvalid, fn)
}

// OnAuthFailure registers fn to run when the backend rejects the token, before the session ends.
// Callers use it to warn about unsaved edits; a plain logout does not fire it.
func (s *Session) OnAuthFailure(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAuthFail = append(s.onAuthFail, fn)
}

// rejected runs the auth failure hooks once and ends the session.
func (s *Session) rejected() {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	hooks := s.onAuthFail
	s.onAuthFail = nil
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	s.Invalidate()
}

// Invalidate ends the session and aborts its in-flight requests. Further calls are no-ops.
func (s *Session) Invalidate() {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.cancel()
	hooks := s.onInvalid
	s.onInvalid = nil
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// bind derives a request context that ends with either ctx or the session.
func (s *Session) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(s.ctx, func() { cancel(ErrSessionClosed) })
	return ctx, func() {
		stop()
		cancel(nil)
	}
}
