package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeRateLimited  ErrorCode = "RATE_LIMITED"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Mission specific errors
	CodeExamNotFound       ErrorCode = "EXAM_NOT_FOUND"
	CodeSubmissionNotFound ErrorCode = "SUBMISSION_NOT_FOUND"
	CodePlanNotFound       ErrorCode = "PLAN_NOT_FOUND"
	CodePlanTaskNotFound   ErrorCode = "PLAN_TASK_NOT_FOUND"
	CodeReportNotFound     ErrorCode = "REPORT_NOT_FOUND"
	CodeReportInProgress   ErrorCode = "REPORT_GENERATION_IN_PROGRESS"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeAIServiceError     ErrorCode = "AI_SERVICE_ERROR"
	CodeStorageError       ErrorCode = "STORAGE_ERROR"
	CodeInvalidAttachment  ErrorCode = "INVALID_ATTACHMENT"
	CodeDraftNotFound      ErrorCode = "DRAFT_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches a detail value rendered in the error response.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewExamNotFoundError(examID string) *DomainError {
	return NewError(CodeExamNotFound, fmt.Sprintf("Exam not found with ID: %s", examID), nil)
}

func NewNoExamAssignedError(accountID string) *DomainError {
	return NewError(CodeExamNotFound, "No exam assigned to this account", nil).WithContext("account_id", accountID)
}

func NewSubmissionNotFoundError(submissionID string) *DomainError {
	return NewError(CodeSubmissionNotFound, fmt.Sprintf("Submission not found with ID: %s", submissionID), nil)
}

func NewPlanNotFoundError() *DomainError {
	return NewError(CodePlanNotFound, "No action plan yet", nil)
}

func NewPlanTaskNotFoundError(taskID string) *DomainError {
	return NewError(CodePlanTaskNotFound, fmt.Sprintf("Plan task not found with ID: %s", taskID), nil)
}

func NewReportNotFoundError(examID string) *DomainError {
	return NewError(CodeReportNotFound, fmt.Sprintf("Final report not generated yet for exam: %s", examID), nil)
}

func NewReportInProgressError(examID string) *DomainError {
	return NewError(CodeReportInProgress, fmt.Sprintf("Final report generation already running for exam: %s", examID), nil)
}

func NewInvalidCredentialsError() *DomainError {
	return NewError(CodeInvalidCredentials, "Invalid participant ID or password", nil)
}

func NewAIServiceError(err error) *DomainError {
	return NewError(CodeAIServiceError, "Failed to process with AI analysis service", err)
}

func NewStorageError(err error) *DomainError {
	return NewError(CodeStorageError, "Failed to store attachment", err)
}

func NewInvalidAttachmentError(message string) *DomainError {
	return NewError(CodeInvalidAttachment, message, nil)
}

func NewRateLimitedError() *DomainError {
	return NewError(CodeRateLimited, "Too many analysis requests, retry later", nil)
}
