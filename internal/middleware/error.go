package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
	"mission-desk/internal/logger"
)

// ErrorHandler is a centralized error handling middleware
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		logger := logger.Get()

		// Handle validation errors
		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			logger.Warn("Validation errors occurred",
				zap.String("path", c.Path()),
				zap.Int("error_count", len(validationErrs)),
			)
			return c.Status(http.StatusBadRequest).JSON(dto.ErrorResponse{
				Success: false,
				Code:    string(domain.CodeValidation),
				Message: "Request validation failed",
				Errors:  toFieldErrors(validationErrs),
			})
		}

		// Handle domain errors
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)

			fields := []zap.Field{
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", statusCode),
				zap.String("path", c.Path()),
				zap.Error(domainErr.Cause),
			}
			if statusCode >= http.StatusInternalServerError {
				logger.Error("Domain error occurred", fields...)
			} else {
				logger.Info("Domain error occurred", fields...)
			}

			return c.Status(statusCode).JSON(dto.ErrorResponse{
				Success: false,
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
			})
		}

		// Handle fiber errors
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			logger.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(dto.ErrorResponse{
				Success: false,
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
			})
		}

		// Handle unknown errors
		logger.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return c.Status(http.StatusInternalServerError).JSON(dto.ErrorResponse{
			Success: false,
			Code:    string(domain.CodeInternal),
			Message: "Internal server error",
		})
	}
}

func toFieldErrors(errs domain.ValidationErrors) []dto.FieldError {
	out := make([]dto.FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, dto.FieldError{Field: e.Field, Code: string(e.Code), Message: e.Message, Value: e.Value})
	}
	return out
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeNotFound, domain.CodeExamNotFound, domain.CodeSubmissionNotFound, domain.CodePlanNotFound,
		domain.CodePlanTaskNotFound, domain.CodeReportNotFound, domain.CodeDraftNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeValidation, domain.CodeMissingField, domain.CodeInvalidFormat,
		domain.CodeOutOfRange, domain.CodeInvalidAttachment:
		return http.StatusBadRequest
	case domain.CodeUnauthorized, domain.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeConflict, domain.CodeReportInProgress:
		return http.StatusConflict
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeAIServiceError:
		return http.StatusServiceUnavailable
	case domain.CodeStorageError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
