package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"mission-desk/internal/dto"
	"mission-desk/internal/logger"
	"mission-desk/internal/service"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	AccountIDKey        = "accountID" // Key for storing AccountID in fiber.Ctx locals
	ClaimsKey           = "authClaims"
)

func unauthorized(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// Protected is a middleware function that protects routes by requiring a valid JWT.
// It validates the token using the provided AuthService and sets the accountID in the context.
func Protected(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return unauthorized(c, "MISSING_AUTH_HEADER", "Authorization header is missing")
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			return unauthorized(c, "INVALID_AUTH_SCHEME", "Authorization scheme is not Bearer")
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return unauthorized(c, "EMPTY_TOKEN", "Token is empty")
		}

		claims, err := authService.ValidateToken(c.UserContext(), tokenString)
		if err != nil {
			logger.Get().Debug("Rejected bearer token", zap.Error(err), zap.String("path", c.Path()))
			return unauthorized(c, "INVALID_TOKEN", "Token is invalid or expired")
		}

		c.Locals(AccountIDKey, claims.AccountID)
		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// AccountID returns the authenticated account of the request, or "" outside Protected routes.
func AccountID(c *fiber.Ctx) string {
	id, _ := c.Locals(AccountIDKey).(string)
	return id
}

// Claims returns the validated token claims of the request.
func Claims(c *fiber.Ctx) *dto.AuthClaims {
	claims, _ := c.Locals(ClaimsKey).(*dto.AuthClaims)
	return claims
}
