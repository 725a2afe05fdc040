package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/vladimiradmaev/meal-ledger/internal/errors"
	"github.com/vladimiradmaev/meal-ledger/internal/gateway"
	"github.com/vladimiradmaev/meal-ledger/internal/logger"
)

const (
	ctxUserID    = "userID"
	ctxRequestID = "requestID"
)

// TokenVerifier turns a bearer token into the user it was issued for
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequestID tags each request with the caller's X-Request-ID or a new uuid
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(gateway.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ctxRequestID, id)
		c.Header(gateway.RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs one line per request
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields("request_id", c.GetString(ctxRequestID)).Info("Request handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Authenticate requires a valid bearer token and stores its user id
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := verifier.Verify(c.GetHeader("Authorization"))
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// RequirePathUser rejects requests whose :userId differs from the token's user
func RequirePathUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("userId") != c.GetString(ctxUserID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gateway.Envelope[any]{Message: "Token does not grant access to this user"})
			return
		}
		c.Next()
	}
}

func statusOf(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	message := http.StatusText(status)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		message = appErr.Message
	}
	apperrors.NewHandler(logger.WithFields("path", c.FullPath(), "request_id", c.GetString(ctxRequestID))).
		Handle(c.Request.Context(), err)
	c.JSON(status, gateway.Envelope[any]{Message: message})
}
