package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civitas-project/civitas/pkg/agent"
	"github.com/civitas-project/civitas/pkg/services"
)

// respondError maps service and agent errors to HTTP responses.
func respondError(c *gin.Context, err error) {
	var validErr *services.ValidationError
	var inputErr *agent.InputValidationError
	var outputErr *agent.OutputFormatError
	var protoErr *agent.ProtocolViolationError

	switch {
	case errors.As(err, &validErr), errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	case errors.As(err, &outputErr), errors.As(err, &protoErr),
		errors.Is(err, agent.ErrIterationBudget):
		// The model misbehaved; the request itself was fine.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "upstream timed out"})
	default:
		slog.Error("Unexpected error handling request",
			"path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
