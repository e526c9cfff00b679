package handler

import (
	"context"
	"net/http"

	"github.com/eaglebank/mcp-banking/internal/query"
	"github.com/gin-gonic/gin"
)

type HealthReporter interface {
	Health(ctx context.Context) query.HealthReport
}

// Health always answers 200; dependency state is in the body.
func Health(reporter HealthReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, reporter.Health(c.Request.Context()))
	}
}
