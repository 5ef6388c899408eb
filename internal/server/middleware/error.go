package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nexusai/broker/internal/platform/logger"
	"github.com/nexusai/broker/pkg/api"
)

// ErrorHandler converts errors attached by handlers into RFC 9457
// problem responses, with a 500 catch-all for anything unrecognized.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		if problem, ok := err.(*api.Problem); ok {
			if problem.Log != nil {
				logger.Error("request failed", zap.Error(problem.Log))
			}

			// RFC 9457 dictates the json is at the root
			c.JSON(problem.Status, problem)
			c.Abort()
			return
		}

		if appErr, ok := err.(*api.Error); ok {
			if appErr.Log != nil {
				logger.Error("request failed", zap.Error(appErr.Log))
			}
			c.JSON(appErr.Code, api.NewProblem(appErr.Code, http.StatusText(appErr.Code), appErr.Message))
			c.Abort()
			return
		}

		logger.Error("unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, api.NewProblem(
			http.StatusInternalServerError,
			"Internal Server Error",
			"An unexpected error occurred.",
		))
		c.Abort()
	}
}
