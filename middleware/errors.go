package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YashRana03/natours/utils"
)

// ErrorHandler is the single rendering boundary. Handlers attach errors with
// c.Error and abort; after the chain unwinds this middleware renders the
// envelope. Operational errors keep their message and status, everything
// else is logged and collapsed into a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.StatusCode, gin.H{
				"status":  appErr.Status(),
				"message": appErr.Message,
			})
			return
		}

		slog.Error("unexpected error",
			"error", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Something went very wrong!",
		})
	}
}
