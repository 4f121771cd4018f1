package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// dbTimeout bounds every store call made from a handler.
const dbTimeout = 5 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), dbTimeout)
}

// abortWith hands the error to the rendering boundary and stops the chain.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
