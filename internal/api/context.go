package api

import (
	"strconv"

	apperrors "waifuhub/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// currentUserID returns the authenticated user's id, or 0 when the request
// carries no session. Routes behind RequireAuth always see a non-zero id.
func currentUserID(c *gin.Context) uint {
	if v, exists := c.Get("userId"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// pathID parses the numeric :id parameter.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidation("invalid id")
	}
	return uint(id), nil
}

// fail records the error for the error-handler middleware and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
