package api

import (
	"net/http"

	"waifuhub/backend/internal/models"
	"waifuhub/backend/internal/service"
	apperrors "waifuhub/backend/pkg/errors"

	"github.com/gin-gonic/gin"
)

// AuthController handles wallet connection and session introspection
type AuthController struct {
	users *service.UserService
}

// NewAuthController creates a new AuthController
func NewAuthController(users *service.UserService) *AuthController {
	return &AuthController{users: users}
}

// Connect upserts the user for the supplied wallet and returns a session token.
func (ac *AuthController) Connect(c *gin.Context) {
	var req models.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.NewValidation("wallet_address is required"))
		return
	}

	user, token, err := ac.users.Connect(&req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user.ToResponse(),
		"token": token,
	})
}

// Me returns the user behind the current session token.
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.users.GetUserByID(currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.ToResponse()})
}
