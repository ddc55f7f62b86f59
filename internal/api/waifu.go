package api

import (
	"net/http"

	"waifuhub/backend/internal/models"
	"waifuhub/backend/internal/service"
	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/observability"

	"github.com/gin-gonic/gin"
)

// WaifuController handles character generation, publishing and listing
type WaifuController struct {
	waifus *service.WaifuService
}

// NewWaifuController creates a new WaifuController
func NewWaifuController(waifus *service.WaifuService) *WaifuController {
	return &WaifuController{waifus: waifus}
}

// Generate creates a character for the caller. The upstream video call runs
// synchronously, so this request can take a while.
func (wc *WaifuController) Generate(c *gin.Context) {
	var req models.CreateWaifuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.NewValidation("name, personality, style and hair_color are required"))
		return
	}

	waifu, err := wc.waifus.CreateCharacter(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeUpstreamFailure) {
			observability.RecordUpstreamFailure(c.Request.Context(), "video")
		}
		fail(c, err)
		return
	}

	observability.RecordCreation(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"waifu": waifu})
}

// Publish flips the caller's character into the community feed.
func (wc *WaifuController) Publish(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}

	waifu, err := wc.waifus.PublishCharacter(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}

	observability.RecordPublish(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"waifu": waifu})
}

// Community lists published characters, newest first or by like count.
func (wc *WaifuController) Community(c *gin.Context) {
	waifus, err := wc.waifus.CommunityFeed(c.Request.Context(), c.Query("sort"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waifus": waifus})
}

// Mine lists the caller's characters, drafts included.
func (wc *WaifuController) Mine(c *gin.Context) {
	waifus, err := wc.waifus.ListByOwner(currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waifus": waifus})
}

// Get returns one character; drafts only for their owner.
func (wc *WaifuController) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		fail(c, err)
		return
	}

	waifu, err := wc.waifus.GetByID(id, currentUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waifu": waifu})
}
