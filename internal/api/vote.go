package api

import (
	"net/http"
	"strconv"

	"waifuhub/backend/internal/models"
	"waifuhub/backend/internal/service"
	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/observability"

	"github.com/gin-gonic/gin"
)

// VoteController handles vote casting and status lookups
type VoteController struct {
	votes *service.VoteService
}

// NewVoteController creates a new VoteController
func NewVoteController(votes *service.VoteService) *VoteController {
	return &VoteController{votes: votes}
}

// Cast records a like or dislike and returns the character with fresh counters.
func (vc *VoteController) Cast(c *gin.Context) {
	var req models.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperrors.NewValidation("waifu_id and vote_type are required"))
		return
	}

	waifu, err := vc.votes.CastVote(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		fail(c, err)
		return
	}

	observability.RecordVote(c.Request.Context(), req.VoteType)
	c.JSON(http.StatusOK, gin.H{"waifu": waifu})
}

// Status reports whether the caller voted on the given character. Works
// without a session; anonymous callers read as not voted.
func (vc *VoteController) Status(c *gin.Context) {
	waifuID, err := strconv.ParseUint(c.Query("waifu_id"), 10, 32)
	if err != nil || waifuID == 0 {
		fail(c, apperrors.NewValidation("waifu_id query parameter is required"))
		return
	}

	status, err := vc.votes.Status(c.Request.Context(), currentUserID(c), uint(waifuID))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
