package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/election-service/internal/services"
	"github.com/SAP-F-2025/election-service/internal/utils"
)

type VoteHandler struct {
	BaseHandler
	voteService services.VoteService
}

func NewVoteHandler(voteService services.VoteService, logger utils.Logger) *VoteHandler {
	return &VoteHandler{
		BaseHandler: NewBaseHandler(logger),
		voteService: voteService,
	}
}

// CastVote records the caller's ballot for one position
// @Summary Cast vote
// @Tags voting
// @Accept json
// @Produce json
// @Param id path uint true "Position ID"
// @Param vote body services.CastVoteRequest true "Chosen candidate"
// @Success 201 {object} models.Vote
// @Failure 400 {object} ErrorResponse "Validation failed or candidate not in position"
// @Failure 404 {object} ErrorResponse "Position not found"
// @Failure 409 {object} ErrorResponse "Already voted or election not active"
// @Router /positions/{id}/vote [post]
func (h *VoteHandler) CastVote(c *gin.Context) {
	positionID := h.parseIDParam(c, "id")
	if positionID == 0 {
		return
	}

	var req services.CastVoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Casting vote", "position_id", positionID, "candidate_id", req.CandidateID)

	vote, err := h.voteService.CastVote(c.Request.Context(), userID, positionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, vote)
}

// GetMyVotes lists the caller's votes, optionally for one election
func (h *VoteHandler) GetMyVotes(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	votes, err := h.voteService.GetMyVotes(c.Request.Context(), userID, h.parseUintQueryPtr(c, "election_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"votes": votes})
}
