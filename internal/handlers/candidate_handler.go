package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/services"
	"github.com/SAP-F-2025/election-service/internal/utils"
)

type CandidateHandler struct {
	BaseHandler
	candidateService services.CandidateService
}

func NewCandidateHandler(candidateService services.CandidateService, logger utils.Logger) *CandidateHandler {
	return &CandidateHandler{
		BaseHandler:      NewBaseHandler(logger),
		candidateService: candidateService,
	}
}

// CreateCandidate registers a candidate for a position
// @Summary Create candidate
// @Tags admin
// @Accept json
// @Produce json
// @Param candidate body services.CreateCandidateRequest true "Candidate data"
// @Success 201 {object} models.Candidate
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/candidates [post]
func (h *CandidateHandler) CreateCandidate(c *gin.Context) {
	var req services.CreateCandidateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating candidate", "position_id", req.PositionID, "student_id", req.StudentID)

	candidate, err := h.candidateService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, candidate)
}

func (h *CandidateHandler) GetCandidate(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	candidate, err := h.candidateService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// ListCandidates lists candidates filtered by position or election
// @Summary List candidates
// @Tags admin
// @Produce json
// @Param position_id query uint false "Position ID"
// @Param election_id query uint false "Election ID"
// @Success 200 {object} services.CandidateListResponse
// @Router /admin/candidates [get]
func (h *CandidateHandler) ListCandidates(c *gin.Context) {
	h.LogRequest(c, "Listing candidates")

	limit, offset := h.parsePagination(c)
	filters := repositories.CandidateFilters{
		PositionID: h.parseUintQueryPtr(c, "position_id"),
		ElectionID: h.parseUintQueryPtr(c, "election_id"),
		Limit:      limit,
		Offset:     offset,
	}

	candidates, err := h.candidateService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidates)
}

// UpdateCandidate applies a partial update; moving a candidate with votes is rejected
func (h *CandidateHandler) UpdateCandidate(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCandidateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating candidate", "candidate_id", id)

	candidate, err := h.candidateService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidate)
}

func (h *CandidateHandler) DeleteCandidate(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting candidate", "candidate_id", id)

	if err := h.candidateService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Candidate deleted successfully",
	})
}
