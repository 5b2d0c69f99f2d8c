package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/services"
	"github.com/SAP-F-2025/election-service/internal/utils"
)

type ElectionHandler struct {
	BaseHandler
	electionService services.ElectionService
}

func NewElectionHandler(electionService services.ElectionService, logger utils.Logger) *ElectionHandler {
	return &ElectionHandler{
		BaseHandler:     NewBaseHandler(logger),
		electionService: electionService,
	}
}

// ListElections lists elections with filters
// @Summary List elections
// @Tags elections
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "upcoming, active or ended"
// @Param search query string false "Title or description contains"
// @Success 200 {object} services.ElectionListResponse
// @Failure 500 {object} ErrorResponse
// @Router /elections [get]
func (h *ElectionHandler) ListElections(c *gin.Context) {
	h.LogRequest(c, "Listing elections")

	filters := h.parseElectionFilters(c)
	elections, err := h.electionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, elections)
}

// GetBallot returns an election with its positions, candidates and the caller's votes
// @Summary Get election ballot
// @Tags elections
// @Produce json
// @Param id path uint true "Election ID"
// @Success 200 {object} services.BallotResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /elections/{id} [get]
func (h *ElectionHandler) GetBallot(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting election ballot", "election_id", id)

	ballot, err := h.electionService.GetBallot(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ballot)
}

// CreateElection creates a new election
// @Summary Create election
// @Tags admin
// @Accept json
// @Produce json
// @Param election body services.CreateElectionRequest true "Election data"
// @Success 201 {object} models.Election
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/elections [post]
func (h *ElectionHandler) CreateElection(c *gin.Context) {
	var req services.CreateElectionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating election", "title", req.Title)

	election, err := h.electionService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, election)
}

// GetElection returns the full election tree for administrators
func (h *ElectionHandler) GetElection(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting election with details", "election_id", id)

	election, err := h.electionService.GetWithDetails(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, election)
}

// UpdateElection applies a partial update
// @Summary Update election
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Election ID"
// @Param election body services.UpdateElectionRequest true "Fields to change"
// @Success 200 {object} models.Election
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/elections/{id} [put]
func (h *ElectionHandler) UpdateElection(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateElectionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Updating election", "election_id", id)

	election, err := h.electionService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, election)
}

// UpdateElectionStatus moves an election to another status
// @Summary Update election status
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Election ID"
// @Param status body services.UpdateElectionStatusRequest true "New status"
// @Success 200 {object} models.Election
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/elections/{id}/status [put]
func (h *ElectionHandler) UpdateElectionStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateElectionStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Updating election status", "election_id", id, "status", req.Status)

	election, err := h.electionService.UpdateStatus(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, election)
}

func (h *ElectionHandler) DeleteElection(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting election", "election_id", id)

	if err := h.electionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Election deleted successfully",
	})
}

func (h *ElectionHandler) parseElectionFilters(c *gin.Context) repositories.ElectionFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.ElectionFilters{
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Limit:     limit,
		Offset:    offset,
	}

	if status := c.Query("status"); status != "" {
		electionStatus := models.ElectionStatus(strings.ToLower(status))
		filters.Status = &electionStatus
	}

	return filters
}
