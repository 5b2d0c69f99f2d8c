package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/election-service/internal/repositories"
	"github.com/SAP-F-2025/election-service/internal/services"
	"github.com/SAP-F-2025/election-service/internal/utils"
)

type PositionHandler struct {
	BaseHandler
	positionService services.PositionService
}

func NewPositionHandler(positionService services.PositionService, logger utils.Logger) *PositionHandler {
	return &PositionHandler{
		BaseHandler:     NewBaseHandler(logger),
		positionService: positionService,
	}
}

// CreatePosition creates a position inside an election
// @Summary Create position
// @Tags admin
// @Accept json
// @Produce json
// @Param position body services.CreatePositionRequest true "Position data"
// @Success 201 {object} models.Position
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/positions [post]
func (h *PositionHandler) CreatePosition(c *gin.Context) {
	var req services.CreatePositionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Creating position", "election_id", req.ElectionID, "name", req.Name)

	position, err := h.positionService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, position)
}

func (h *PositionHandler) GetPosition(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	position, err := h.positionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}

// ListPositions lists positions, optionally for one election
// @Summary List positions
// @Tags admin
// @Produce json
// @Param election_id query uint false "Election ID"
// @Success 200 {object} services.PositionListResponse
// @Router /admin/positions [get]
func (h *PositionHandler) ListPositions(c *gin.Context) {
	h.LogRequest(c, "Listing positions")

	limit, offset := h.parsePagination(c)
	filters := repositories.PositionFilters{
		ElectionID: h.parseUintQueryPtr(c, "election_id"),
		Limit:      limit,
		Offset:     offset,
	}

	positions, err := h.positionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, positions)
}

func (h *PositionHandler) UpdatePosition(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdatePositionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.LogRequest(c, "Updating position", "position_id", id)

	position, err := h.positionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, position)
}

func (h *PositionHandler) DeletePosition(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting position", "position_id", id)

	if err := h.positionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Position deleted successfully",
	})
}
