package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/election-service/internal/services"
	"github.com/SAP-F-2025/election-service/internal/utils"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ResultsHandler struct {
	BaseHandler
	resultsService services.ResultsService
}

func NewResultsHandler(resultsService services.ResultsService, logger utils.Logger) *ResultsHandler {
	return &ResultsHandler{
		BaseHandler:    NewBaseHandler(logger),
		resultsService: resultsService,
	}
}

// GetResults returns the tabulated results of an election
// @Summary Get election results
// @Tags results
// @Produce json
// @Param id path uint true "Election ID"
// @Success 200 {object} models.ElectionResults
// @Failure 404 {object} ErrorResponse
// @Router /admin/elections/{id}/results [get]
func (h *ResultsHandler) GetResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting election results", "election_id", id)

	results, err := h.resultsService.Tabulate(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetLiveResults returns the compact per-position counts used for polling
// @Summary Get live vote counts
// @Tags results
// @Produce json
// @Param id path uint true "Election ID"
// @Success 200 {object} models.LiveVoteData
// @Failure 404 {object} ErrorResponse
// @Router /admin/elections/{id}/results/live [get]
func (h *ResultsHandler) GetLiveResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	live, err := h.resultsService.LiveSnapshot(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, live)
}

// GetSnapshot returns the results frozen when the election ended
func (h *ResultsHandler) GetSnapshot(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting result snapshot", "election_id", id)

	snapshot, err := h.resultsService.GetSnapshot(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ExportCSV downloads the results as CSV
// @Summary Export results as CSV
// @Tags results
// @Produce text/csv
// @Param id path uint true "Election ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /admin/elections/{id}/results/export [get]
func (h *ResultsHandler) ExportCSV(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting results", "election_id", id, "format", "csv")

	var buf bytes.Buffer
	if err := h.resultsService.ExportCSV(c.Request.Context(), id, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendAttachment(c, fmt.Sprintf("election_results_%d.csv", id), mimeCSV, buf.Bytes())
}

func (h *ResultsHandler) ExportXLSX(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Exporting results", "election_id", id, "format", "xlsx")

	var buf bytes.Buffer
	if err := h.resultsService.ExportXLSX(c.Request.Context(), id, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendAttachment(c, fmt.Sprintf("election_results_%d.xlsx", id), mimeXLSX, buf.Bytes())
}

// sendAttachment writes a fully rendered export as a file download
func sendAttachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
