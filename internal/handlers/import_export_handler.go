package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/election-service/internal/models"
	"github.com/SAP-F-2025/election-service/internal/services"
	"github.com/SAP-F-2025/election-service/internal/utils"
)

// csvFileField is the multipart field carrying an uploaded CSV
const csvFileField = "csv_file"

type (
	importFunc func(ctx context.Context, r io.Reader) (*models.ImportReport, error)
	exportFunc func(ctx context.Context, w io.Writer) error
)

type ImportExportHandler struct {
	BaseHandler
	service services.ImportExportService
}

func NewImportExportHandler(service services.ImportExportService, logger utils.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ImportUsers upserts users from an uploaded CSV
// @Summary Import users
// @Tags import-export
// @Accept multipart/form-data
// @Produce json
// @Param csv_file formData file true "username,first_name,last_name,email"
// @Success 200 {object} models.ImportReport
// @Failure 400 {object} ErrorResponse
// @Router /admin/users/import [post]
func (h *ImportExportHandler) ImportUsers(c *gin.Context) {
	h.handleImport(c, "users", h.service.ImportUsers)
}

// ImportElections upserts elections by title
// @Summary Import elections
// @Tags import-export
// @Accept multipart/form-data
// @Produce json
// @Param csv_file formData file true "title,description,start_date,end_date,status"
// @Success 200 {object} models.ImportReport
// @Failure 400 {object} ErrorResponse
// @Router /admin/elections/import [post]
func (h *ImportExportHandler) ImportElections(c *gin.Context) {
	h.handleImport(c, "elections", h.service.ImportElections)
}

func (h *ImportExportHandler) ImportPositions(c *gin.Context) {
	h.handleImport(c, "positions", h.service.ImportPositions)
}

func (h *ImportExportHandler) ImportCandidates(c *gin.Context) {
	h.handleImport(c, "candidates", h.service.ImportCandidates)
}

func (h *ImportExportHandler) ExportUsers(c *gin.Context) {
	h.handleExport(c, "users", h.service.ExportUsers)
}

func (h *ImportExportHandler) ExportElections(c *gin.Context) {
	h.handleExport(c, "elections", h.service.ExportElections)
}

func (h *ImportExportHandler) ExportPositions(c *gin.Context) {
	h.handleExport(c, "positions", h.service.ExportPositions)
}

func (h *ImportExportHandler) ExportCandidates(c *gin.Context) {
	h.handleExport(c, "candidates", h.service.ExportCandidates)
}

func (h *ImportExportHandler) handleImport(c *gin.Context, entity string, run importFunc) {
	fileHeader, err := c.FormFile(csvFileField)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "CSV file is required",
			Details: "upload the file in the " + csvFileField + " field",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.LogError(c, err, "Failed to open uploaded file", "entity", entity)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Could not read uploaded file",
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing CSV", "entity", entity, "filename", fileHeader.Filename, "size", fileHeader.Size)

	report, err := run(c.Request.Context(), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ImportExportHandler) handleExport(c *gin.Context, entity string, run exportFunc) {
	h.LogRequest(c, "Exporting CSV", "entity", entity)

	var buf bytes.Buffer
	if err := run(c.Request.Context(), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	sendAttachment(c, entity+".csv", mimeCSV, buf.Bytes())
}
