package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/stwalsh4118/valuator/api/internal/errors"
	"github.com/stwalsh4118/valuator/api/internal/middleware"
	"github.com/stwalsh4118/valuator/api/internal/models"
	"github.com/stwalsh4118/valuator/api/internal/services"
)

// PropertyHandler serves the read API over stored records.
type PropertyHandler struct {
	service services.IntakeService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.IntakeService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// SubjectDataRequest represents the query parameters for the subject endpoint.
type SubjectDataRequest struct {
	FileNumber string `form:"file_number" binding:"required"`
}

// CompDataRequest represents the query parameters for the comparable endpoint.
// The address, city and zip must match what is stored for the slot.
type CompDataRequest struct {
	FileNumber string `form:"file_number" binding:"required"`
	CompNumber string `form:"comp_number" binding:"required"`
	Address    string `form:"address" binding:"required"`
	City       string `form:"city" binding:"required"`
	Zip        string `form:"zip" binding:"required"`
}

// SubjectData handles GET /api/subject-data.
func (h *PropertyHandler) SubjectData(c *gin.Context) {
	var req SubjectDataRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BadRequest(c, "Missing required parameters", nil)
		return
	}

	view, err := h.service.GetSubject(c.Request.Context(), req.FileNumber)
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			apierrors.NotFound(c, "No data found")
			return
		}
		apierrors.InternalServerError(c, "Failed to read subject data", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CompData handles GET /api/comp-data.
func (h *PropertyHandler) CompData(c *gin.Context) {
	var req CompDataRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		apierrors.BadRequest(c, "Missing required parameters", nil)
		return
	}

	compIndex, err := strconv.Atoi(req.CompNumber)
	if err != nil {
		apierrors.BadRequest(c, "Invalid comp_number", nil)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Processing comp-data request", map[string]interface{}{
			"file_number": req.FileNumber,
			"comp":        compIndex,
		})
	}

	view, err := h.service.GetComparable(c.Request.Context(), req.FileNumber, compIndex, models.CompFilter{
		Address: req.Address,
		City:    req.City,
		Zip:     req.Zip,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCompIndex):
			apierrors.BadRequest(c, "Invalid comp_number", nil)
		case errors.Is(err, services.ErrRecordNotFound):
			apierrors.NotFound(c, "No data found")
		default:
			apierrors.InternalServerError(c, "Failed to read comparable data", err)
		}
		return
	}
	c.JSON(http.StatusOK, view)
}
