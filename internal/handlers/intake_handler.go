package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stwalsh4118/valuator/api/internal/enrichment"
	apierrors "github.com/stwalsh4118/valuator/api/internal/errors"
	"github.com/stwalsh4118/valuator/api/internal/middleware"
	"github.com/stwalsh4118/valuator/api/internal/models"
	"github.com/stwalsh4118/valuator/api/internal/services"
)

// IntakeHandler serves the two-step appraisal form.
type IntakeHandler struct {
	service services.IntakeService
}

// NewIntakeHandler creates a new IntakeHandler instance.
func NewIntakeHandler(service services.IntakeService) *IntakeHandler {
	return &IntakeHandler{service: service}
}

// CheckFileNumberRequest is the body of POST /check_file_number.
type CheckFileNumberRequest struct {
	FileNumber string `json:"file_number" binding:"required"`
}

// CheckFileNumberResponse reports whether a file number is taken.
type CheckFileNumberResponse struct {
	Exists bool `json:"exists"`
}

// GeocodeRequest is the body of POST /get-lat-lng.
type GeocodeRequest struct {
	Address string `json:"address"`
}

// StepOneRequest is the step-1 identity form. Coordinates arrive as text
// from the form and are optional.
type StepOneRequest struct {
	FileNumber   string `form:"file_number" json:"file_number" binding:"required,max=64"`
	Address      string `form:"address" json:"address"`
	Unit         string `form:"unit" json:"unit"`
	City         string `form:"city" json:"city"`
	State        string `form:"state" json:"state"`
	Zip          string `form:"zip" json:"zip"`
	Latitude     string `form:"latitude" json:"latitude" binding:"omitempty,latitude"`
	Longitude    string `form:"longitude" json:"longitude" binding:"omitempty,longitude"`
	PropertyType string `form:"property_type" json:"property_type"`
	BorrowerName string `form:"borrower_name" json:"borrower_name"`
}

// CompLookupRequest is the address of a comparable to look up.
type CompLookupRequest struct {
	Address string `form:"address" json:"address" binding:"required"`
	City    string `form:"city" json:"city"`
	State   string `form:"state" json:"state"`
	Zip     string `form:"zip" json:"zip"`
}

// DashboardResponse lists recent files for the logged-in appraiser.
type DashboardResponse struct {
	Username string                 `json:"username"`
	Records  []models.RecordSummary `json:"records"`
}

// Dashboard handles GET /dashboard.
func (h *IntakeHandler) Dashboard(c *gin.Context) {
	records, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load dashboard", err)
		return
	}

	resp := DashboardResponse{Records: records}
	if claims := middleware.GetSession(c); claims != nil {
		resp.Username = claims.Username
	}
	c.JSON(http.StatusOK, resp)
}

// CheckFileNumber handles POST /check_file_number.
func (h *IntakeHandler) CheckFileNumber(c *gin.Context) {
	var req CheckFileNumberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "file_number is required", nil)
		return
	}

	exists, err := h.service.CheckFileNumber(c.Request.Context(), req.FileNumber)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to check file number", err)
		return
	}
	c.JSON(http.StatusOK, CheckFileNumberResponse{Exists: exists})
}

// GetLatLng handles POST /get-lat-lng.
func (h *IntakeHandler) GetLatLng(c *gin.Context) {
	var req GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Address) == "" {
		apierrors.BadRequest(c, "Address is required", nil)
		return
	}

	loc, err := h.service.Geocode(c.Request.Context(), strings.TrimSpace(req.Address))
	if err != nil {
		var gerr *enrichment.GeocodeError
		if errors.As(err, &gerr) {
			apierrors.UpstreamError(c, "Geocoding failed", gerr.Status)
			return
		}
		apierrors.InternalServerError(c, "Internal Server Error", err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

// StepOne handles POST /form-step1: creates the record and redirects to step 2.
func (h *IntakeHandler) StepOne(c *gin.Context) {
	var req StepOneRequest
	if !bindRequest(c, &req) {
		return
	}

	identity, err := req.identity()
	if err != nil {
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	result, err := h.service.Start(c.Request.Context(), identity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateFileNumber):
			apierrors.Conflict(c, "File number already exists. Please use a unique file number.")
		case errors.Is(err, services.ErrInvalidIdentity):
			apierrors.BadRequest(c, err.Error(), nil)
		default:
			apierrors.InternalServerError(c, "Failed to create record", err)
		}
		return
	}

	c.Redirect(http.StatusSeeOther, stepTwoPrefix+url.PathEscape(result.FileNumber))
}

// StepTwo handles GET /form-step2/:file_number: the prefill data for the form.
// Unknown file numbers are sent back to step 1.
func (h *IntakeHandler) StepTwo(c *gin.Context) {
	rec, err := h.service.GetRecord(c.Request.Context(), c.Param("file_number"))
	if err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			c.Redirect(http.StatusSeeOther, StepOnePath)
			return
		}
		apierrors.InternalServerError(c, "Failed to load record", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// SubmitStepTwo handles POST /form-step2/:file_number: writes every subject
// and comparable field and redirects to the dashboard.
func (h *IntakeHandler) SubmitStepTwo(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		apierrors.BadRequest(c, "Invalid form body", nil)
		return
	}

	sub, err := models.DecodeSubmission(c.Request.PostForm)
	if err != nil {
		var serr *models.SubmissionError
		if errors.As(err, &serr) {
			apierrors.FieldErrors(c, serr.Fields)
			return
		}
		apierrors.BadRequest(c, err.Error(), nil)
		return
	}

	if err := h.service.Complete(c.Request.Context(), c.Param("file_number"), sub); err != nil {
		if errors.Is(err, services.ErrRecordNotFound) {
			c.Redirect(http.StatusSeeOther, StepOnePath)
			return
		}
		apierrors.InternalServerError(c, "An error occurred while saving the data.", err)
		return
	}

	c.Redirect(http.StatusSeeOther, DashboardPath)
}

// LookupComparable handles POST /form-step2/:file_number/comps/:comp/lookup.
func (h *IntakeHandler) LookupComparable(c *gin.Context) {
	compIndex, err := strconv.Atoi(c.Param("comp"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid comp_number", nil)
		return
	}

	var req CompLookupRequest
	if !bindRequest(c, &req) {
		return
	}

	addr := enrichment.Address{
		Street: strings.TrimSpace(req.Address),
		City:   strings.TrimSpace(req.City),
		State:  strings.TrimSpace(req.State),
		Zip:    strings.TrimSpace(req.Zip),
	}

	result, err := h.service.EnrichComparable(c.Request.Context(), c.Param("file_number"), compIndex, addr)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCompIndex):
			apierrors.BadRequest(c, "Invalid comp_number", nil)
		case errors.Is(err, services.ErrRecordNotFound):
			apierrors.NotFound(c, "No data found")
		default:
			apierrors.InternalServerError(c, "Failed to look up comparable", err)
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

func (r StepOneRequest) identity() (models.Identity, error) {
	identity := models.Identity{
		FileNumber:   strings.TrimSpace(r.FileNumber),
		Address:      optional(r.Address),
		Unit:         optional(r.Unit),
		City:         optional(r.City),
		State:        optional(r.State),
		Zip:          optional(r.Zip),
		PropertyType: optional(r.PropertyType),
		BorrowerName: optional(r.BorrowerName),
	}

	if s := strings.TrimSpace(r.Latitude); s != "" {
		lat, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return identity, errors.New("latitude must be a number")
		}
		identity.Latitude = &lat
	}
	if s := strings.TrimSpace(r.Longitude); s != "" {
		lng, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return identity, errors.New("longitude must be a number")
		}
		identity.Longitude = &lng
	}
	return identity, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
