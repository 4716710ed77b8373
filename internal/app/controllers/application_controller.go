package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/app/services"
	"github.com/yigit/volunteerhub/internal/middleware"
)

// ApplicationController handles the volunteer application workflow
type ApplicationController struct {
	applicationService services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
	}
}

// Apply handles a volunteer applying to an opportunity
// @Summary Apply to opportunity
// @Description Submits a pending application. A volunteer can apply to an opportunity only once.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param request body dto.ApplyRequest false "Optional motivation"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application submitted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only volunteers can apply"
// @Failure 404 {object} dto.ErrorResponse "Opportunity not found"
// @Failure 409 {object} dto.ErrorResponse "Already applied"
// @Router /opportunities/{id}/applications [post]
func (c *ApplicationController) Apply(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	opportunityID, ok := parseIDParam(ctx, "id", "Opportunity ID")
	if !ok {
		return
	}

	var req dto.ApplyRequest
	if ctx.Request.ContentLength != 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	response, err := c.applicationService.Apply(ctx.Request.Context(), actor, opportunityID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// ListForOpportunity handles listing an opportunity's applications
// @Summary List applications of an opportunity
// @Description Lists applications with volunteer details for the opportunity's managers
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param pageSize query int false "Page size (default: 10, max: 100)" default(10) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationListResponse} "Applications retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Missing manage access"
// @Failure 404 {object} dto.ErrorResponse "Opportunity not found"
// @Router /opportunities/{id}/applications [get]
func (c *ApplicationController) ListForOpportunity(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	opportunityID, ok := parseIDParam(ctx, "id", "Opportunity ID")
	if !ok {
		return
	}

	var filter dto.ApplicationFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	response, err := c.applicationService.ListForOpportunity(ctx.Request.Context(), actor, opportunityID, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// ListMine handles listing the caller's own applications
// @Summary List my applications
// @Description Lists the authenticated volunteer's applications, newest first
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ApplicationResponse} "Applications retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Only volunteers have applications"
// @Router /applications/me [get]
func (c *ApplicationController) ListMine(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	response, err := c.applicationService.ListMine(ctx.Request.Context(), actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetApplication handles retrieving one application
// @Summary Get application
// @Description Visible to the applicant and to the managers of the opportunity's organization
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Not visible to caller"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) GetApplication(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Application ID")
	if !ok {
		return
	}

	response, err := c.applicationService.GetApplication(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// Decide handles approving or rejecting an application
// @Summary Decide application
// @Description Approves or rejects a pending application. A decided application cannot be decided again.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.DecisionRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Decision recorded"
// @Failure 400 {object} dto.ErrorResponse "Unknown decision"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Missing manage access"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application already decided"
// @Router /applications/{id}/decision [post]
func (c *ApplicationController) Decide(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Application ID")
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	response, err := c.applicationService.Decide(ctx.Request.Context(), actor, id, req.Decision)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// MarkAttended handles recording attendance
// @Summary Record attendance
// @Description Sets the attendance flag of an approved application
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.AttendanceRequest true "Attendance"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Attendance recorded"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Missing manage access"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application is not approved"
// @Router /applications/{id}/attendance [put]
func (c *ApplicationController) MarkAttended(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Application ID")
	if !ok {
		return
	}

	var req dto.AttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	response, err := c.applicationService.MarkAttended(ctx.Request.Context(), actor, id, *req.Attended)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
