package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/app/services"
	"github.com/yigit/volunteerhub/internal/middleware"
	"github.com/yigit/volunteerhub/internal/pkg/validation"
)

// OpportunityController handles opportunity related operations
type OpportunityController struct {
	opportunityService services.OpportunityService
}

// NewOpportunityController creates a new OpportunityController
func NewOpportunityController(opportunityService services.OpportunityService) *OpportunityController {
	return &OpportunityController{
		opportunityService: opportunityService,
	}
}

// ListOpportunities handles listing opportunities with filters
// @Summary List opportunities
// @Description Lists opportunities with their derived status. The status filter applies to the status computed at request time.
// @Tags opportunities
// @Produce json
// @Param organizationId query int false "Filter by organization ID"
// @Param mode query string false "Filter by mode" Enums(onsite, remote, hybrid)
// @Param dateType query string false "Filter by date type" Enums(single_day, multi_day, ongoing)
// @Param status query string false "Filter by derived status" Enums(upcoming, active, archived)
// @Param city query string false "Filter by city"
// @Param search query string false "Search in title and summary"
// @Param page query int false "Page number (1-based)" default(1) minimum(1)
// @Param pageSize query int false "Page size (default: 10, max: 100)" default(10) minimum(1) maximum(100)
// @Success 200 {object} dto.APIResponse{data=dto.OpportunityListResponse} "Opportunities retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /opportunities [get]
func (c *OpportunityController) ListOpportunities(ctx *gin.Context) {
	var filter dto.OpportunityFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	response, err := c.opportunityService.ListOpportunities(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// GetOpportunity handles retrieving a single opportunity
// @Summary Get opportunity by ID
// @Description Retrieves an opportunity with its derived status and approved volunteer count
// @Tags opportunities
// @Produce json
// @Param id path int true "Opportunity ID"
// @Success 200 {object} dto.APIResponse{data=dto.OpportunityResponse} "Opportunity retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid opportunity ID"
// @Failure 404 {object} dto.ErrorResponse "Opportunity not found"
// @Router /opportunities/{id} [get]
func (c *OpportunityController) GetOpportunity(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Opportunity ID")
	if !ok {
		return
	}

	response, err := c.opportunityService.GetOpportunity(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// CreateOpportunity handles creating a new opportunity
// @Summary Create opportunity
// @Description Creates and publishes an opportunity for an organization the caller manages
// @Tags opportunities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OpportunityRequest true "Opportunity data"
// @Success 201 {object} dto.APIResponse{data=dto.OpportunityResponse} "Opportunity created successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Missing manage access"
// @Router /opportunities [post]
func (c *OpportunityController) CreateOpportunity(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.OpportunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	response, err := c.opportunityService.CreateOpportunity(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// UpdateOpportunity handles updating an opportunity
// @Summary Update opportunity
// @Description Replaces the editable fields of an opportunity. Only its creator can update it.
// @Tags opportunities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param request body dto.OpportunityRequest true "Opportunity data"
// @Success 200 {object} dto.APIResponse{data=dto.OpportunityResponse} "Opportunity updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 404 {object} dto.ErrorResponse "Opportunity not found"
// @Router /opportunities/{id} [put]
func (c *OpportunityController) UpdateOpportunity(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Opportunity ID")
	if !ok {
		return
	}

	var req dto.OpportunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	response, err := c.opportunityService.UpdateOpportunity(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// CloseOpportunity handles manually archiving an opportunity
// @Summary Close opportunity
// @Description Archives the opportunity regardless of its dates
// @Tags opportunities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Success 200 {object} dto.APIResponse{data=dto.OpportunityResponse} "Opportunity closed"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Missing manage access"
// @Failure 404 {object} dto.ErrorResponse "Opportunity not found"
// @Router /opportunities/{id}/close [post]
func (c *OpportunityController) CloseOpportunity(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Opportunity ID")
	if !ok {
		return
	}

	response, err := c.opportunityService.CloseOpportunity(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// DeleteOpportunity handles deleting an opportunity
// @Summary Delete opportunity
// @Description Deletes an opportunity with its applications and feedback. Only its creator can delete it.
// @Tags opportunities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Opportunity deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 404 {object} dto.ErrorResponse "Opportunity not found"
// @Router /opportunities/{id} [delete]
func (c *OpportunityController) DeleteOpportunity(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id", "Opportunity ID")
	if !ok {
		return
	}

	if err := c.opportunityService.DeleteOpportunity(ctx.Request.Context(), actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: "Opportunity deleted successfully"}))
}

// ValidateForm handles validating a whole opportunity form
// @Summary Validate opportunity form
// @Description Runs every field rule and returns the field-keyed errors. Nothing is stored.
// @Tags opportunities
// @Accept json
// @Produce json
// @Param request body validation.OpportunityForm true "Candidate form"
// @Success 200 {object} dto.APIResponse{data=dto.FormValidationResponse} "Validation result"
// @Failure 400 {object} dto.ErrorResponse "Malformed body"
// @Router /opportunities/validate [post]
func (c *OpportunityController) ValidateForm(ctx *gin.Context) {
	var form validation.OpportunityForm
	if !middleware.BindJSON(ctx, &form) {
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.opportunityService.ValidateForm(&form)))
}

// ValidateField handles validating a single field of an opportunity form
// @Summary Validate one opportunity field
// @Description Validates one field using the same rules as the full form. Sibling fields in the body are used for cross-field rules.
// @Tags opportunities
// @Accept json
// @Produce json
// @Param field path string true "Field name" Enums(title, shortSummary, description, mode, dateType, startDate, endDate, address, city, state, country, maxVolunteers, contactName, contactEmail, contactPhone, osrmLink)
// @Param request body validation.OpportunityForm true "Candidate form"
// @Success 200 {object} dto.APIResponse{data=dto.FieldValidationResponse} "Validation result"
// @Failure 400 {object} dto.ErrorResponse "Unknown field"
// @Router /opportunities/validate/{field} [post]
func (c *OpportunityController) ValidateField(ctx *gin.Context) {
	var form validation.OpportunityForm
	if !middleware.BindJSON(ctx, &form) {
		return
	}

	response, err := c.opportunityService.ValidateField(ctx.Param("field"), &form)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
