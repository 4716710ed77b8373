package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/app/services"
	"github.com/yigit/volunteerhub/internal/middleware"
)

// FeedbackController handles post-event feedback
type FeedbackController struct {
	feedbackService services.FeedbackService
}

// NewFeedbackController creates a new FeedbackController
func NewFeedbackController(feedbackService services.FeedbackService) *FeedbackController {
	return &FeedbackController{
		feedbackService: feedbackService,
	}
}

// SubmitOpportunityFeedback handles a participant rating an opportunity
// @Summary Rate opportunity
// @Description Attended volunteers rate an opportunity once it has ended
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param request body dto.OpportunityFeedbackRequest true "Feedback"
// @Success 201 {object} dto.APIResponse{data=dto.OpportunityFeedbackResponse} "Feedback stored"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Not an attended participant"
// @Failure 409 {object} dto.ErrorResponse "Already submitted or opportunity not ended"
// @Router /opportunities/{id}/feedback [post]
func (c *FeedbackController) SubmitOpportunityFeedback(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	opportunityID, ok := parseIDParam(ctx, "id", "Opportunity ID")
	if !ok {
		return
	}

	var req dto.OpportunityFeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	response, err := c.feedbackService.SubmitOpportunityFeedback(ctx.Request.Context(), actor, opportunityID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// SubmitVolunteerFeedback handles a participant rating a fellow participant
// @Summary Rate fellow volunteer
// @Description Attended volunteers rate another attended volunteer of the same ended opportunity
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Opportunity ID"
// @Param request body dto.VolunteerFeedbackRequest true "Feedback"
// @Success 201 {object} dto.APIResponse{data=dto.VolunteerFeedbackResponse} "Feedback stored"
// @Failure 400 {object} dto.ErrorResponse "Validation failed or self rating"
// @Failure 403 {object} dto.ErrorResponse "Not an attended participant"
// @Failure 409 {object} dto.ErrorResponse "Already submitted or opportunity not ended"
// @Router /opportunities/{id}/volunteer-feedback [post]
func (c *FeedbackController) SubmitVolunteerFeedback(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	opportunityID, ok := parseIDParam(ctx, "id", "Opportunity ID")
	if !ok {
		return
	}

	var req dto.VolunteerFeedbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	response, err := c.feedbackService.SubmitVolunteerFeedback(ctx.Request.Context(), actor, opportunityID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(response))
}

// ListOpportunityFeedback handles listing an opportunity's feedback
// @Summary List opportunity feedback
// @Description Returns all ratings of an opportunity with the average
// @Tags feedback
// @Produce json
// @Param id path int true "Opportunity ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeedbackSummaryResponse} "Feedback retrieved"
// @Failure 404 {object} dto.ErrorResponse "Opportunity not found"
// @Router /opportunities/{id}/feedback [get]
func (c *FeedbackController) ListOpportunityFeedback(ctx *gin.Context) {
	opportunityID, ok := parseIDParam(ctx, "id", "Opportunity ID")
	if !ok {
		return
	}

	response, err := c.feedbackService.ListOpportunityFeedback(ctx.Request.Context(), opportunityID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// ListVolunteerFeedback handles listing the ratings a volunteer received
// @Summary List volunteer ratings
// @Description Returns the ratings a volunteer received from fellow participants
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param id path int true "Volunteer user ID"
// @Success 200 {object} dto.APIResponse{data=dto.VolunteerRatingResponse} "Ratings retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized: JWT token missing or invalid"
// @Router /volunteers/{id}/feedback [get]
func (c *FeedbackController) ListVolunteerFeedback(ctx *gin.Context) {
	volunteerID, ok := parseIDParam(ctx, "id", "Volunteer ID")
	if !ok {
		return
	}

	response, err := c.feedbackService.ListVolunteerFeedback(ctx.Request.Context(), volunteerID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
