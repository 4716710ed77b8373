package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/volunteerhub/internal/app/controllers"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/middleware"
	"github.com/yigit/volunteerhub/internal/pkg/websocket"
)

// Pinger reports whether the storage backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth        *controllers.AuthController
	Opportunity *controllers.OpportunityController
	Application *controllers.ApplicationController
	Feedback    *controllers.FeedbackController
	// Live is optional; /ws is only served when it is set
	Live *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	db Pinger,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	opportunities := v1.Group("/opportunities")
	{
		opportunities.GET("", ctrl.Opportunity.ListOpportunities)
		opportunities.GET("/:id", ctrl.Opportunity.GetOpportunity)
		opportunities.GET("/:id/feedback", ctrl.Feedback.ListOpportunityFeedback)

		// Form checks used by interactive editors, nothing is stored
		opportunities.POST("/validate", ctrl.Opportunity.ValidateForm)
		opportunities.POST("/validate/:field", ctrl.Opportunity.ValidateField)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.GET("/auth/me", ctrl.Auth.Me)
	authenticated.GET("/volunteers/:id/feedback", ctrl.Feedback.ListVolunteerFeedback)
	authenticated.GET("/applications/:id", ctrl.Application.GetApplication)
	if ctrl.Live != nil {
		authenticated.GET("/ws", ctrl.Live.HandleConnection)
	}

	// Organization members and administrators
	managers := authenticated.Group("")
	managers.Use(authMiddleware.RoleRequired(models.RoleOrganization, models.RoleAdmin))
	{
		managers.POST("/opportunities", ctrl.Opportunity.CreateOpportunity)
		managers.PUT("/opportunities/:id", ctrl.Opportunity.UpdateOpportunity)
		managers.DELETE("/opportunities/:id", ctrl.Opportunity.DeleteOpportunity)
		managers.POST("/opportunities/:id/close", ctrl.Opportunity.CloseOpportunity)

		managers.GET("/opportunities/:id/applications", ctrl.Application.ListForOpportunity)
		managers.POST("/applications/:id/decision", ctrl.Application.Decide)
		managers.PUT("/applications/:id/attendance", ctrl.Application.MarkAttended)
	}

	// Volunteers
	volunteers := authenticated.Group("")
	volunteers.Use(authMiddleware.RoleRequired(models.RoleVolunteer))
	{
		volunteers.POST("/opportunities/:id/applications", ctrl.Application.Apply)
		volunteers.GET("/applications/me", ctrl.Application.ListMine)
		volunteers.POST("/opportunities/:id/feedback", ctrl.Feedback.SubmitOpportunityFeedback)
		volunteers.POST("/opportunities/:id/volunteer-feedback", ctrl.Feedback.SubmitVolunteerFeedback)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnavailable, "Database unreachable")
				c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
				return
			}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})
}
