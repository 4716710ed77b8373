package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/middleware"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
)

// parseIDParam reads a positive int64 path parameter. On failure it writes the
// error response and returns false.
func parseIDParam(ctx *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(fmt.Sprintf("%s must be a positive number", label)))
		return 0, false
	}
	return id, true
}

// currentActor returns the authenticated caller set by the JWT middleware
func currentActor(ctx *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return models.Actor{}, false
	}
	return actor, true
}
