package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/logger"
)

// StatusForKind maps an error kind to its HTTP status
func StatusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidationFailed:
		return http.StatusBadRequest
	case apperrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict, apperrors.KindInvalidStateTransition:
		return http.StatusConflict
	case apperrors.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := StatusForKind(kind)

	var errorDetail *dto.ErrorDetail
	switch kind {
	case apperrors.KindValidationFailed:
		errorDetail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			errorDetail.WithFieldErrors(verr.Fields)
		} else {
			errorDetail.Message = err.Error()
		}
	case apperrors.KindUnauthenticated:
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			errorDetail = dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
		case errors.Is(err, apperrors.ErrTokenExpired):
			errorDetail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
		case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
			errorDetail = dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
		default:
			errorDetail = dto.NewErrorDetail(dto.ErrorCodeUnauthenticated, "Authentication required")
		}
	case apperrors.KindForbidden:
		errorDetail = dto.NewErrorDetail(dto.ErrorCodeForbidden, err.Error())
	case apperrors.KindNotFound:
		errorDetail = dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())
	case apperrors.KindConflict:
		errorDetail = dto.NewErrorDetail(dto.ErrorCodeConflict, err.Error())
	case apperrors.KindInvalidStateTransition:
		errorDetail = dto.NewErrorDetail(dto.ErrorCodeInvalidStateTransition, err.Error())
	case apperrors.KindUnavailable:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Storage unavailable")
		errorDetail = dto.NewErrorDetail(dto.ErrorCodeUnavailable, "The service is temporarily unavailable")
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled error")
		errorDetail = dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}

	errorDetail.Kind = string(kind)
	// precondition codes are more specific than the kind, which stays in Kind
	if code := apperrors.CodeOf(err); code != "" && kind != apperrors.KindInternal && kind != apperrors.KindUnavailable {
		errorDetail.Code = dto.ErrorCode(code)
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(errorDetail))
}
