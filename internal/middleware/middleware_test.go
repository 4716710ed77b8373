package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/volunteerhub/internal/app/models"
	"github.com/yigit/volunteerhub/internal/app/models/dto"
	"github.com/yigit/volunteerhub/internal/domain"
	"github.com/yigit/volunteerhub/internal/pkg/apperrors"
	"github.com/yigit/volunteerhub/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code   string           `json:"code"`
		Kind   string           `json:"kind"`
		Fields []dto.FieldError `json:"fields"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	return env
}

func newJWT(exp time.Duration) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "middleware-test", AccessTokenExp: exp, TokenIssuer: "test"})
}

func protectedRouter(m *AuthMiddleware, roles ...models.RoleType) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{m.JWTAuth()}
	if len(roles) > 0 {
		handlers = append(handlers, m.RoleRequired(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, actor)
	})
	r.GET("/private", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtService := newJWT(time.Hour)
	token, _, err := jwtService.GenerateAccessToken(&models.User{ID: 7, Email: "v@example.org", RoleType: models.RoleVolunteer})
	require.NoError(t, err)

	expired, _, err := newJWT(-time.Minute).GenerateAccessToken(&models.User{ID: 7, Email: "v@example.org", RoleType: models.RoleVolunteer})
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantCode   string
	}{
		{name: "bearer token", header: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "raw token", header: token, wantStatus: http.StatusOK},
		{name: "query token", query: "?token=" + token, wantStatus: http.StatusOK},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantCode: string(dto.ErrorCodeUnauthenticated)},
		{name: "garbage", header: "Bearer not-a-token", wantStatus: http.StatusUnauthorized, wantCode: string(dto.ErrorCodeInvalidToken)},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantCode: string(dto.ErrorCodeExpiredToken)},
	}

	router := protectedRouter(NewAuthMiddleware(jwtService))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
				return
			}
			var actor models.Actor
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actor))
			assert.Equal(t, models.Actor{ID: 7, Role: models.RoleVolunteer}, actor)
		})
	}
}

func TestRoleRequired(t *testing.T) {
	jwtService := newJWT(time.Hour)
	router := protectedRouter(NewAuthMiddleware(jwtService), models.RoleOrganization, models.RoleAdmin)

	for role, want := range map[models.RoleType]int{
		models.RoleOrganization: http.StatusOK,
		models.RoleAdmin:        http.StatusOK,
		models.RoleVolunteer:    http.StatusForbidden,
	} {
		token, _, err := jwtService.GenerateAccessToken(&models.User{ID: 3, Email: "u@example.org", RoleType: role})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, want, w.Code, "role %s", role)
	}
}

func decideRejected() error {
	app := &models.Application{Status: models.ApplicationRejected}
	return domain.Decide(app, domain.DecisionApprove, 7, time.Now())
}

func attendRejected() error {
	app := &models.Application{Status: models.ApplicationRejected}
	return domain.SetAttendance(app, true, time.Now())
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantKind   apperrors.Kind
	}{
		{
			name:       "validation",
			err:        apperrors.NewValidationError(map[string]string{"title": "Title is required"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   string(dto.ErrorCodeValidationFailed),
			wantKind:   apperrors.KindValidationFailed,
		},
		{
			name:       "bad credentials",
			err:        apperrors.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantCode:   string(dto.ErrorCodeInvalidCredentials),
			wantKind:   apperrors.KindUnauthenticated,
		},
		{
			name:       "forbidden with precondition code",
			err:        &apperrors.CustomError{Err: apperrors.ErrPermissionDenied, Message: "nope", Code: "NOT_VOLUNTEER"},
			wantStatus: http.StatusForbidden,
			wantCode:   "NOT_VOLUNTEER",
			wantKind:   apperrors.KindForbidden,
		},
		{
			name:       "not found",
			err:        apperrors.ErrOpportunityNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   string(dto.ErrorCodeResourceNotFound),
			wantKind:   apperrors.KindNotFound,
		},
		{
			name:       "duplicate",
			err:        apperrors.ErrDuplicateApplication,
			wantStatus: http.StatusConflict,
			wantCode:   string(dto.ErrorCodeConflict),
			wantKind:   apperrors.KindConflict,
		},
		{
			name:       "invalid state",
			err:        apperrors.NewInvalidStateError("APPLICATION_NOT_APPROVED", "not approved"),
			wantStatus: http.StatusConflict,
			wantCode:   "APPLICATION_NOT_APPROVED",
			wantKind:   apperrors.KindInvalidStateTransition,
		},
		{
			name:       "unavailable hides the cause",
			err:        apperrors.NewUnavailableError("list opportunities", errors.New("dial tcp: refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   string(dto.ErrorCodeUnavailable),
			wantKind:   apperrors.KindUnavailable,
		},
		{
			name:       "decision on a decided application",
			err:        decideRejected(),
			wantStatus: http.StatusConflict,
			wantCode:   domain.CodeAlreadyDecided,
			wantKind:   apperrors.KindConflict,
		},
		{
			name:       "attendance on a rejected application",
			err:        attendRejected(),
			wantStatus: http.StatusConflict,
			wantCode:   domain.CodeNotApproved,
			wantKind:   apperrors.KindInvalidStateTransition,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   string(dto.ErrorCodeInternalServer),
			wantKind:   apperrors.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decodeError(t, w)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			assert.Equal(t, string(tt.wantKind), env.Error.Kind)
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestHandleAPIError_FieldErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)

	HandleAPIError(c, apperrors.NewValidationError(map[string]string{
		"title": "Title is required",
		"city":  "City is required for onsite and hybrid opportunities",
	}))

	env := decodeError(t, w)
	require.Len(t, env.Error.Fields, 2)
	assert.Equal(t, "city", env.Error.Fields[0].Field)
	assert.Equal(t, "title", env.Error.Fields[1].Field)
}

type bindTarget struct {
	Email  string `json:"email" binding:"required,email"`
	Rating int    `json:"rating" binding:"min=1,max=5"`
}

func TestBindJSON(t *testing.T) {
	RegisterValidatorTagNames()

	router := gin.New()
	router.POST("/bind", func(c *gin.Context) {
		var body bindTarget
		if !BindJSON(c, &body) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNoContent, send(`{"email":"a@b.co","rating":3}`).Code)

	w := send(`{"email":"nope","rating":9}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeError(t, w)
	fields := map[string]string{}
	for _, f := range env.Error.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "email must be a valid email address", fields["email"])
	assert.Equal(t, "rating must be at most 5", fields["rating"])

	w = send(`{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(dto.ErrorCodeValidationFailed), decodeError(t, w).Error.Code)
}

func TestRequestLoggerAndRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(), RequestLogger())
	router.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(dto.ErrorCodeInternalServer), decodeError(t, w).Error.Code)
}
