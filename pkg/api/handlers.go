package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sqlkit/paginate/pkg/database/models"
	"github.com/sqlkit/paginate/pkg/paginate"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

// healthHandler handles GET /healthz
func (s *Server) healthHandler(c *gin.Context) {
	dbStatus := "ok"
	if sqlDB, err := s.db.DB.DB(); err != nil {
		dbStatus = "error"
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error"
	}

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  dbStatus,
	}

	if dbStatus != "ok" {
		response.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// CreateSessionRequest is the login request body
type CreateSessionRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateSessionResponse carries the issued bearer token
type CreateSessionResponse struct {
	Token string `json:"token"`
}

// createSessionHandler handles POST /api/v1/sessions
func (s *Server) createSessionHandler(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, NewAPIError(http.StatusBadRequest, "Bad Request", "email and password are required"))
		return
	}

	var user models.User
	err := s.db.DB.Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			SendError(c, NewAPIError(http.StatusUnauthorized, "Unauthorized", "Invalid email or password"))
			return
		}
		s.logger.Error("session lookup failed", zap.Error(err))
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Authentication error"))
		return
	}

	if !user.CheckPassword(req.Password) {
		SendError(c, NewAPIError(http.StatusUnauthorized, "Unauthorized", "Invalid email or password"))
		return
	}

	token, err := s.jwtManager.Generate(user.ID, user.Email)
	if err != nil {
		s.logger.Error("token generation failed", zap.Error(err))
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to generate session token"))
		return
	}

	c.Header("Authorization", "Bearer "+token)
	c.JSON(http.StatusCreated, CreateSessionResponse{Token: token})
}

// listUsersHandler handles GET /api/v1/users. Every query parameter is
// untrusted; normalization clamps or defaults rather than rejecting, so
// this handler never returns 400 for a malformed listing parameter.
func (s *Server) listUsersHandler(c *gin.Context) {
	params := paginate.ParseParams(c.Request.URL.Query())

	query := paginate.NewQuery[models.User]("SELECT * FROM users").
		WithDialect(s.dialect).
		WithParams(params)
	if strings.EqualFold(c.Query("totals"), "false") {
		query = query.DisableTotalsCount()
	}

	page, err := query.Fetch(c.Request.Context(), s.executor)
	if err != nil {
		s.logger.Error("user listing failed", zap.Error(err))
		SendError(c, NewAPIError(http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve users"))
		return
	}

	c.JSON(http.StatusOK, page)
}
