package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sigma/auth/internal/domain"
	"sigma/auth/internal/middleware"
	"sigma/auth/internal/usecase"
)

type registerRequest struct {
	Email      string `json:"email" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Country    string `json:"country"`
	City       string `json:"city"`
	Password   string `json:"password" binding:"required"`
	TenantType string `json:"tenantType" binding:"required"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, domain.NewDomainError(http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil))
		return
	}

	result, err := h.register.Execute(c.Request.Context(), usecase.RegisterCommand{
		Email:      req.Email,
		Phone:      req.Phone,
		Name:       req.Name,
		Country:    req.Country,
		City:       req.City,
		Password:   req.Password,
		TenantType: req.TenantType,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": result.Success,
		"message": result.Message,
		"userId":  result.UserID,
	})
}

type verifyRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h HandlerSet) VerifyUser(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, domain.ErrInvalidVerificationCode())
		return
	}

	result, err := h.verify.Execute(c.Request.Context(), usecase.VerifyCommand{Code: req.Code})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"message": result.Message,
		"userId":  result.UserID,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"deviceId" binding:"required"`
	Platform string `json:"platform"`
	Browser  string `json:"browser"`
	OS       string `json:"os"`
}

type loginResponse struct {
	Success      bool         `json:"success"`
	Message      string       `json:"message"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int          `json:"expiresIn"`
	User         userResponse `json:"user"`
}

type userResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	TenantType string `json:"tenantType"`
	Status     string `json:"status"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, domain.ErrInvalidCredentials())
		return
	}

	result, err := h.login.Execute(c.Request.Context(), usecase.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
		DeviceID: req.DeviceID,
		DeviceMeta: domain.DeviceMeta{
			UserAgent: c.GetHeader("User-Agent"),
			IPAddress: c.ClientIP(),
			Platform:  req.Platform,
			Browser:   req.Browser,
			OS:        req.OS,
		},
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Success:      result.Success,
		Message:      result.Message,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		User: userResponse{
			ID:         result.User.ID,
			Email:      result.User.Email,
			Name:       result.User.Name,
			TenantType: result.User.TenantType,
			Status:     result.User.Status,
		},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h HandlerSet) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, domain.ErrTokenNotFound())
		return
	}

	result, err := h.refresh.Execute(c.Request.Context(), usecase.RefreshCommand{RefreshToken: req.RefreshToken})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     result.Success,
		"message":     result.Message,
		"accessToken": result.AccessToken,
		"expiresIn":   result.ExpiresIn,
	})
}

type logoutRequest struct {
	SessionID    string `json:"sessionId"`
	RefreshToken string `json:"refreshToken"`
	DeviceID     string `json:"deviceId"`
	UserID       string `json:"userId"`
}

func (h HandlerSet) Logout(c *gin.Context) {
	var req logoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, domain.ErrSessionNotFound())
		return
	}

	result, err := h.logout.Execute(c.Request.Context(), usecase.LogoutCommand{
		SessionID:    req.SessionID,
		RefreshToken: req.RefreshToken,
		DeviceID:     req.DeviceID,
		UserID:       req.UserID,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": result.Success, "message": result.Message})
}

func (h HandlerSet) LogoutAll(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	result, err := h.logoutAll.Execute(c.Request.Context(), usecase.LogoutAllCommand{UserID: user.ID})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": result.Success, "message": result.Message})
}

func (h HandlerSet) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse{
		ID:         user.ID,
		Email:      user.Email.Value(),
		Name:       user.Name,
		TenantType: string(user.TenantType),
		Status:     string(user.Status),
	}})
}

type sessionResponse struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"deviceId"`
	IPAddress    string    `json:"ipAddress"`
	UserAgent    string    `json:"userAgent"`
	Platform     string    `json:"platform"`
	LastAccessAt time.Time `json:"lastAccessAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
	Current      bool      `json:"current"`
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	claimsVal, _ := c.Get(middleware.CtxAccessClaims)
	claims, _ := claimsVal.(domain.TokenClaims)

	sessions, err := h.sessions.FindActiveByUserID(c.Request.Context(), user.ID)
	if err != nil {
		sendError(c, err)
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, sessionResponse{
			ID:           session.ID,
			DeviceID:     session.DeviceID,
			IPAddress:    session.DeviceMeta.IPAddress,
			UserAgent:    session.DeviceMeta.UserAgent,
			Platform:     session.DeviceMeta.Platform,
			LastAccessAt: session.LastAccessAt,
			ExpiresAt:    session.ExpiresAt,
			Current:      session.ID == claims.SessionID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

func (h HandlerSet) RevokeSession(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	deviceID := c.Param("deviceId")
	if deviceID == "" {
		sendError(c, domain.ErrSessionNotFound())
		return
	}

	result, err := h.logout.Execute(c.Request.Context(), usecase.LogoutCommand{
		UserID:   user.ID,
		DeviceID: deviceID,
	})
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": result.Success, "message": result.Message})
}

func currentUser(c *gin.Context) *domain.User {
	userVal, exists := c.Get(middleware.CtxCurrentUser)
	if !exists {
		sendError(c, domain.ErrInvalidToken())
		c.Abort()
		return nil
	}
	user, ok := userVal.(*domain.User)
	if !ok {
		sendError(c, domain.ErrInvalidToken())
		c.Abort()
		return nil
	}
	return user
}

// sendError maps typed domain errors onto their HTTP status; anything else
// becomes an opaque 500.
func sendError(c *gin.Context, err error) {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		body := gin.H{
			"code":    domainErr.Code,
			"message": domainErr.Message,
		}
		if len(domainErr.Details) > 0 {
			body["details"] = domainErr.Details
		}
		c.JSON(domainErr.Status, gin.H{"error": body})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "internal error",
	}})
}
