package handler

import (
	"errors"
	"net/http"

	"medlink/internal/domain"
	"medlink/internal/middleware"
	"medlink/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc   *service.AuthService
	audit *Auditor
	log   *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, audit *Auditor, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, audit: audit, log: log}
}

type RegisterRequest struct {
	Name     string                 `json:"name" binding:"required,max=255"`
	Email    string                 `json:"email" binding:"required,email"`
	Password string                 `json:"password" binding:"required,min=6"`
	Phone    string                 `json:"phone"`
	Role     string                 `json:"role" binding:"required,role"`
	Address  string                 `json:"address"`
	City     string                 `json:"city"`
	State    string                 `json:"state"`
	Pincode  string                 `json:"pincode"`
	Profile  map[string]interface{} `json:"profile"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	role, _ := domain.ParseRole(req.Role)
	u, token, err := h.svc.Register(service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     role,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		Pincode:  req.Pincode,
		Profile:  req.Profile,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, u.ID, "register", "auth", u.ID)
	c.JSON(http.StatusCreated, gin.H{"user": u, "token": token})
}

// Login answers unknown emails and wrong passwords with the same 401 body.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.audit.Record(c, u.ID, "login", "auth", u.ID)
	c.JSON(http.StatusOK, gin.H{"user": u, "token": token})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.svc.Me(middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := h.svc.ChangePassword(middleware.GetUserID(c), req.CurrentPassword, req.NewPassword)
	if errors.Is(err, service.ErrInvalidCreds) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AuthHandler) RegisterFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.RegisterFCMToken(middleware.GetUserID(c), req.Token); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
